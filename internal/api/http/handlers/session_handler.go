package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/auth"
	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

// SessionHandler reports the client's session and serves the screens every
// signed-in user sees.
type SessionHandler struct {
	guard *auth.Guard
	cfg   config.AuthConfig
}

// NewSessionHandler constructs handler.
func NewSessionHandler(guard *auth.Guard, cfg config.AuthConfig) *SessionHandler {
	return &SessionHandler{guard: guard, cfg: cfg}
}

// Session handles GET /session.
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}
	state := sess.State()
	return c.JSON(fiber.Map{
		"signedIn":      state.SignedIn,
		"authenticated": sess.Authenticated(c.UserContext()),
		"user":          state.User,
	})
}

// AccessDenied handles GET /access-denied.
func (h *SessionHandler) AccessDenied(c *fiber.Ctx) error {
	return c.Status(http.StatusForbidden).JSON(fiber.Map{
		"screen":  "access-denied",
		"message": "You have no permission to visit this page",
		"home":    h.cfg.AuthenticatedEntryPath,
	})
}

// Navigation handles GET /navigation with the menu trimmed to what the user
// may open.
func (h *SessionHandler) Navigation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.visibleItems(c, domain.Navigation())})
}

// Home handles GET /home: the greeting plus a shortcut per screen the user
// may open.
func (h *SessionHandler) Home(c *fiber.Ctx) error {
	sess, _ := auth.SessionFromContext(c)
	var user domain.User
	if sess != nil {
		user = sess.User()
	}

	shortcuts := make([]domain.NavigationItem, 0)
	for _, item := range h.visibleItems(c, domain.Navigation()) {
		shortcuts = append(shortcuts, leaves(item)...)
	}
	return c.JSON(fiber.Map{
		"screen":    "home",
		"user":      user,
		"shortcuts": shortcuts,
	})
}

func (h *SessionHandler) visibleItems(c *fiber.Ctx, items []domain.NavigationItem) []domain.NavigationItem {
	visible := auth.FilterVisible(h.guard, c, items, func(item domain.NavigationItem) []string {
		return item.Authority
	})
	out := make([]domain.NavigationItem, 0, len(visible))
	for _, item := range visible {
		if len(item.Children) > 0 {
			item.Children = h.visibleItems(c, item.Children)
			if len(item.Children) == 0 {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func leaves(item domain.NavigationItem) []domain.NavigationItem {
	if len(item.Children) == 0 {
		if item.Path == "" {
			return nil
		}
		return []domain.NavigationItem{item}
	}
	var out []domain.NavigationItem
	for _, child := range item.Children {
		out = append(out, leaves(child)...)
	}
	return out
}
