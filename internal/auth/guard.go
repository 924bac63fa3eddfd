package auth

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/config"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

// Guard gates routes and screen fragments on the session and the role
// authority.
type Guard struct {
	resolver Resolver
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// NewGuard builds a guard.
func NewGuard(resolver Resolver, cfg config.AuthConfig, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{resolver: resolver, cfg: cfg, logger: logger}
}

// Resolver returns the resolver the guard delegates to.
func (g *Guard) Resolver() Resolver {
	return g.resolver
}

// Protected sends unauthenticated clients to sign in, remembering where
// they were going.
func (g *Guard) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		if sess.Authenticated(c.UserContext()) {
			return c.Next()
		}
		target := g.cfg.UnauthenticatedEntryPath + "?" + url.Values{g.cfg.RedirectURLKey: {c.OriginalURL()}}.Encode()
		return c.Redirect(target, fiber.StatusFound)
	}
}

// Public keeps authenticated clients away from the sign-in screens.
func (g *Guard) Public() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if ok && sess.Authenticated(c.UserContext()) {
			return c.Redirect(g.cfg.AuthenticatedEntryPath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// Authority is the navigational guard: a client whose roles do not satisfy
// required is redirected to the access-denied screen.
func (g *Guard) Authority(required ...string) fiber.Handler {
	required = append([]string(nil), required...)
	return func(c *fiber.Ctx) error {
		if g.Visible(c, required) {
			return c.Next()
		}
		sess, _ := SessionFromContext(c)
		fields := []zap.Field{zap.String("path", c.Path()), zap.Strings("required", required)}
		if sess != nil {
			fields = append(fields, zap.Strings("authority", sess.User().Authority))
		}
		g.logger.Info("access denied", fields...)
		return c.Redirect(g.cfg.AccessDeniedPath, fiber.StatusFound)
	}
}

// Visible is the inline guard: it reports whether a fragment requiring
// required may be shown to the client.
func (g *Guard) Visible(c *fiber.Ctx, required []string) bool {
	var roles []string
	if sess, ok := SessionFromContext(c); ok {
		roles = sess.User().Authority
	}
	return g.resolver.Resolve(roles, required)
}

// FilterVisible keeps the items whose required roles the client satisfies.
func FilterVisible[T any](g *Guard, c *fiber.Ctx, items []T, required func(T) []string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if g.Visible(c, required(item)) {
			out = append(out, item)
		}
	}
	return out
}
