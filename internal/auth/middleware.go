package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/session"
	"github.com/spec-kit/backoffice-console/internal/tokenstore"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

const sessionKey = "console_session"

// SessionMiddleware binds every request to the client's session, issuing a
// session cookie on first contact.
type SessionMiddleware struct {
	tickets *TokenManager
	tokens  *tokenstore.Factory
	states  session.StateRepository
	cfg     config.SessionConfig
	cookie  config.CookieConfig
	logger  *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tickets *TokenManager, tokens *tokenstore.Factory, states session.StateRepository, cfg config.SessionConfig, cookie config.CookieConfig, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{tickets: tickets, tokens: tokens, states: states, cfg: cfg, cookie: cookie, logger: logger}
}

// Handle loads the session and stores it in the request locals.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sessionID := ""
	if raw := c.Cookies(m.cfg.CookieName); raw != "" {
		claims, err := m.tickets.Parse(raw)
		switch {
		case err != nil:
			m.logger.Debug("discarding invalid session ticket", zap.Error(err))
		case m.tickets.needsRenewal(claims):
			sessionID = strings.Clone(claims.SessionID)
			if err := m.renew(c, sessionID); err != nil {
				return apperrors.NewInternalError(err)
			}
		default:
			sessionID = strings.Clone(claims.SessionID)
		}
	}

	if sessionID == "" {
		id, ticket, expiresAt, err := m.tickets.Issue()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		sessionID = id
		c.Cookie(m.ticketCookie(ticket, expiresAt))
	}

	sess, err := session.Load(c.UserContext(), sessionID, m.tokens.For(c, sessionID), m.states)
	if err != nil {
		m.logger.Error("load session", zap.String("session_id", sessionID), zap.Error(err))
		return apperrors.NewDomainError(apperrors.CodeDependencyUnavailable, "session store unavailable", http.StatusServiceUnavailable, nil)
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

func (m *SessionMiddleware) renew(c *fiber.Ctx, sessionID string) error {
	ticket, expiresAt, err := m.tickets.Sign(sessionID)
	if err != nil {
		return err
	}
	c.Cookie(m.ticketCookie(ticket, expiresAt))
	return nil
}

func (m *SessionMiddleware) ticketCookie(ticket string, expiresAt time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    ticket,
		Path:     "/",
		Domain:   m.cookie.Domain,
		Expires:  expiresAt,
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: m.cookie.SameSite,
	}
}

// SessionFromContext retrieves the session bound by SessionMiddleware.
func SessionFromContext(c *fiber.Ctx) (*session.Context, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*session.Context)
	return sess, ok
}
