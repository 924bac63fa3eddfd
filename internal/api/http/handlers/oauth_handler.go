package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/oauth"
	"github.com/spec-kit/backoffice-console/internal/service"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

const (
	oauthStateCookie    = "console_oauth_state"
	oauthRedirectCookie = "console_oauth_redirect"
	oauthStateTTL       = 10 * time.Minute
)

// OAuthHandler runs the provider sign-in round trip.
type OAuthHandler struct {
	auth      *service.AuthService
	providers *oauth.Registry
	cfg       config.AuthConfig
	cookie    config.CookieConfig
	logger    *zap.Logger
}

// NewOAuthHandler constructs handler.
func NewOAuthHandler(authService *service.AuthService, providers *oauth.Registry, cfg config.AuthConfig, cookie config.CookieConfig, logger *zap.Logger) *OAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthHandler{auth: authService, providers: providers, cfg: cfg, cookie: cookie, logger: logger}
}

// Start handles GET /oauth/:provider.
func (h *OAuthHandler) Start(c *fiber.Ctx) error {
	provider, err := h.lookup(c)
	if err != nil {
		return err
	}
	state, err := h.providers.StateToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	authURL, err := h.providers.AuthURL(provider, state)
	if err != nil {
		return apperrors.NewProviderDisabled(string(provider), err)
	}

	expires := time.Now().Add(oauthStateTTL)
	c.Cookie(h.stateCookie(oauthStateCookie, state, expires))
	if redirect := c.Query(h.cfg.RedirectURLKey); redirect != "" {
		c.Cookie(h.stateCookie(oauthRedirectCookie, redirect, expires))
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback handles GET /oauth/:provider/callback.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	provider, err := h.lookup(c)
	if err != nil {
		return err
	}

	state := strings.Clone(c.Cookies(oauthStateCookie))
	redirect := strings.Clone(c.Cookies(oauthRedirectCookie))
	h.clearStateCookies(c)

	if state == "" || c.Query("state") != state {
		return apperrors.NewValidationError("oauth state mismatch", nil)
	}

	flow, rec, err := flowFor(c, h.cfg.RedirectURLKey)
	if err != nil {
		return err
	}
	flow.RedirectURL = redirect

	if providerErr := c.Query("error"); providerErr != "" {
		res := service.Result{Status: domain.AuthStatusFailed, Message: providerErr}
		return respondAuth(c, res, rec, http.StatusUnauthorized, h.cfg.UnauthenticatedEntryPath)
	}

	code := c.Query("code")
	var res service.Result
	err = h.auth.OAuthSignIn(c.UserContext(), flow, func(handshake service.OAuthHandshake) error {
		if code == "" {
			return errors.New("missing authorization code")
		}
		identity, err := h.providers.Exchange(c.UserContext(), provider, code)
		if err != nil {
			return err
		}
		res = handshake.OnSignIn(h.auth.OAuthCredentials(identity))
		return nil
	})
	if err != nil {
		h.logger.Warn("oauth sign-in failed", zap.String("provider", string(provider)), zap.Error(err))
		res = service.Result{Status: domain.AuthStatusFailed, Message: "Unable to sign in with " + string(provider)}
	}
	return respondAuth(c, res, rec, http.StatusUnauthorized, h.cfg.UnauthenticatedEntryPath)
}

func (h *OAuthHandler) lookup(c *fiber.Ctx) (oauth.Provider, error) {
	name := c.Params("provider")
	provider, err := h.providers.Lookup(name)
	if err != nil {
		return "", apperrors.NewProviderDisabled(name, err)
	}
	return provider, nil
}

func (h *OAuthHandler) stateCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/oauth",
		Domain:   h.cookie.Domain,
		Expires:  expires,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		// Lax so the cookie survives the provider's top-level redirect back.
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (h *OAuthHandler) clearStateCookies(c *fiber.Ctx) {
	past := time.Now().Add(-time.Hour)
	for _, name := range []string{oauthStateCookie, oauthRedirectCookie} {
		ck := h.stateCookie(name, "", past)
		ck.MaxAge = -1
		c.Cookie(ck)
	}
}
