package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/api/dto"
	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/oauth"
	"github.com/spec-kit/backoffice-console/internal/service"
)

// AuthHandler exposes the sign-in, sign-up, sign-out and password screens.
type AuthHandler struct {
	auth      *service.AuthService
	providers *oauth.Registry
	cfg       config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, providers *oauth.Registry, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, providers: providers, cfg: cfg}
}

// SignInView handles GET /sign-in.
func (h *AuthHandler) SignInView(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"screen":      "sign-in",
		"providers":   h.providers.Enabled(),
		"redirectUrl": h.auth.ResolveRedirect(c.Query(h.cfg.RedirectURLKey)),
		"error":       c.Query("error"),
	})
}

// SignUpView handles GET /sign-up.
func (h *AuthHandler) SignUpView(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"screen":    "sign-up",
		"providers": h.providers.Enabled(),
		"error":     c.Query("error"),
	})
}

// SignIn handles POST /sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	flow, rec, err := flowFor(c, h.cfg.RedirectURLKey)
	if err != nil {
		return err
	}
	res := h.auth.SignIn(c.UserContext(), flow, domain.Credentials{UserName: req.UserName, Password: req.Password})
	return respondAuth(c, res, rec, http.StatusUnauthorized, h.cfg.UnauthenticatedEntryPath)
}

// SignUp handles POST /sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	flow, rec, err := flowFor(c, h.cfg.RedirectURLKey)
	if err != nil {
		return err
	}
	res := h.auth.SignUp(c.UserContext(), flow, domain.Registration{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	return respondAuth(c, res, rec, http.StatusBadRequest, "/sign-up")
}

// SignOut handles POST /sign-out.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	flow, rec, err := flowFor(c, h.cfg.RedirectURLKey)
	if err != nil {
		return err
	}
	res := h.auth.SignOut(c.UserContext(), flow)
	return respondAuth(c, res, rec, http.StatusOK, "/")
}

// ForgotPassword handles POST /forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return passwordResult(c, h.auth.ForgotPassword(c.UserContext(), req.Email))
}

// ResetPassword handles POST /reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return passwordResult(c, h.auth.ResetPassword(c.UserContext(), req.Password, req.Token))
}

func passwordResult(c *fiber.Ctx, res service.Result) error {
	status := http.StatusOK
	if res.Status != domain.AuthStatusSuccess {
		status = http.StatusBadRequest
	}
	return c.Status(status).JSON(dto.AuthResult{Status: string(res.Status), Message: res.Message})
}
