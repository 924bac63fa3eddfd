package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-console/internal/auth"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/observability"
)

// CRUD is implemented by every resource handler.
type CRUD interface {
	List(c *fiber.Ctx) error
	Get(c *fiber.Ctx) error
	Create(c *fiber.Ctx) error
	Update(c *fiber.Ctx) error
	Delete(c *fiber.Ctx) error
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	OAuth             *handlers.OAuthHandler
	Session           *handlers.SessionHandler
	Resources         map[string]CRUD
	SessionMiddleware *auth.SessionMiddleware
	Guard             *auth.Guard
	Metrics           *observability.Metrics
	Logger            *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	guard := cfg.Guard
	withSession := cfg.SessionMiddleware.Handle
	public := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{withSession, guard.Public(), h}
	}
	protected := func(hs ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{withSession, guard.Protected()}, hs...)
	}

	app.Get("/sign-in", public(cfg.Auth.SignInView)...)
	app.Post("/sign-in", public(cfg.Auth.SignIn)...)
	app.Get("/sign-up", public(cfg.Auth.SignUpView)...)
	app.Post("/sign-up", public(cfg.Auth.SignUp)...)
	app.Post("/forgot-password", public(cfg.Auth.ForgotPassword)...)
	app.Post("/reset-password", public(cfg.Auth.ResetPassword)...)
	app.Get("/oauth/:provider", public(cfg.OAuth.Start)...)
	app.Get("/oauth/:provider/callback", public(cfg.OAuth.Callback)...)

	app.Post("/sign-out", withSession, cfg.Auth.SignOut)
	app.Get("/session", withSession, cfg.Session.Session)
	app.Get("/access-denied", withSession, cfg.Session.AccessDenied)

	app.Get("/home", protected(authority(guard, logger, "/home"), cfg.Session.Home)...)
	app.Get("/navigation", protected(cfg.Session.Navigation)...)

	for name, h := range cfg.Resources {
		path := "/" + name
		group := app.Group(path, protected(authority(guard, logger, path))...)
		group.Get("/", h.List)
		group.Post("/", h.Create)
		group.Get("/:id", h.Get)
		group.Put("/:id", h.Update)
		group.Delete("/:id", h.Delete)
	}
}

// authority builds the navigational guard for path from the menu's
// declaration. Paths open to every signed-in user are logged when the
// resolver lets empty requirements through.
func authority(guard *auth.Guard, logger *zap.Logger, path string) fiber.Handler {
	required, declared := domain.RouteAuthority(path)
	if !declared {
		logger.Warn("route has no authority declaration", zap.String("path", path))
	}
	if len(required) == 0 && guard.Resolver().OpenDefault {
		logger.Warn("route is open to every signed-in user", zap.String("path", path))
	}
	return guard.Authority(required...)
}
