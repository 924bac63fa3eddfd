package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/api/dto"
	httptransport "github.com/spec-kit/backoffice-console/internal/api/http"
	"github.com/spec-kit/backoffice-console/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-console/internal/auth"
	"github.com/spec-kit/backoffice-console/internal/backend"
	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/events"
	"github.com/spec-kit/backoffice-console/internal/oauth"
	"github.com/spec-kit/backoffice-console/internal/observability"
	"github.com/spec-kit/backoffice-console/internal/persistence"
	"github.com/spec-kit/backoffice-console/internal/repository"
	"github.com/spec-kit/backoffice-console/internal/service"
	"github.com/spec-kit/backoffice-console/internal/session"
	"github.com/spec-kit/backoffice-console/internal/tokenstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dependencies := map[string]handlers.Pinger{}

	var redis *persistence.Redis
	if cfg.Storage.Backend == config.StorageSession || cfg.Session.State == config.StateRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		dependencies["redis"] = redis
	}

	var shared tokenstore.Store
	switch cfg.Storage.Backend {
	case config.StorageLocal:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		dependencies["postgres"] = pg

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		sealer, err := tokenstore.NewSealer(cfg.Storage.EncryptionKey)
		if err != nil {
			logger.Fatal("failed to init token sealer", zap.Error(err))
		}
		shared = tokenstore.NewLocalStore(repository.NewTokenRepository(pg.PoolHandle()), sealer)
	case config.StorageSession:
		shared = tokenstore.NewSessionStore(redis.Client, cfg.Session.TTL())
	}
	tokens := tokenstore.NewFactory(cfg.Storage.Backend, shared, cfg.Storage.Cookie)

	var states session.StateRepository = session.NewMemoryStateRepository()
	if cfg.Session.State == config.StateRedis {
		states = session.NewRedisStateRepository(redis.Client, cfg.Session.TTL())
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger.Named("audit"), metrics).RegisterHandlers()

	api := backend.NewClient(cfg.Backend, logger.Named("backend"), backend.WithMetrics(metrics))
	authService := service.NewAuthService(ctx, *cfg, service.AuthDependencies{
		Backend:    api,
		States:     states,
		Dispatcher: dispatcher,
		Logger:     logger.Named("auth"),
		Metrics:    metrics,
	})
	providers := oauth.NewRegistry(cfg.OAuth)

	guard := auth.NewGuard(auth.NewResolver(cfg.Auth.AuthorityOpenDefault), cfg.Auth, logger.Named("guard"))
	sessionMiddleware := auth.NewSessionMiddleware(
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Session.TTL()),
		tokens, states, cfg.Session, cfg.Storage.Cookie, logger.Named("session"))

	resourceLogger := logger.Named("resources")
	redirectKey := cfg.Auth.RedirectURLKey
	resources := map[string]httptransport.CRUD{
		service.Websites.Name: handlers.NewResourceHandler[domain.Website, dto.WebsiteRequest](
			service.NewResourceService(service.Websites, api, authService, resourceLogger, metrics), redirectKey),
		service.Sellers.Name: handlers.NewResourceHandler[domain.Seller, dto.SellerRequest](
			service.NewResourceService(service.Sellers, api, authService, resourceLogger, metrics), redirectKey),
		service.Categories.Name: handlers.NewResourceHandler[domain.Category, dto.CategoryRequest](
			service.NewResourceService(service.Categories, api, authService, resourceLogger, metrics), redirectKey),
		service.Products.Name: handlers.NewResourceHandler[domain.Product, dto.ProductRequest](
			service.NewResourceService(service.Products, api, authService, resourceLogger, metrics), redirectKey),
		service.Users.Name: handlers.NewResourceHandler[domain.User, dto.UserRequest](
			service.NewResourceService(service.Users, api, authService, resourceLogger, metrics), redirectKey),
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:              handlers.NewAuthHandler(authService, providers, cfg.Auth),
		OAuth:             handlers.NewOAuthHandler(authService, providers, cfg.Auth, cfg.Storage.Cookie, logger.Named("oauth")),
		Session:           handlers.NewSessionHandler(guard, cfg.Auth),
		Resources:         resources,
		SessionMiddleware: sessionMiddleware,
		Guard:             guard,
		Metrics:           metrics,
		Logger:            logger,
	})

	go func() {
		logger.Info("console listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("token_storage", string(cfg.Storage.Backend)),
			zap.String("session_state", string(cfg.Session.State)),
			zap.Any("oauth_providers", providers.Enabled()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	authService.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
