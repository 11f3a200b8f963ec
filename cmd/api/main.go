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

	httptransport "github.com/spec-kit/registration-service/internal/api/http"
	"github.com/spec-kit/registration-service/internal/api/http/handlers"
	"github.com/spec-kit/registration-service/internal/auth"
	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/observability"
	"github.com/spec-kit/registration-service/internal/persistence"
	"github.com/spec-kit/registration-service/internal/service"
	"github.com/spec-kit/registration-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.UsingDevDefaults {
		logger.Warn("using development auth defaults; set AUTH_JWT_SECRET and ADMIN_PASSWORD_HASH before deploying")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := observability.NewTracerProvider(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = tp.Shutdown(shutdownCtx)
	}()

	store, err := persistence.OpenStore(ctx, cfg, cfg.Postgres.RunMigrations, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("registration store ready", zap.String("driver", store.Driver))

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	adminHash, err := auth.ResolveAdminHash(cfg.Auth.AdminPasswordHash, cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to resolve admin credential", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	var publisher service.EventPublisher
	if redis != nil {
		publisher = redis
	}
	notificationService := service.NewNotificationService(dispatcher, publisher, cfg.Redis.EventsChannel, logger)
	worker.StartNotificationWorker(dispatcher, notificationService, metrics)

	loc := cfg.App.Location()
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Registrations: store.Registrations,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		Registrations: store.Registrations,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{Registrations: store.Registrations, Location: loc})
	exportService := service.NewExportService(service.ExportDependencies{Registrations: store.Registrations, Location: loc})
	adminAuthService := service.NewAdminAuthService(service.AdminAuthDependencies{
		PasswordHash: adminHash,
		TokenManager: tokens,
		Logger:       logger,
	})

	deps := map[string]handlers.Pinger{"store": store}
	if redis != nil {
		deps["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSAllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, logger),
		Registrations: handlers.NewRegistrationHandler(intakeService),
		Admin: handlers.NewAdminHandler(handlers.AdminHandlerDependencies{
			Auth:          adminAuthService,
			Review:        reviewService,
			Stats:         statsService,
			Export:        exportService,
			ExportTimeout: cfg.App.ExportTimeout(),
			Logger:        logger,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
