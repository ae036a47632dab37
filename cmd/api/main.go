package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/deskline/support-portal/internal/api/http"
	"github.com/deskline/support-portal/internal/api/http/handlers"
	"github.com/deskline/support-portal/internal/auth"
	"github.com/deskline/support-portal/internal/bootstrap"
	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/persistence"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	services := bootstrap.Build(cfg, pg.PoolHandle(), redis.Client, logger, metrics)
	defer services.Close() //nolint:errcheck
	services.StartWorkers(logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, 0)
	loc := cfg.App.Location()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxUploadBytes()) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var feed handlers.ChangeFeed
	if services.Broker != nil {
		feed = services.Broker
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(services.Tickets, loc),
		Comments:       handlers.NewCommentsHandler(services.Comments),
		Attachments:    handlers.NewAttachmentsHandler(services.Attachments),
		Dashboard:      handlers.NewDashboardHandler(services.Tickets, loc),
		Notifications:  handlers.NewNotificationsHandler(services.Notifications),
		Users:          handlers.NewUsersHandler(services.Profiles),
		Events:         handlers.NewEventsHandler(feed, services.Tickets, logger),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, services.Profiles),
		FilesDir:       cfg.Storage.RootDir,
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
