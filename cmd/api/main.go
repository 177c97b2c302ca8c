package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-tickets/internal/api/http"
	"github.com/spec-kit/complaint-tickets/internal/api/http/handlers"
	"github.com/spec-kit/complaint-tickets/internal/auth"
	"github.com/spec-kit/complaint-tickets/internal/classifier"
	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/ledger"
	"github.com/spec-kit/complaint-tickets/internal/notify"
	"github.com/spec-kit/complaint-tickets/internal/observability"
	"github.com/spec-kit/complaint-tickets/internal/persistence"
	"github.com/spec-kit/complaint-tickets/internal/service"
	"github.com/spec-kit/complaint-tickets/internal/worker"
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

	var pg *persistence.Postgres
	if cfg.Ledger.Backend == config.LedgerBackendPostgres {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
	} else {
		pg = &persistence.Postgres{}
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := ledger.New(cfg.Ledger, pg, cfg.Postgres.RunMigrations, logger)
	if err != nil {
		logger.Fatal("failed to open ledger", zap.Error(err))
	}
	if err := store.EnsureInitialized(ctx); err != nil {
		logger.Fatal("failed to initialize ledger", zap.Error(err))
	}

	classify, err := classifier.New(cfg.Classifier, redis.ClientHandle(), logger)
	if err != nil {
		logger.Fatal("failed to build classifier", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(func(e events.Event, err error) {
		logger.Warn("event handler failed", zap.String("event", string(e.Type)), zap.Error(err))
	})
	worker.StartAuditWorker(dispatcher, metrics, logger)

	notifications := service.NewNotificationService(notify.New(cfg.Notification), dispatcher, logger)
	pipeline := service.NewPipelineService(service.PipelineDependencies{
		Classifier:    classify,
		Ledger:        store,
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, pg, redis),
		Batches:        handlers.NewBatchesHandler(pipeline, service.DefaultRunOptions(cfg.Pipeline)),
		Tickets:        handlers.NewTicketsHandler(store, logger),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
