// Package app wires configuration, storage, services, and transport into
// a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/changerecord"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/document"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/event"
	listrepo "github.com/docwatch/docwatch-backend/internal/adapter/postgres/list"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/notification"
	rulerepo "github.com/docwatch/docwatch-backend/internal/adapter/postgres/rule"
	subscriptionrepo "github.com/docwatch/docwatch-backend/internal/adapter/postgres/subscription"
	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/eventbus"
	"github.com/docwatch/docwatch-backend/internal/metrics"
	feedsvc "github.com/docwatch/docwatch-backend/internal/service/feed"
	listservice "github.com/docwatch/docwatch-backend/internal/service/list"
	"github.com/docwatch/docwatch-backend/internal/service/notify"
	"github.com/docwatch/docwatch-backend/internal/service/rules"
	subscriptionsvc "github.com/docwatch/docwatch-backend/internal/service/subscription"
	"github.com/docwatch/docwatch-backend/internal/transport/rest"
)

// Run is the server entry point: it loads configuration, connects to the
// database, runs migrations, wires the services, and serves HTTP until a
// termination signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting docwatch",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Repositories.
	documents := document.New(pool)
	events := event.New(pool)
	ruleRepo := rulerepo.New(pool)
	listRepo := listrepo.New(pool)
	subscriptions := subscriptionrepo.New(pool)
	changes := changerecord.New(pool)
	notifications := notification.New(pool)
	tx := postgres.NewTxManager(pool)

	// Metrics.
	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	// Event bus and services.
	bus := eventbus.New(logger)
	defer bus.Close()

	ruleService := rules.NewService(logger, ruleRepo, documents, listRepo, tx, recorder, cfg.Cache)
	listService := listservice.NewService(logger, listRepo, ruleService, documents, changes, tx, recorder, cfg.Cache)
	subscriptionService := subscriptionsvc.NewService(logger, subscriptions, listRepo)
	mailer := notify.NewLogMailer(logger)
	notifyService := notify.NewService(logger, events, changes, documents, listRepo, subscriptions, notifications, tx, bus, mailer, recorder, cfg.Notify)
	feedService := feedsvc.NewService(logger, listService, listRepo, events, documents, recorder, cfg.Feed)

	// Async dispatch worker.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	worker := notify.NewWorker(notifyService, bus)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("dispatch worker exited", "error", err)
		}
	}()

	// HTTP transport.
	router := rest.NewRouter(rest.RouterDeps{
		Logger:        logger,
		Health:        rest.NewHealthHandler(pool, BuildVersion()),
		Lists:         rest.NewListHandler(listService, logger),
		Rules:         rest.NewRuleHandler(ruleService, logger),
		Subscriptions: rest.NewSubscriptionHandler(subscriptionService, logger),
		Events:        rest.NewEventHandler(notifyService, logger),
		Feed:          rest.NewFeedHandler(feedService, logger),
		Gatherer:      registry,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-stop:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	// Stop accepting events, then let the worker drain its buffer. The
	// worker context stays live until the drain finishes so in-flight
	// dispatches are not cancelled.
	bus.Close()
	<-workerDone

	logger.Info("stopped")
	return nil
}
