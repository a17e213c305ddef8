// Command reindex rebuilds the name index of every name_contains rule and
// recomputes all stale rule caches. It is the periodic sweep that picks up
// documents created since the rules were last edited; run it from cron
// after bulk corpus imports.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/document"
	listrepo "github.com/docwatch/docwatch-backend/internal/adapter/postgres/list"
	rulerepo "github.com/docwatch/docwatch-backend/internal/adapter/postgres/rule"
	"github.com/docwatch/docwatch-backend/internal/app"
	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/metrics"
	"github.com/docwatch/docwatch-backend/internal/service/rules"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := rules.NewService(
		logger,
		rulerepo.New(pool),
		document.New(pool),
		listrepo.New(pool),
		postgres.NewTxManager(pool),
		metrics.Nop{},
		cfg.Cache,
	)

	start := time.Now()
	if err := svc.RebuildAllNameIndexes(ctx); err != nil {
		logger.Error("rebuild name indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := svc.RecomputeDirty(ctx); err != nil {
		logger.Error("recompute dirty rules", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("reindex complete", slog.Duration("took", time.Since(start)))
}
