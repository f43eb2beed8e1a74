package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

// Handled event ids are remembered this long to skip redeliveries.
const (
	dedupeSize = 10000
	dedupeTTL  = time.Hour
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required for the worker", errors.New("amqp disabled"))
	}
	if err := run(cfg, logger); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting fintrack-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// The worker only needs the sheets adapter; sessions live in the API.
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return err
	}
	bcfg.Journal = backend.MemoryBackend
	bcfg.AMQPURL = ""
	backends, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize sheets", applog.FieldError, err)
		return err
	}
	defer backends.Cleanup()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return err
	}
	defer client.Close()

	seen := cache.NewLRUCache[string](dedupeSize, dedupeTTL)
	caches := cache.NewManager(logger)
	caches.Register(seen)

	w := worker.NewSyncWorker(backends.Sheets, seen, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.Consume(gctx, w.Handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error { return caches.Run(gctx, cfg.CacheCleanupInterval) })

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return err
	}

	stats := w.Stats()
	logger.Info("Worker shutdown complete",
		applog.FieldOperation, applog.OpShutdown,
		"synced", stats.Synced,
		"alerts", stats.Alerts,
		"duplicates", stats.Duplicates)
	return nil
}
