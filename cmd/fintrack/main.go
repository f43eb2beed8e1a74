package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// pruneInterval is how often stale sessions are removed from the journal.
const pruneInterval = time.Hour

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)
	if err := run(cfg, logger); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return err
	}
	backends, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backends", applog.FieldError, err)
		return err
	}
	defer func() {
		if err := backends.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	secret, err := cli.SessionSecret(cfg, logger)
	if err != nil {
		logger.Error("Failed to prepare session secret", applog.FieldError, err)
		return err
	}
	sessions := session.NewManager(
		session.Config{Secret: secret, TTL: cfg.SessionTTL},
		append(backends.SessionOptions(),
			session.WithLogger(logger.WithComponent(applog.ComponentSession)))...,
	)

	reportCache := cache.NewLRUCache[any](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(reportCache)

	publisher := backends.Publisher()
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions:           sessions,
		Expenses:           services.NewExpenseService(publisher, logger.WithComponent(applog.ComponentExpense)),
		Budgets:            services.NewBudgetService(publisher, logger.WithComponent(applog.ComponentBudget)),
		Profiles:           services.NewProfileService(logger.WithComponent(applog.ComponentProfile)),
		Chat:               services.NewChatService(cfg.TypingDelay, logger.WithComponent(applog.ComponentChat)),
		Reports:            services.NewReportService(reportCache, logger.WithComponent(applog.ComponentReport)),
		Exports:            services.NewExportService(backends.Sheets, logger.WithComponent(applog.ComponentExport)),
		Ready:              backends.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"journal", cfg.JournalBackend,
			"sheets", cfg.SheetsBackend,
			"events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return srv.Limiter().Run(gctx) })
	g.Go(func() error { return caches.Run(gctx, cfg.CacheCleanupInterval) })
	g.Go(func() error {
		sessions.StartSweeper(gctx, cfg.SessionSweepInterval)
		return nil
	})
	if backends.Journal != nil {
		g.Go(func() error {
			pruneJournal(gctx, backends.Journal, cfg.JournalRetention, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// pruneJournal drops journaled sessions idle for longer than retention,
// once at startup and then every pruneInterval. It reports how many
// sessions remain restorable.
func pruneJournal(ctx context.Context, j backend.Journal, retention time.Duration, logger *applog.Logger) {
	prune := func() {
		n, err := j.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Journal prune failed", applog.FieldError, err)
			}
			return
		}
		if n == 0 {
			return
		}
		args := []any{"actions_removed", n, "retention", retention.String()}
		if ids, err := j.Sessions(ctx); err == nil {
			args = append(args, "sessions_kept", len(ids))
		}
		logger.Info("Journal pruned", args...)
	}

	prune()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
