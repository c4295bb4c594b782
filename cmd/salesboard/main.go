package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"salesboard/internal/backend"
	"salesboard/internal/cache"
	"salesboard/internal/cli"
	"salesboard/internal/core"
	apphttp "salesboard/internal/http"
	"salesboard/internal/services"
	"salesboard/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	if err := cli.LoadEnvFile(); err != nil {
		cli.Fatal(cli.SetupLogger(nil, os.Stdout).Logger, "Failed to load .env file", err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(nil, os.Stdout).Logger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, stop := cli.SignalContext(context.Background(), logger.Logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger.Logger, "Invalid backend configuration", err)
	}
	be, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	selections := cache.NewLRU[[]core.LabeledRecord](cfg.CacheSize, cfg.CacheTTL)
	janitor := cache.NewJanitor()
	janitor.Register(selections)
	janitor.Start(cfg.CacheTTL)

	stats := services.NewStatsService(be.Store, selections)
	seeder := services.NewSeedService(be.Store, be.Source, be.Notifier)
	seeder.OnSeeded(stats.Invalidate)

	if cfg.SeedOnStartup {
		res, err := seeder.EnsureSeeded(ctx)
		switch {
		case err != nil:
			logger.Error("Initial seed failed, /home will retry", "error", err)
		case res.Skipped:
			logger.Info("Store already seeded")
		default:
			logger.Info("Initial seed completed", "source", res.Source, "inserted", res.Inserted)
		}
	}

	srv := apphttp.NewServer(cfg.Addr(), apphttp.Dependencies{
		Stats:   stats,
		Seeder:  seeder,
		Pinger:  be.Store,
		Janitor: janitor,
	}, apphttp.Options{
		Logger:             logger,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting salesboard server", "addr", srv.Addr, "backend", backendCfg.Type, "source", backendCfg.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if be.Events != nil {
		listener := worker.NewSeedListener(be.Events, stats.Invalidate)
		g.Go(func() error { return listener.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}
	logger.Info("Server stopped gracefully", "uptime", time.Since(start).Round(time.Second))
	return nil
}
