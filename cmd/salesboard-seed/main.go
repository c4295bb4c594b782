package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"salesboard/internal/backend"
	"salesboard/internal/cli"
	"salesboard/internal/services"
)

// salesboard-seed loads the configured seed source into an empty store and
// exits. Running it against a seeded store is a no-op.
func main() {
	if err := cli.LoadEnvFile(); err != nil {
		cli.Fatal(cli.SetupLogger(nil, os.Stderr).Logger, "Failed to load .env file", err)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(nil, os.Stderr).Logger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, os.Stderr)

	ctx, stop := cli.SignalContext(context.Background(), logger.Logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger.Logger, "Invalid backend configuration", err)
	}
	be, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to initialize backend", err)
	}

	res, err := services.NewSeedService(be.Store, be.Source, be.Notifier).EnsureSeeded(ctx)
	if err == nil {
		report(ctx, be.Store, res)
	}
	if cerr := be.Cleanup(); cerr != nil {
		logger.Warn("Backend cleanup failed", "error", cerr)
	}
	if err != nil {
		cli.Fatal(logger.Logger, "Seed failed", err)
	}
}

type seedInfoReader interface {
	SeedInfo(ctx context.Context) (source string, seededAt time.Time, ok bool, err error)
}

func report(ctx context.Context, st any, res services.SeedResult) {
	if !res.Skipped {
		fmt.Printf("seeded %d transactions from %s\n", res.Inserted, res.Source)
		return
	}
	if r, ok := st.(seedInfoReader); ok {
		if source, at, seeded, err := r.SeedInfo(ctx); err == nil && seeded {
			fmt.Printf("store already seeded from %s at %s, nothing to do\n", source, at.Format(time.RFC3339))
			return
		}
	}
	fmt.Println("nothing to do: store is not empty or no seed source is configured")
}
