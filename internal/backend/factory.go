package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"salesboard/internal/amqp"
	"salesboard/internal/seed"
	gsheet "salesboard/internal/sheets/google"
	"salesboard/internal/store"
	"salesboard/internal/store/memory"
	"salesboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store, builds the seed source and connects the
// optional AMQP notifier. A failing AMQP connection is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st      store.Store
		closers []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		st = repo
		closers = append(closers, repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		if config.MemorySeedFile != "" {
			st = memory.NewFromFile(config.MemorySeedFile)
		} else {
			st = memory.New()
		}
		f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	source, err := f.createSource(ctx, config)
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	result := &BackendResult{Store: st, Source: source}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, config.AMQPAttempts)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without seed events", "error", err)
		} else {
			result.Notifier = client
			result.Events = client
			closers = append(closers, client.Close)
		}
	}

	result.Cleanup = cleanup
	return result, nil
}

func (f *DefaultFactory) createSource(ctx context.Context, config Config) (seed.Source, error) {
	switch config.Source {
	case HTTPSource:
		f.logger.Info("Using HTTP seed source", "url", config.SeedURL)
		return seed.NewHTTPSource(config.SeedURL, config.SeedTimeout), nil
	case SheetsSource:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			SheetName:          config.GoogleSheetName,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Using Google Sheets seed source", "source", cli.Name())
		return cli, nil
	default:
		f.logger.Info("Seeding disabled")
		return nil, nil
	}
}
