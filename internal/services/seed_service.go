package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/seed"
	"salesboard/internal/store"
)

type (
	// SeedStore is what seeding needs from the transaction store.
	SeedStore interface {
		store.Seeder
		store.TransactionLister
	}

	// SeedNotifier announces a completed seed to other services.
	SeedNotifier interface {
		PublishSeeded(ctx context.Context, source string, count int) error
	}

	// SeedResult describes the outcome of EnsureSeeded.
	SeedResult struct {
		Source   string
		Inserted int
		// Skipped is true when the store already held transactions.
		Skipped bool
	}
)

// SeedService loads the catalog into an empty store exactly once.
type SeedService struct {
	store    SeedStore
	source   seed.Source
	notifier SeedNotifier
	onSeeded []func()
	group    singleflight.Group
}

// NewSeedService wires seeding. source may be nil, in which case an empty
// store stays empty. notifier may be nil.
func NewSeedService(st SeedStore, source seed.Source, notifier SeedNotifier) *SeedService {
	return &SeedService{store: st, source: source, notifier: notifier}
}

// OnSeeded registers a hook run after records were inserted.
func (s *SeedService) OnSeeded(fn func()) {
	s.onSeeded = append(s.onSeeded, fn)
}

// EnsureSeeded fetches and inserts the catalog when the store is empty.
// Concurrent callers share a single fetch. The shared run is detached from
// the caller's cancellation so one aborted request cannot fail the others.
func (s *SeedService) EnsureSeeded(ctx context.Context) (SeedResult, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: count transactions: %w", core.ErrStoreUnavailable, err)
	}
	if n > 0 {
		return SeedResult{Skipped: true}, nil
	}
	if s.source == nil {
		slog.WarnContext(ctx, "Store is empty and no seed source is configured")
		return SeedResult{Skipped: true}, nil
	}

	v, err, _ := s.group.Do("seed", func() (any, error) {
		return s.seed(context.WithoutCancel(ctx))
	})
	if err != nil {
		return SeedResult{}, err
	}
	return v.(SeedResult), nil
}

func (s *SeedService) seed(ctx context.Context) (SeedResult, error) {
	start := time.Now()
	name := s.source.Name()

	txs, err := s.source.Fetch(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Seed fetch failed", "source", name, "error", err)
		return SeedResult{}, err
	}
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return SeedResult{}, fmt.Errorf("%w: %s: record %d: %w", core.ErrUpstreamSeed, name, t.ID, err)
		}
	}

	inserted, err := s.store.SeedIfEmpty(ctx, name, txs)
	if err != nil {
		slog.ErrorContext(ctx, "Seed insert failed", "source", name, "error", err)
		return SeedResult{}, fmt.Errorf("%w: seed insert: %w", core.ErrStoreUnavailable, err)
	}

	res := SeedResult{Source: name, Inserted: inserted, Skipped: inserted == 0}
	if inserted == 0 {
		return res, nil
	}

	for _, fn := range s.onSeeded {
		fn()
	}

	if s.notifier != nil {
		if err := s.notifier.PublishSeeded(ctx, name, inserted); err != nil {
			slog.ErrorContext(ctx, "Failed to publish seed event", "source", name, "error", err)
		}
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).LogSeedCompleted(ctx, name, inserted)
	slog.DebugContext(ctx, "Seed timing", "source", name, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// Catalog seeds an empty store and then returns every transaction.
func (s *SeedService) Catalog(ctx context.Context) ([]core.LabeledRecord, error) {
	if _, err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	txs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", core.ErrStoreUnavailable, err)
	}
	return core.LabelAll(txs), nil
}
