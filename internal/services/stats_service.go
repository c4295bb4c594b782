package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"salesboard/internal/cache"
	"salesboard/internal/core"
	"salesboard/internal/store"
)

// selectTimeout bounds a shared month query, which outlives the callers
// that started it.
const selectTimeout = 30 * time.Second

// StatsService answers month-scoped queries. Month selections are cached
// by month and concurrent misses for the same month share one store query.
type StatsService struct {
	store store.MonthQuerier
	cache cache.Cache[[]core.LabeledRecord]
	group singleflight.Group

	// gen is bumped by Invalidate; a query started under an older
	// generation does not populate the cache.
	mu  sync.Mutex
	gen uint64
}

// NewStatsService builds the engine over q. A nil cache disables caching.
func NewStatsService(q store.MonthQuerier, c cache.Cache[[]core.LabeledRecord]) *StatsService {
	return &StatsService{store: q, cache: c}
}

// SelectMonth returns every record sold in the named month, any year.
// The returned slice is shared with the cache and must not be modified.
func (s *StatsService) SelectMonth(ctx context.Context, monthName string) ([]core.LabeledRecord, error) {
	month, err := core.ResolveMonth(monthName)
	if err != nil {
		return nil, err
	}
	return s.selectMonth(ctx, month)
}

func (s *StatsService) selectMonth(ctx context.Context, month time.Month) ([]core.LabeledRecord, error) {
	key := month.String()
	if s.cache != nil {
		if records, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Month selection served from cache", "month", key, "records", len(records))
			return records, nil
		}
	}

	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.generation()
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), selectTimeout)
		defer cancel()

		txs, err := s.store.QueryByMonth(qctx, month)
		if err != nil {
			return nil, fmt.Errorf("%w: select %s: %w", core.ErrStoreUnavailable, key, err)
		}
		records := core.LabelAll(txs)
		s.remember(gen, key, records)
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		records := res.Val.([]core.LabeledRecord)
		slog.DebugContext(ctx, "Month selected", "month", key, "records", len(records), "shared", res.Shared)
		return records, nil
	}
}

func (s *StatsService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *StatsService) remember(gen uint64, key string, records []core.LabeledRecord) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.cache.Set(key, records)
}

// Search narrows the named month to records whose title or description
// contains rawQuery, or whose price equals it when it is numeric. An empty
// query returns the whole month.
func (s *StatsService) Search(ctx context.Context, monthName, rawQuery string) ([]core.LabeledRecord, error) {
	month, err := core.ResolveMonth(monthName)
	if err != nil {
		return nil, err
	}

	q := core.ParseSearchQuery(rawQuery)
	if q.IsEmpty() {
		return s.selectMonth(ctx, month)
	}

	txs, err := s.store.QueryByMonthAndText(ctx, month, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", core.ErrStoreUnavailable, month, err)
	}

	records := core.LabelAll(txs)
	slog.DebugContext(ctx, "Month searched",
		"month", month.String(),
		"query", q.Text,
		"numeric", q.Price != nil,
		"records", len(records))
	return records, nil
}

// Totals returns the named month's records with their count and sale totals.
func (s *StatsService) Totals(ctx context.Context, monthName string) ([]core.LabeledRecord, core.Totals, error) {
	records, err := s.SelectMonth(ctx, monthName)
	if err != nil {
		return nil, core.Totals{}, err
	}
	return records, core.ComputeTotals(records), nil
}

// PriceRanges returns the named month's records bucketed by price.
func (s *StatsService) PriceRanges(ctx context.Context, monthName string) ([]core.LabeledRecord, core.PriceRanges, error) {
	records, err := s.SelectMonth(ctx, monthName)
	if err != nil {
		return nil, core.PriceRanges{}, err
	}
	return records, core.ComputePriceRanges(records), nil
}

// CategoryCounts returns the named month's records counted per category.
func (s *StatsService) CategoryCounts(ctx context.Context, monthName string) ([]core.LabeledRecord, core.CategoryCounts, error) {
	records, err := s.SelectMonth(ctx, monthName)
	if err != nil {
		return nil, nil, err
	}
	return records, core.ComputeCategoryCounts(records), nil
}

// Report selects the month once and derives every view from that selection.
func (s *StatsService) Report(ctx context.Context, monthName string) (core.MonthReport, error) {
	records, err := s.SelectMonth(ctx, monthName)
	if err != nil {
		return core.MonthReport{}, err
	}
	return core.Compose(records), nil
}

// Invalidate drops every cached month selection. Queries already in
// flight still answer their callers but are neither cached nor joined by
// later callers.
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Purge()
	}
	for m := time.January; m <= time.December; m++ {
		s.group.Forget(m.String())
	}
}
