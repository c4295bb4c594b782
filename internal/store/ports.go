package store

import (
	"context"
	"time"

	"salesboard/internal/core"
)

// Ports for transaction storage adapters.
type (
	// MonthQuerier selects transactions by the calendar month of their sale
	// date, independent of year.
	MonthQuerier interface {
		QueryByMonth(ctx context.Context, month time.Month) ([]core.Transaction, error)
		// QueryByMonthAndText narrows the month to records matching q
		// (case-insensitive title/description substring, or exact price).
		QueryByMonthAndText(ctx context.Context, month time.Month, q core.SearchQuery) ([]core.Transaction, error)
	}

	// TransactionLister returns every stored transaction.
	TransactionLister interface {
		FindAll(ctx context.Context) ([]core.Transaction, error)
		Count(ctx context.Context) (int64, error)
	}

	// Seeder bulk-loads transactions exactly once. SeedIfEmpty inserts all
	// records atomically when the store holds none and reports how many were
	// written; it returns 0 and no error when the store was already seeded.
	Seeder interface {
		SeedIfEmpty(ctx context.Context, source string, txs []core.Transaction) (int, error)
	}

	// Pinger reports store reachability.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store is the full capability set the application needs.
	Store interface {
		MonthQuerier
		TransactionLister
		Seeder
		Pinger
	}
)
