package backend

import (
	"context"

	"salesboard/internal/seed"
	"salesboard/internal/services"
	"salesboard/internal/store"
	"salesboard/internal/worker"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult bundles the store with the seeding collaborators built for it.
type BackendResult struct {
	Store store.Store
	// Source is nil when seeding is disabled.
	Source seed.Source
	// Notifier is nil when AMQP is not configured or unreachable.
	Notifier services.SeedNotifier
	// Events is set together with Notifier.
	Events  worker.SeedEventSource
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType selects the transaction store.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SourceType selects where an empty store is seeded from.
type SourceType string

const (
	HTTPSource   SourceType = "http"
	SheetsSource SourceType = "sheets"
	NoSource     SourceType = "none"
)

func (st SourceType) IsValid() bool {
	switch st {
	case HTTPSource, SheetsSource, NoSource:
		return true
	default:
		return false
	}
}
