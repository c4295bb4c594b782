// Package worker runs background consumers next to the HTTP server.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"salesboard/internal/amqp"
)

// SeedEventSource delivers seed events until ctx ends or the connection
// drops.
type SeedEventSource interface {
	ConsumeSeeded(ctx context.Context, handler func(context.Context, *amqp.SeedCompletedMessage) error) error
}

// SeedListener purges cached month selections whenever any process reports
// a completed seed, so a server sharing its database with the seeding CLI
// stops serving the empty pre-seed view.
type SeedListener struct {
	events     SeedEventSource
	invalidate func()

	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func NewSeedListener(events SeedEventSource, invalidate func()) *SeedListener {
	return &SeedListener{
		events:        events,
		invalidate:    invalidate,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
	}
}

// HandleSeeded processes one seed event.
func (l *SeedListener) HandleSeeded(ctx context.Context, msg *amqp.SeedCompletedMessage) error {
	slog.InfoContext(ctx, "Seed event received, invalidating month cache",
		"source", msg.Source,
		"count", msg.Count,
		"seeded_at", msg.Timestamp)
	l.invalidate()
	return nil
}

// Run consumes until ctx is cancelled, resubscribing with backoff when the
// subscription fails.
func (l *SeedListener) Run(ctx context.Context) error {
	delay := l.retryDelay
	for {
		err := l.events.ConsumeSeeded(ctx, l.HandleSeeded)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}

		slog.WarnContext(ctx, "Seed event subscription lost, retrying", "error", err, "wait", delay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > l.maxRetryDelay {
			delay = l.maxRetryDelay
		}
	}
}
