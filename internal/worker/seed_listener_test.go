package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/amqp"
)

// scriptedSource fails the first failures subscriptions, then delivers one
// event per subscription and blocks until cancelled.
type scriptedSource struct {
	failures  int32
	subscribe atomic.Int32
}

func (s *scriptedSource) ConsumeSeeded(ctx context.Context, handler func(context.Context, *amqp.SeedCompletedMessage) error) error {
	n := s.subscribe.Add(1)
	if n <= s.failures {
		return errors.New("connection refused")
	}
	if err := handler(ctx, amqp.NewSeedCompletedMessage("feed", 60)); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleSeededInvalidates(t *testing.T) {
	var purged atomic.Int32
	l := NewSeedListener(&scriptedSource{}, func() { purged.Add(1) })

	require.NoError(t, l.HandleSeeded(context.Background(), amqp.NewSeedCompletedMessage("feed", 3)))
	assert.EqualValues(t, 1, purged.Load())
}

func TestRunRetriesThenConsumes(t *testing.T) {
	src := &scriptedSource{failures: 2}
	purged := make(chan struct{}, 1)
	l := NewSeedListener(src, func() { purged <- struct{}{} })
	l.retryDelay = time.Millisecond
	l.maxRetryDelay = 2 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-purged:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never delivered an event")
	}
	assert.EqualValues(t, 3, src.subscribe.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
