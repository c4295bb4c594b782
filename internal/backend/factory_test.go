package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/config"
	"salesboard/internal/seed"
	"salesboard/internal/storage"
	"salesboard/internal/store/memory"
)

func TestCreateMemoryBackendWithoutSource(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, Source: NoSource})
	require.NoError(t, err)

	assert.IsType(t, &memory.Store{}, res.Store)
	assert.Nil(t, res.Source)
	assert.Nil(t, res.Notifier)
	assert.Nil(t, res.Events)
	assert.NoError(t, res.Cleanup())
}

func TestCreateSQLiteBackendWithHTTPSource(t *testing.T) {
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "salesboard.db"),
		Source:       HTTPSource,
		SeedURL:      "https://example.com/feed.json",
		SeedTimeout:  time.Second,
	}
	res, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &storage.SQLiteRepository{}, res.Store)
	require.IsType(t, &seed.HTTPSource{}, res.Source)
	assert.Equal(t, "https://example.com/feed.json", res.Source.Name())
	assert.NoError(t, res.Store.Ping(context.Background()))
	assert.NoError(t, res.Cleanup())
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.CreateBackend(context.Background(), Config{Type: "postgres", Source: NoSource})
	assert.Error(t, err)

	_, err = f.CreateBackend(context.Background(), Config{Type: MemoryBackend, Source: SheetsSource})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend: "memory",
		SeedSource:  "http",
		SeedURL:     "https://example.com/feed.json",
		SeedTimeout: 5 * time.Second,
		AMQPURL:     "amqp://localhost:5672/",
	})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, HTTPSource, cfg.Source)
	assert.Equal(t, 3, cfg.AMQPAttempts)

	_, err = FromAppConfig(&config.Config{DataBackend: "sqlite", SeedSource: "none"})
	assert.Error(t, err, "sqlite needs a path")
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid())
	}
	assert.False(t, BackendType("sheets").IsValid())
	assert.False(t, SourceType("ftp").IsValid())
}
