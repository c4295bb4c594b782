package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewJSONComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStats, Output: &buf})

	logger.Info("Month selected", FieldMonth, "March")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec[FieldComponent] != ComponentStats || rec[FieldMonth] != "March" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestWithComponentDoesNotDuplicate(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: slog.LevelDebug, Output: &buf})

	root.WithComponent(ComponentSeed).Info("Seed completed")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=seed") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldsToSliceSorted(t *testing.T) {
	got := NewFields().WithSeed("feed", 60).WithOperation(OpSeed).ToSlice()
	want := []any{FieldInserted, 60, FieldOperation, OpSeed, FieldSource, "feed"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(DefaultConfig())
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("FromContext should return the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf}))
	r := httptest.NewRequest("GET", "/data/March", nil)

	sl.LogHTTPEnd(context.Background(), r, "rid", "10.0.0.1", 400, 3)
	sl.LogHTTPEnd(context.Background(), r, "rid", "10.0.0.1", 500, 3)
	sl.LogError(context.Background(), "Seed failed", errors.New("boom"), ErrorTypeUpstream, OpSeed, nil)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || strings.Count(out, "level=ERROR") != 2 {
		t.Errorf("unexpected levels: %q", out)
	}
	if !strings.Contains(out, "error_type=upstream_error") {
		t.Errorf("missing error type: %q", out)
	}
}
