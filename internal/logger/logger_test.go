package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fintrack.log")
	log, err := New(Config{Level: "debug", Encoding: "json", Output: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello", zap.String("k", "v"))
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) || !strings.Contains(string(b), `"timestamp"`) {
		t.Errorf("unexpected log line: %s", b)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", Output: "stderr"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled after an unparsable level")
	}
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID = %q", got)
	}
	WithRequestID(ctx, base).Info("tagged")
	WithRequestID(context.Background(), base).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "req-1" {
		t.Errorf("first entry missing request_id: %v", entries[0].ContextMap())
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Error("second entry should not carry a request_id")
	}
}
