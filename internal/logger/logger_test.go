package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		if _, err := NewLogger(env, ""); err != nil {
			t.Errorf("env %s: %v", env, err)
		}
	}
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchr.log")
	l, err := NewLogger("prod", "info", path)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("index_flushed", zap.Int("ops", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "index_flushed") {
		t.Errorf("expected entry in log file, got %q", data)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	if FromContext(ContextWithLogger(context.Background(), l)) != l {
		t.Error("expected stored logger")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	if WithFields(ctx) != ctx {
		t.Error("no fields must keep the context")
	}

	FromContext(WithFields(ctx, zap.Int64("doc_id", 7))).Info("index_upserted")

	entries := logs.FilterMessage("index_upserted").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["doc_id"]; got != int64(7) {
		t.Errorf("expected doc_id field, got %v", got)
	}
}
