package resolver

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNopLogger(t *testing.T) {
	t.Run("implements Logger interface", func(t *testing.T) {
		var _ Logger = NopLogger{}
	})

	t.Run("methods do nothing", func(t *testing.T) {
		l := NopLogger{}
		l.Debug("test message", "key", "value")
		l.Info("test message", "key", "value")
		l.Warn("test message", "key", "value")
		l.Error("test message", "key", "value")
	})

	t.Run("With returns same NopLogger", func(t *testing.T) {
		l := NopLogger{}
		l2 := l.With("key", "value")
		if _, ok := l2.(NopLogger); !ok {
			t.Error("With should return NopLogger")
		}
	})
}

func TestSlogAdapter(t *testing.T) {
	t.Run("NewSlogAdapter with nil uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		if adapter.logger == nil {
			t.Error("adapter.logger should not be nil")
		}
	})

	levels := []struct {
		name  string
		level slog.Level
		log   func(Logger)
		want  string
	}{
		{"Debug", slog.LevelDebug, func(l Logger) { l.Debug("test debug", "foo", "bar") }, "DEBUG"},
		{"Info", slog.LevelInfo, func(l Logger) { l.Info("test info", "foo", "bar") }, "INFO"},
		{"Warn", slog.LevelWarn, func(l Logger) { l.Warn("test warn", "foo", "bar") }, "WARN"},
		{"Error", slog.LevelError, func(l Logger) { l.Error("test error", "foo", "bar") }, "ERROR"},
	}
	for _, tt := range levels {
		t.Run(tt.name+" logs at its level", func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level})
			tt.log(NewSlogAdapter(slog.New(handler)))

			output := buf.String()
			if !strings.Contains(output, tt.want) {
				t.Errorf("expected %s level, got: %s", tt.want, output)
			}
			if !strings.Contains(output, "foo=bar") {
				t.Errorf("expected foo=bar attribute, got: %s", output)
			}
		})
	}

	t.Run("With adds attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		adapter := NewSlogAdapter(slog.New(handler))

		adapter.With("component", "resolver").Debug("test with", "extra", "data")
		output := buf.String()
		if !strings.Contains(output, "component=resolver") {
			t.Errorf("expected component=resolver attribute, got: %s", output)
		}
		if !strings.Contains(output, "extra=data") {
			t.Errorf("expected extra=data attribute, got: %s", output)
		}
	})
}

func TestDereferencer_LogsFetches(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	d := New(nil)
	d.Logger = NewSlogAdapter(slog.New(handler))
	d.Fetcher = newCountingFetcher(map[string]string{"mem://logged": `{}`})

	if _, err := d.Dereference("mem://logged#"); err != nil {
		t.Fatalf("Dereference failed: %v", err)
	}
	if !strings.Contains(buf.String(), "fetching document") {
		t.Errorf("expected fetch to be logged, got: %s", buf.String())
	}
}
