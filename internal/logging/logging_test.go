package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown", "entity_id", "v1")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "entity_id=v1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{}, "info")
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("logger not retrieved from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger fallback")
	}
}
