package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "auto").Info("dataset loaded", slog.String("dataset", "geo"))
	assert.Contains(t, buf.String(), `"dataset":"geo"`, "non-terminal writers get JSON")

	buf.Reset()
	New(&buf, "info", "text").Info("dataset loaded", slog.String("dataset", "geo"))
	assert.Contains(t, buf.String(), "dataset=geo")

	buf.Reset()
	New(&buf, "warn", "json").Info("hidden")
	assert.Empty(t, buf.String())
}
