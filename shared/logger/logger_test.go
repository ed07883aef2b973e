package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level))
		})
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &Config{Level: "info", Format: "json"})

	log.Info("job dispatched", slog.String("job_id", "job-1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "job dispatched", entry["msg"])
	assert.Equal(t, "job-1", entry["job_id"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &Config{Level: "warn", Format: "json"})

	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")
	log.Error("kept as well")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kept")
	assert.Contains(t, lines[1], "kept as well")
}

func TestNewWithWriter_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &Config{Level: "info", Format: "console"})

	log.Info("consumer started", slog.String("queue", "job_notify_queue"))

	out := buf.String()
	assert.Contains(t, out, "consumer started")
	assert.Contains(t, out, "job_notify_queue")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &Config{Level: "info", Format: "json"})

	child := log.With(slog.String("service", "dispatcher"))
	child.Info("run finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatcher", entry["service"])
}

func TestNew_OutputSelection(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", ""} {
		log, err := New(&Config{Level: "info", Format: "json", Output: output})
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}

func TestNewDefault(t *testing.T) {
	log := NewDefault()
	require.NotNil(t, log)
	require.NotNil(t, log.Logger)
}
