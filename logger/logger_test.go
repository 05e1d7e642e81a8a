package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.name))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "DEBUG", Format: "json"}, &buf)

	ctx := ContextWithRequestID(context.Background(), "01HZX")
	WithRequestID(ctx, l).Debug("executing query", "sql_len", 12)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "executing query", record["msg"])
	assert.Equal(t, "01HZX", record["request_id"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "WARN"}, &buf)
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestWithRequestIDWithoutID(t *testing.T) {
	l := Nop()
	assert.Same(t, l, WithRequestID(context.Background(), l))
	assert.Empty(t, RequestID(context.Background()))
}

func TestGetFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, Get())
}
