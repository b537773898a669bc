package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer

	log, err := Setup(LoggerConfig{Level: "warn", Output: &buf})
	require.NoError(t, err)

	log.Info("suppressed")
	log.Warn("emitted", slog.String("key", "value"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "emitted", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup(LoggerConfig{Level: "loud"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, level, "input %q", tt.input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestContextCarriage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("trace_id", "abc"))

	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, logger, FromContextOrDefault(ctx, nil))

	// Without a logger in context, the fallback wins.
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background()))
}
