package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "fruitstock", func(context.Context) string { return "abc123" })

	ctx := WithRequestID(context.Background(), "req-1")
	log.Info(ctx, "supplier created", "supplier_id", 7)
	require.NoError(t, log.Sync())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "supplier created", rec["msg"])
	assert.Equal(t, "fruitstock", rec["service"])
	assert.Equal(t, "abc123", rec["trace_id"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.EqualValues(t, 7, rec["supplier_id"])
	assert.Contains(t, rec["caller"], "logger_test.go")
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "fruitstock", nil)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
	assert.NotContains(t, lines[0], "trace_id")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestPrintfSurvivesDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "fruitstock", nil)

	log.Printf("%s [rows:%d] %s", "no such table: fruits", 0, "SELECT * FROM fruits")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "no such table: fruits [rows:0] SELECT * FROM fruits", rec["msg"])
}
