package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/geocoding-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info", "json")

	logger.Info("geocode resolved", "location", "Berlin")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "geocode resolved", entry["msg"])
	assert.Equal(t, "Berlin", entry["location"])
}

func TestNewLogger_TextFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", "text")

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept", "kind", "no_result")
	assert.Contains(t, buf.String(), "msg=kept")
	assert.Contains(t, buf.String(), "kind=no_result")
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocoder.log")
	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json", LogFile: path})

	logger.Info("pipeline started", "batch_size", 50)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pipeline started"`)
	assert.Contains(t, string(data), `"batch_size":50`)
}
