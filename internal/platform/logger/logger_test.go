package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWithWriter(t *testing.T) {
	t.Run("json filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "warn", "json")

		log.Info("dropped")
		log.Warn("kept", "customer_id", "7")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "7", entry["customer_id"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "info", "text").Info("hello", "phase", "ready")

		assert.Contains(t, buf.String(), "msg=hello phase=ready")
	})
}
