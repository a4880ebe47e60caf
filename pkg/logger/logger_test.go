package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "weatherctl", "debug")
	log.Debug("hello", "city", "Oslo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "weatherctl", entry["service"])
	require.Equal(t, "Oslo", entry["city"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
