package config_test

import (
	"flag"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skillet/internal/config"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Overlay(t *testing.T) {
	cfg, err := config.FromEnv(config.Defaults(), lookupFrom(map[string]string{
		"SKILLET_LANG":       "ja",
		"SKILLET_CHUNK_SIZE": " 4 ",
		"SKILLET_MAX_BYTES":  "1024",
		"SKILLET_LOG_LEVEL":  "DEBUG",
	}))
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, 4, cfg.ChunkSize)
	assert.Equal(t, int64(1024), cfg.MaxBytes)
	assert.Equal(t, 256, cfg.MaxDepth)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestFromEnv_RejectsBadChunkSize(t *testing.T) {
	_, err := config.FromEnv(config.Defaults(), lookupFrom(map[string]string{"SKILLET_CHUNK_SIZE": "0"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKILLET_CHUNK_SIZE")
}

func TestFlagsOverrideEnv(t *testing.T) {
	cfg, err := config.FromEnv(config.Defaults(), lookupFrom(map[string]string{"SKILLET_CHUNK_SIZE": "4"}))
	require.NoError(t, err)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-chunk", "9", "-v"}))
	assert.Equal(t, 9, cfg.ChunkSize)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLevelDefault(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, config.Defaults().Level())
	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}
