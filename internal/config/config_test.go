package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Pipeline.TimeoutSecs)
	assert.False(t, cfg.Pipeline.VisionEnhancement)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentDocuments)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(25), cfg.Server.MaxUploadMB)
	assert.Equal(t, "native", cfg.OCR.Provider)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NotEmpty(t, cfg.Anthropic.Model)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INCOMEVERIFY_PIPELINE_TIMEOUT_SECS", "30")
	t.Setenv("INCOMEVERIFY_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Pipeline.TimeoutSecs)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "noisy", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
