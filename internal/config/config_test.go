package config

import (
	"testing"
	"time"

	"csvdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "UPLOAD_MAX_BYTES", "SESSION_SECRET", "SESSION_IDLE_TTL", "CHART_WIDTH", "CHART_HEIGHT", "LOG_LEVEL", "PREVIEW_ROWS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 5, cfg.Upload.PreviewRows)
	assert.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
	assert.True(t, cfg.Session.GeneratedSecret)
	assert.GreaterOrEqual(t, len(cfg.Session.Secret), minSecretLength)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SESSION_IDLE_TTL", "15m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.False(t, cfg.Session.GeneratedSecret)
	assert.Equal(t, 15*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"short secret", "SESSION_SECRET", "too-short"},
		{"bad level", "LOG_LEVEL", "LOUD"},
		{"negative upload limit", "UPLOAD_MAX_BYTES", "-1"},
		{"tiny chart", "CHART_WIDTH", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestDefault_IsValidOnceSecretSet(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, validateConfig(cfg))
}

func TestLoadCLI_ReadsAnalysisSettings(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("CHART_WIDTH", "800")
	t.Setenv("CHART_HEIGHT", "500")
	t.Setenv("PREVIEW_ROWS", "10")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadCLI()
	require.NoError(t, err)

	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	assert.Equal(t, 10, cfg.Upload.PreviewRows)
	assert.Equal(t, ChartConfig{Width: 800, Height: 500}, cfg.Charts)
	assert.Equal(t, "WARN", cfg.Log.Level)
	assert.Empty(t, cfg.Session.Secret, "the CLI never needs a session secret")
}

func TestLoadCLI_RejectsInvalid(t *testing.T) {
	t.Setenv("CHART_WIDTH", "50")
	t.Setenv("LOG_LEVEL", "")

	_, err := LoadCLI()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
