package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_ProcessEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PB_HTTP_ADDR", ":7070")
	t.Setenv("PB_ACCESS_TOKEN_MINUTES", "30")
	t.Setenv("PB_PUSH_MODE", "queue")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, nil)

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, PushModeQueue, cfg.PushMode)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}

func TestParseEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("PB_FETCH_URL_BASE=https://fetch.example\nPB_S3_BUCKET=from-file\n"), 0o600))

	// godotenv.Load sets variables for the whole process; clean them up.
	t.Setenv("PB_FETCH_URL_BASE", "")
	t.Setenv("PB_S3_BUCKET", "")
	require.NoError(t, os.Unsetenv("PB_FETCH_URL_BASE"))
	require.NoError(t, os.Unsetenv("PB_S3_BUCKET"))

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, []string{"-env", path})

	assert.Equal(t, "https://fetch.example", cfg.FetchURLBase)
	assert.Equal(t, "from-file", cfg.S3Bucket)
}

func TestParseEnv_MissingExplicitFilePanics(t *testing.T) {
	require.Panics(t, func() {
		parseEnv(&Config{}, []string{"-env", filepath.Join(t.TempDir(), "missing.env")})
	})
}

func TestParseEnv_BadMinutesPanics(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PB_ACCESS_TOKEN_MINUTES", "soon")
	require.Panics(t, func() { parseEnv(&Config{}, nil) })
}
