package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ETHOS_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.API.Key)
	assert.Equal(t, "us", cfg.API.Region)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.API.TokenLifetime)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FromYAMLAndEnv(t *testing.T) {
	path := writeTempConfig(t, `
api:
  key: file-key
  region: eu
  timeout: 10s
  page_size: 50
redis:
  enabled: true
  addr: redis:6379
logging:
  level: debug
  pretty: true
server:
  addr: ":9090"
`)
	t.Setenv("ETHOS_API_KEY", "env-key")
	t.Setenv("ETHOS_SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, "env-key", cfg.API.Key)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	assert.Equal(t, "eu", cfg.API.Region)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 50, cfg.API.PageSize)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{name: "missing key", yaml: "api:\n  region: us\n", contains: "Config.API.Key"},
		{name: "bad region", yaml: "api:\n  key: k\n  region: mars\n", contains: "Config.API.Region"},
		{name: "bad level", yaml: "api:\n  key: k\nlogging:\n  level: loud\n", contains: "Config.Logging.Level"},
		{name: "negative page size", yaml: "api:\n  key: k\n  page_size: -1\n", contains: "Config.API.PageSize"},
		{name: "short token lifetime", yaml: "api:\n  key: k\n  token_lifetime: 10s\n", contains: "Config.API.TokenLifetime"},
		{name: "redis without addr", yaml: "api:\n  key: k\nredis:\n  enabled: true\n  addr: \"\"\n", contains: "Config.Redis.Addr"},
		{name: "bad base url", yaml: "api:\n  key: k\n  base_url: not a url\n", contains: "Config.API.BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidate_SelfHostedNeedsBaseURL(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "api:\n  key: k\n  region: self_hosted\n  base_url: https://ethos.example.edu\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://ethos.example.edu", cfg.API.BaseURL)

	cfg.API.BaseURL = ""
	assert.True(t, errors.Is(cfg.Validate(), ErrMissingBaseURL))
}
