package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/retry"
	"github.com/jzx17/backoffice/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_BACKOFFICE_URL", "https://api.example.com/api")

	path := writeFile(t, "config.yaml", `
api:
  base_url: ${TEST_BACKOFFICE_URL}
  timeout: 10s
  requests_per_second: 5
retry:
  max_retries: 2
  base_delay: 250ms
  max_delay: 2s
permissions:
  default: deny
logging:
  level: debug
  format: json
metrics:
  enabled: true
  addr: 127.0.0.1:9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RequestsPerSecond)
	assert.Equal(t, 1, cfg.API.Burst)
	assert.Equal(t, retry.Policy{MaxRetries: 2, BaseDelay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}, cfg.RetryPolicy())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)

	gate := permission.NewGate(permission.NewMap(nil), cfg.GateOptions()...)
	assert.False(t, gate.IsAllowed("/anything"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("api:\n  base_url: http://localhost:3000/api\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.API.UserAgent)
	assert.Zero(t, cfg.API.RequestsPerSecond)
	assert.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())
	assert.Equal(t, "allow", cfg.Permissions.Default)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsAddr, cfg.Metrics.Addr)

	gate := permission.NewGate(permission.NewMap(nil), cfg.GateOptions()...)
	assert.True(t, gate.IsAllowed("/anything"))
}

func TestLoad_ExplicitZeroRetries(t *testing.T) {
	cfg, err := Parse([]byte("retry:\n  max_retries: 0\n"))
	require.NoError(t, err)

	p := cfg.RetryPolicy()
	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, retry.DefaultBaseDelay, p.BaseDelay)
	assert.Equal(t, 1, p.MaxAttempts())
}

func TestLoad_MaxDelayFollowsLargeBase(t *testing.T) {
	cfg, err := Parse([]byte("retry:\n  base_delay: 10s\n"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RetryPolicy().MaxDelay)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.API.BaseURL)
	assert.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad url", "api:\n  base_url: ftp://example.com\n"},
		{"negative rps", "api:\n  requests_per_second: -1\n"},
		{"negative retries", "retry:\n  max_retries: -1\n"},
		{"max below base", "retry:\n  base_delay: 2s\n  max_delay: 1s\n"},
		{"unknown default", "permissions:\n  default: maybe\n"},
		{"unknown level", "logging:\n  level: trace\n"},
		{"unknown format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("api:\n  base_url: ftp://example.com\n"))
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("api:\n  base_uri: http://localhost\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "TEST_BACKOFFICE_EMAIL=ops@example.com\nTEST_BACKOFFICE_PRESET=fromfile\n")
	t.Setenv("TEST_BACKOFFICE_PRESET", "fromenv")
	t.Setenv("TEST_BACKOFFICE_EMAIL", "")
	os.Unsetenv("TEST_BACKOFFICE_EMAIL")

	missing := filepath.Join(t.TempDir(), "missing.env")
	require.NoError(t, LoadDotEnv(missing, path))

	assert.Equal(t, "ops@example.com", os.Getenv("TEST_BACKOFFICE_EMAIL"))
	assert.Equal(t, "fromenv", os.Getenv("TEST_BACKOFFICE_PRESET"))
}
