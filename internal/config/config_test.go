package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.RefreshDelay)
	assert.Equal(t, domain.DefaultRefreshRules(), cfg.RefreshRules)
	assert.Equal(t, BackendFile, cfg.SessionBackend)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.QuotaStaleAfter)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoadReadsConfigFileFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".coffeeviz")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`base_url = "https://api.coffeeviz.test"

[request]
timeout = "5s"
rate_limit = 2.5
burst = 3

[refresh]
delay = "250ms"
rules = ["/api/team/create"]

[session]
backend = "redis"

[log]
level = "debug"
`), 0o600))

	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.coffeeviz.test", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshDelay)
	assert.Equal(t, []domain.RefreshRule{{PathPattern: "/api/team/create"}}, cfg.RefreshRules)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = \"https://file.test\"\n"), 0o600))

	t.Setenv("CVZ_BASE_URL", "https://env.test")
	t.Setenv("CVZ_REQUEST_TIMEOUT", "12s")

	v := viper.New()
	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.test", cfg.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{name: "backend", key: KeySessionBackend, value: "etcd", wantErr: "session.backend"},
		{name: "timeout", key: KeyRequestTimeout, value: "0s", wantErr: "request.timeout must be positive"},
		{name: "rate", key: KeyRateLimit, value: -1, wantErr: "request.rate_limit must not be negative"},
		{name: "log level", key: KeyLogLevel, value: "chatty", wantErr: "log.level"},
		{name: "delay", key: KeyRefreshDelay, value: "-5ms", wantErr: "refresh.delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v, "")
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
