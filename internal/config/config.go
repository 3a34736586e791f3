// Package config loads cvz settings from ~/.coffeeviz/config.toml, CVZ_*
// environment variables and built-in defaults, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/viper"
)

const (
	KeyBaseURL         = "base_url"
	KeyRequestTimeout  = "request.timeout"
	KeyRateLimit       = "request.rate_limit"
	KeyBurst           = "request.burst"
	KeyRefreshDelay    = "refresh.delay"
	KeyRefreshRules    = "refresh.rules"
	KeySessionBackend  = "session.backend"
	KeySessionPath     = "session.path"
	KeyRedisAddr       = "redis.addr"
	KeyRedisKeyPrefix  = "redis.key_prefix"
	KeyRedisTTL        = "redis.ttl"
	KeyPassEntry       = "pass.entry"
	KeyQuotaPath       = "quota.path"
	KeyQuotaStaleAfter = "quota.stale_after"
	KeyLogLevel        = "log.level"
	KeyMetricsTextfile = "metrics.textfile"

	configName = "config"
	configType = "toml"
	configDir  = ".coffeeviz"
	envPrefix  = "CVZ"

	BackendFile  = "file"
	BackendRedis = "redis"
	BackendPass  = "pass"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RateLimit       float64
	Burst           int
	RefreshDelay    time.Duration
	RefreshRules    []domain.RefreshRule
	SessionBackend  string
	QuotaStaleAfter time.Duration
	LogLevel        slog.Level
	MetricsTextfile string
}

// Load reads configuration into cfg. An explicit path overrides the default
// search in ~/.coffeeviz; a missing default file is not an error.
func Load(cfg *viper.Viper, path string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	setDefaults(cfg)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(cfg)
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault(KeyBaseURL, "http://localhost:8080")
	cfg.SetDefault(KeyRequestTimeout, 30*time.Second)
	cfg.SetDefault(KeyRateLimit, 0.0)
	cfg.SetDefault(KeyBurst, 1)
	cfg.SetDefault(KeyRefreshDelay, 100*time.Millisecond)
	cfg.SetDefault(KeyRefreshRules, refreshRulePatterns(domain.DefaultRefreshRules()))
	cfg.SetDefault(KeySessionBackend, BackendFile)
	cfg.SetDefault(KeyRedisKeyPrefix, "cvz:")
	cfg.SetDefault(KeyRedisTTL, time.Duration(0))
	cfg.SetDefault(KeyQuotaStaleAfter, time.Hour)
	cfg.SetDefault(KeyLogLevel, "warn")
}

func decode(cfg *viper.Viper) (Config, error) {
	out := Config{
		BaseURL:         strings.TrimSpace(cfg.GetString(KeyBaseURL)),
		RequestTimeout:  cfg.GetDuration(KeyRequestTimeout),
		RateLimit:       cfg.GetFloat64(KeyRateLimit),
		Burst:           cfg.GetInt(KeyBurst),
		RefreshDelay:    cfg.GetDuration(KeyRefreshDelay),
		SessionBackend:  strings.ToLower(strings.TrimSpace(cfg.GetString(KeySessionBackend))),
		QuotaStaleAfter: cfg.GetDuration(KeyQuotaStaleAfter),
		MetricsTextfile: cfg.GetString(KeyMetricsTextfile),
	}

	for _, pattern := range cfg.GetStringSlice(KeyRefreshRules) {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			out.RefreshRules = append(out.RefreshRules, domain.RefreshRule{PathPattern: pattern})
		}
	}

	if err := out.LogLevel.UnmarshalText([]byte(cfg.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyLogLevel, err)
	}

	if err := out.validate(); err != nil {
		return Config{}, err
	}

	return out, nil
}

func (c Config) validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyBaseURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyRequestTimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRateLimit))
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1 when rate limiting", KeyBurst))
	}
	if c.RefreshDelay < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRefreshDelay))
	}
	switch c.SessionBackend {
	case BackendFile, BackendRedis, BackendPass:
	default:
		errs = append(errs, fmt.Errorf("%s must be %q, %q or %q, got %q", KeySessionBackend, BackendFile, BackendRedis, BackendPass, c.SessionBackend))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func refreshRulePatterns(rules []domain.RefreshRule) []string {
	patterns := make([]string, 0, len(rules))
	for _, rule := range rules {
		patterns = append(patterns, rule.PathPattern)
	}
	return patterns
}
