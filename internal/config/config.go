// Package config loads waisi configuration from a YAML file and WAISI_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/playback"
)

// EnvPrefix prefixes environment overrides, e.g. WAISI_GATEWAY_PROJECT_ID.
const EnvPrefix = "WAISI"

// Config holds all configuration for the client.
type Config struct {
	Gateway  GatewayConfig    `mapstructure:"gateway"`
	Playback PlaybackConfig   `mapstructure:"playback"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
	Log      LogConfig        `mapstructure:"log"`
	Premium  []PremiumChannel `mapstructure:"premium"`
}

// GatewayConfig holds protocol client settings.
type GatewayConfig struct {
	APIv5Base         string        `mapstructure:"api_v5_base"`
	APIv3Base         string        `mapstructure:"api_v3_base"`
	MediaBase         string        `mapstructure:"media_base"`
	Platform          string        `mapstructure:"platform"`
	ProjectID         string        `mapstructure:"project_id"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryWaitMin      time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax      time.Duration `mapstructure:"retry_wait_max"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// PlaybackConfig holds controller and engine settings.
type PlaybackConfig struct {
	MaxNetworkRecoveries int           `mapstructure:"max_network_recoveries"`
	ControlsTimeout      time.Duration `mapstructure:"controls_timeout"`
	ManifestRetries      int           `mapstructure:"manifest_retries"`
	ManifestTimeout      time.Duration `mapstructure:"manifest_timeout"`
	RefreshInterval      time.Duration `mapstructure:"refresh_interval"`
}

// CacheConfig selects the catalog response cache.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // memory, redis, none
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// MetricsConfig holds the metrics listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// PremiumChannel is a channel played from a fixed URL.
type PremiumChannel struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	Logo string `mapstructure:"logo"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Load reads configuration from path and the environment. An empty path
// uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and bounded settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q: want memory, redis or none", c.Cache.Backend))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want json or console", c.Log.Format))
	}
	if c.Gateway.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("gateway.requests_per_second must not be negative"))
	}
	for i, p := range c.Premium {
		if p.URL == "" {
			errs = append(errs, fmt.Errorf("premium[%d] %q has no url", i, p.Name))
		}
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("gateway.api_v5_base", gateway.DefaultAPIv5Base)
	v.SetDefault("gateway.api_v3_base", gateway.DefaultAPIv3Base)
	v.SetDefault("gateway.media_base", gateway.DefaultMediaBase)
	v.SetDefault("gateway.platform", gateway.DefaultPlatform)
	v.SetDefault("gateway.project_id", gateway.DefaultProjectID)
	v.SetDefault("gateway.user_agent", DefaultUserAgent)
	v.SetDefault("gateway.timeout", "20s")
	v.SetDefault("gateway.max_retries", gateway.DefaultMaxRetries)
	v.SetDefault("gateway.retry_wait_min", gateway.DefaultRetryWaitMin.String())
	v.SetDefault("gateway.retry_wait_max", gateway.DefaultRetryWaitMax.String())
	v.SetDefault("gateway.requests_per_second", gateway.DefaultRequestsPerSec)
	v.SetDefault("gateway.burst", gateway.DefaultBurst)

	// Playback defaults
	v.SetDefault("playback.max_network_recoveries", playback.DefaultMaxNetworkRecoveries)
	v.SetDefault("playback.controls_timeout", playback.DefaultControlsTimeout.String())
	v.SetDefault("playback.manifest_retries", 2)
	v.SetDefault("playback.manifest_timeout", "15s")
	v.SetDefault("playback.refresh_interval", "0s")

	// Cache defaults
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.max_entries", 64)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "waisi:catalog:")

	// Metrics defaults
	v.SetDefault("metrics.addr", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("premium", defaultPremium)
}

// DefaultUserAgent is reported to the gateway when none is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var defaultPremium = []map[string]any{
	{
		"id":   "ext-star-sports",
		"name": "Star Sports",
		"url":  "https://tvsen5.aynaott.com/c9EpzZ6fQBJ3/tracks-v1a1/mono.ts.m3u8",
		"logo": "https://i.postimg.cc/zvC2qVRx/IMG-20251227-WA0011.jpg",
	},
	{
		"id":   "ext-willow-hd",
		"name": "Willow HD",
		"url":  "https://tvsen5.aynaott.com/willowhd/tracks-v1a1/mono.ts.m3u8",
		"logo": "https://i.postimg.cc/xTrSYzBH/IMG-20251227-WA0010.jpg",
	},
}
