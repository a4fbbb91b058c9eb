package client

import (
	"net/http"
	"time"

	"github.com/famomatic/waisitv/internal/catalog"
	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/hlsengine"
)

// Config holds configuration for the streaming client.
type Config struct {
	// HTTPClient is the client used for gateway and playlist requests.
	// If nil, a client honoring ProxyURL and RequestTimeout is built.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// RequestTimeout bounds a single HTTP exchange. Default is 20s.
	RequestTimeout time.Duration

	// Gateway base URLs. Empty values use the production endpoints.
	APIv5Base string
	APIv3Base string
	MediaBase string

	// Platform and ProjectID identify the client to the catalog endpoints.
	Platform  string
	ProjectID string

	// UserAgent is sent on every request and as the device description in
	// stream resolution.
	UserAgent string

	// MaxRetries bounds gateway retries on 429/5xx. Negative disables retries.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestsPerSecond paces gateway calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int

	// CatalogCache stores decrypted catalog responses. Nil disables caching.
	CatalogCache catalog.Cache
	CacheTTL     time.Duration

	// Premium channels are listed in every catalog and play from their URL.
	Premium []Item

	// MaxNetworkRecoveries bounds reloads after fatal network errors within
	// one session. Zero uses the default; negative is unbounded.
	MaxNetworkRecoveries int

	// ControlsTimeout is the auto-hide delay for player controls.
	ControlsTimeout time.Duration

	// ManifestRetries bounds retries of one playlist fetch. ManifestTimeout
	// bounds each attempt when HTTPClient is not set.
	ManifestRetries int
	ManifestTimeout time.Duration
	RefreshInterval time.Duration

	// Logger receives warnings. A logging.Warner exposes its structured
	// logger to every component.
	Logger Logger
}

const defaultRequestTimeout = 20 * time.Second

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return defaultRequestTimeout
}

// ToGatewayConfig maps c onto the protocol client configuration.
func (c Config) ToGatewayConfig() gateway.Config {
	cfg := gateway.DefaultConfig()
	cfg.HTTPClient = c.HTTPClient
	cfg.APIv5Base = c.APIv5Base
	cfg.APIv3Base = c.APIv3Base
	cfg.MediaBase = c.MediaBase
	cfg.Platform = c.Platform
	cfg.ProjectID = c.ProjectID
	cfg.UserAgent = c.UserAgent
	if c.MaxRetries != 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RetryWaitMin > 0 {
		cfg.RetryWaitMin = c.RetryWaitMin
	}
	if c.RetryWaitMax > 0 {
		cfg.RetryWaitMax = c.RetryWaitMax
	}
	cfg.RequestsPerSecond = c.RequestsPerSecond
	if c.Burst > 0 {
		cfg.Burst = c.Burst
	}
	return cfg
}

// ToEngineConfig maps c onto the HLS engine configuration.
func (c Config) ToEngineConfig() hlsengine.Config {
	return hlsengine.Config{
		HTTPClient: c.HTTPClient,
		UserAgent:  c.UserAgent,
		Transport:  hlsengine.TransportConfig{MaxRetries: c.ManifestRetries},
		RefreshInterval: c.RefreshInterval,
	}
}
