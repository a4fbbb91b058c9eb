package gateway

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/envelope"
)

const (
	DefaultAPIv5Base      = "https://web.jazztv.pk/alpha/api_gateway/v5/web/"
	DefaultAPIv3Base      = "https://web.jazztv.pk/alpha/api_gateway/v3/web/"
	DefaultMediaBase      = "https://jazztv.pk/alpha/api_gateway/index.php/media/"
	DefaultPlatform       = "web"
	DefaultProjectID      = "2"
	DefaultMaxRetries     = 2
	DefaultRetryWaitMin   = 200 * time.Millisecond
	DefaultRetryWaitMax   = 2 * time.Second
	DefaultRequestsPerSec = 8
	DefaultBurst          = 4

	maxResponseBytes = 8 << 20
)

// Config holds gateway client configuration.
type Config struct {
	// HTTPClient is the underlying client. If nil, a client with a 20s
	// timeout is used.
	HTTPClient *http.Client

	// Base URLs of the three gateway families. Empty values use the defaults.
	APIv5Base string
	APIv3Base string
	MediaBase string

	// Platform and ProjectID are sent in catalog and registration bodies.
	Platform  string
	ProjectID string

	// UserAgent is sent as the User-Agent header and as phone_details in
	// stream resolution requests.
	UserAgent string

	// Cipher opens response envelopes. If nil, envelope.Default() is used.
	Cipher *envelope.Cipher

	// MaxRetries bounds retries of a single call on 429/5xx and connection
	// errors. Negative disables retries.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestsPerSecond paces outgoing calls. Zero or negative disables pacing.
	RequestsPerSecond float64
	Burst             int

	// NewDeviceID overrides guest device id generation (tests).
	NewDeviceID func() string

	Logger zerolog.Logger
}

// DefaultConfig returns a Config populated with production defaults.
func DefaultConfig() Config {
	return Config{
		APIv5Base:         DefaultAPIv5Base,
		APIv3Base:         DefaultAPIv3Base,
		MediaBase:         DefaultMediaBase,
		Platform:          DefaultPlatform,
		ProjectID:         DefaultProjectID,
		MaxRetries:        DefaultMaxRetries,
		RetryWaitMin:      DefaultRetryWaitMin,
		RetryWaitMax:      DefaultRetryWaitMax,
		RequestsPerSecond: DefaultRequestsPerSec,
		Burst:             DefaultBurst,
		Logger:            zerolog.Nop(),
	}
}

func (c Config) withDefaults() Config {
	if c.APIv5Base == "" {
		c.APIv5Base = DefaultAPIv5Base
	}
	if c.APIv3Base == "" {
		c.APIv3Base = DefaultAPIv3Base
	}
	if c.MediaBase == "" {
		c.MediaBase = DefaultMediaBase
	}
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	if c.ProjectID == "" {
		c.ProjectID = DefaultProjectID
	}
	if c.Cipher == nil {
		c.Cipher = envelope.Default()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = DefaultRetryWaitMin
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		c.RetryWaitMax = c.RetryWaitMin
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}
