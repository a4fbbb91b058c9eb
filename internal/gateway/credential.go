package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/famomatic/waisitv/internal/metrics"
	"github.com/famomatic/waisitv/internal/payload"
)

// credentialCache is the single-entry credential store. Only Credential
// reads or writes it.
type credentialCache struct {
	mu    sync.RWMutex
	token string
	group singleflight.Group
}

// Credential returns the cached guest credential, registering a new device
// on first use. It returns "" when registration fails; callers proceed
// unauthenticated. Failed registrations are not cached. Concurrent first
// calls share one registration.
func (c *Client) Credential(ctx context.Context) string {
	c.credential.mu.RLock()
	token := c.credential.token
	c.credential.mu.RUnlock()
	if token != "" {
		return token
	}

	v, _, _ := c.credential.group.Do("credential", func() (any, error) {
		c.credential.mu.RLock()
		cached := c.credential.token
		c.credential.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		token := c.register(ctx)
		if token != "" {
			c.credential.mu.Lock()
			c.credential.token = token
			c.credential.mu.Unlock()
		}
		return token, nil
	})
	token, _ = v.(string)
	return token
}

func (c *Client) register(ctx context.Context) string {
	deviceID := c.newDeviceID()
	c.logger.Debug().Str("device_id", deviceID).Msg("registering guest device")

	doc, err := c.Do(ctx, EndpointGuestLogin, GuestLoginRequest{
		DeviceID: deviceID,
		Platform: c.config.Platform,
	})
	if err != nil {
		metrics.RecordRegistration("failed")
		c.logger.Warn().Err(err).Msg("guest registration failed")
		return ""
	}
	token := payload.AccessToken.String(doc)
	if token == "" {
		metrics.RecordRegistration("missing_token")
		c.logger.Warn().Msg("guest registration returned no access token")
		return ""
	}
	metrics.RecordRegistration("ok")
	return token
}

func (c *Client) newDeviceID() string {
	if c.config.NewDeviceID != nil {
		if id := strings.TrimSpace(c.config.NewDeviceID()); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
