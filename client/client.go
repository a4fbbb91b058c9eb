// Package client is the public entry point: catalog browsing, stream
// resolution and playback sessions over the guest gateway.
package client

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/catalog"
	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/hlsengine"
	"github.com/famomatic/waisitv/internal/logging"
	"github.com/famomatic/waisitv/internal/playback"
	"github.com/famomatic/waisitv/internal/resolver"
)

// Client is the high-level streaming client.
type Client struct {
	config   Config
	gateway  *gateway.Client
	resolver *resolver.Resolver
	catalog  *catalog.Service
	engines  playback.EngineFactory
	logger   Logger
	log      zerolog.Logger

	mu      sync.Mutex
	closed  bool
	players []*playback.Controller
}

// New creates a new streaming client.
func New(config Config) *Client {
	return NewClient(config)
}

// NewClient creates a new streaming client.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient(config.ProxyURL, config.requestTimeout())
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	log := structuredLogger(logger)

	gwCfg := config.ToGatewayConfig()
	gwCfg.Logger = logging.WithComponent(log, "gateway")
	gw := gateway.New(gwCfg)

	engCfg := config.ToEngineConfig()
	if config.ManifestTimeout > 0 {
		engCfg.HTTPClient = defaultHTTPClient(config.ProxyURL, config.ManifestTimeout)
	}
	engCfg.Logger = logging.WithComponent(log, "hls")

	return &Client{
		config:   config,
		gateway:  gw,
		resolver: resolver.New(gw, logging.WithComponent(log, "resolver")),
		catalog: catalog.New(gw, catalog.Config{
			Cache:    config.CatalogCache,
			CacheTTL: config.CacheTTL,
			Premium:  config.Premium,
			Logger:   logging.WithComponent(log, "catalog"),
		}),
		engines: hlsengine.NewFactory(engCfg),
		logger:  logger,
		log:     log,
	}
}

// Home fetches the home slider and the raw category chunks.
func (c *Client) Home(ctx context.Context) HomeSections {
	ctx, cancel := withDefaultTimeout(ctx, c.config.requestTimeout())
	defer cancel()
	return c.catalog.Home(ctx)
}

// LiveChannels lists live channels.
func (c *Client) LiveChannels(ctx context.Context) []Item {
	ctx, cancel := withDefaultTimeout(ctx, c.config.requestTimeout())
	defer cancel()
	return c.catalog.LiveChannels(ctx)
}

// GenrePrograms lists the programs of one genre slug.
func (c *Client) GenrePrograms(ctx context.Context, genre string) ([]Item, error) {
	if genre == "" {
		return nil, ErrInvalidInput
	}
	ctx, cancel := withDefaultTimeout(ctx, c.config.requestTimeout())
	defer cancel()
	return c.catalog.GenrePrograms(ctx, genre), nil
}

// Catalog loads the full bucketed catalog. Sections that fail to load are
// empty.
func (c *Client) Catalog(ctx context.Context) Catalog {
	return c.catalog.Load(ctx)
}

// WarmUp primes the gateway in the background. Close waits for it.
func (c *Client) WarmUp(ctx context.Context) {
	c.catalog.WarmUp(ctx)
}

// ResolveStreamURL returns the playable URL for d.
func (c *Client) ResolveStreamURL(ctx context.Context, d Descriptor) (string, error) {
	if d.IsZero() {
		return "", ErrInvalidInput
	}
	ctx, cancel := withDefaultTimeout(ctx, c.config.requestTimeout())
	defer cancel()
	url := c.resolver.Resolve(ctx, d)
	if url == "" {
		return "", ErrUnavailable
	}
	return url, nil
}

// Credential returns the cached guest credential, registering on first use.
// It returns "" when registration fails.
func (c *Client) Credential(ctx context.Context) string {
	return c.gateway.Credential(ctx)
}

// PlayerOptions configures NewPlayer.
type PlayerOptions struct {
	// Sink renders media. If nil, a headless sink reports playback as soon
	// as it is requested.
	Sink playback.Sink
	// OnStateChange receives every state change in order. It may drive the
	// player, including Close and Start, but must not call Wait or
	// Client.Close.
	OnStateChange func(PlayerState)
	// Clock drives the controls auto-hide timer. Nil uses the system clock.
	Clock playback.Clock
}

// NewPlayer creates a playback controller wired to the client's resolver and
// HLS engine. Close closes every player still open.
func (c *Client) NewPlayer(opts PlayerOptions) (*playback.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	sink := opts.Sink
	var headless *HeadlessSink
	if sink == nil {
		headless = &HeadlessSink{}
		sink = headless
	}
	ctrl := playback.NewController(playback.Config{
		Resolver:             c.resolver,
		NewEngine:            c.engines,
		Sink:                 sink,
		MaxNetworkRecoveries: c.config.MaxNetworkRecoveries,
		ControlsTimeout:      c.config.ControlsTimeout,
		Clock:                opts.Clock,
		OnStateChange:        opts.OnStateChange,
		Logger:               logging.WithComponent(c.log, "player"),
	})
	if headless != nil {
		headless.Bind(ctrl)
	}
	c.players = append(c.players, ctrl)
	return ctrl, nil
}

// Close closes all players, waits for background work and releases the
// catalog cache when it holds connections.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	players := c.players
	c.players = nil
	c.mu.Unlock()

	for _, p := range players {
		p.Close()
	}
	for _, p := range players {
		p.Wait()
	}
	c.catalog.Wait()

	if closer, ok := c.config.CatalogCache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warnf("close catalog cache: %v", err)
			return err
		}
	}
	return nil
}
