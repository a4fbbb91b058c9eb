// Package gateway is the protocol client for the catalog and stream
// resolution service. Every response is an encrypted envelope; every
// authenticated call carries the process-wide guest credential.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/famomatic/waisitv/internal/envelope"
	"github.com/famomatic/waisitv/internal/logging"
	"github.com/famomatic/waisitv/internal/metrics"
)

// Payload is a decrypted JSON document. A nil Payload means the call failed.
type Payload = json.RawMessage

// Client performs gateway calls.
type Client struct {
	config     Config
	registry   Registry
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	cipher     *envelope.Cipher
	logger     zerolog.Logger
	credential credentialCache
}

// New creates a gateway client.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cfg.HTTPClient
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = logging.Leveled{Logger: cfg.Logger.Level(maxLevel(cfg.Logger.GetLevel(), zerolog.InfoLevel))}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		config:     cfg,
		registry:   NewRegistry(cfg),
		httpClient: rc,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		cipher:     cfg.Cipher,
		logger:     cfg.Logger,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Call performs the named operation and returns the decrypted payload, or
// nil on any failure. It never returns an error; failures are logged.
func (c *Client) Call(ctx context.Context, name EndpointName, body any) Payload {
	doc, err := c.Do(ctx, name, body)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", string(name)).Msg("gateway call failed")
		return nil
	}
	return doc
}

// Do performs the named operation and returns the decrypted payload.
func (c *Client) Do(ctx context.Context, name EndpointName, body any) (Payload, error) {
	ep, ok := c.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}

	var token string
	if ep.Auth {
		token = c.Credential(ctx)
	}

	started := time.Now()
	doc, err := c.post(ctx, ep, token, body)
	metrics.RecordGatewayCall(string(name), outcomeOf(err), time.Since(started).Seconds())
	return doc, err
}

func (c *Client) post(ctx context.Context, ep Endpoint, token string, body any) (Payload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", ep.Name, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Endpoint: ep.Name, Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(raw))
	if err != nil {
		return nil, &TransportError{Endpoint: ep.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if ep.Auth {
		// The header is sent even with an empty credential.
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: ep.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Endpoint: ep.Name, StatusCode: resp.StatusCode}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: ep.Name, Err: err}
	}
	return c.open(respBody)
}

func (c *Client) open(respBody []byte) (Payload, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	field, ok := env[envelope.Field]
	if !ok {
		return nil, ErrMissingEnvelope
	}
	var cipherHex string
	if err := json.Unmarshal(field, &cipherHex); err != nil {
		return nil, fmt.Errorf("%w: %s is not a string", ErrMissingEnvelope, envelope.Field)
	}
	return c.cipher.Open(cipherHex)
}

func outcomeOf(err error) string {
	var statusErr *StatusError
	var transportErr *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.Is(err, envelope.ErrDecrypt):
		return "decrypt"
	default:
		return "malformed"
	}
}

// retryablehttp logs every attempt at debug; keep those quiet unless the
// caller asked for debug output.
func maxLevel(a, b zerolog.Level) zerolog.Level {
	if a > b {
		return a
	}
	return b
}
