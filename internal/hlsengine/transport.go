package hlsengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/logging"
)

const (
	maxPlaylistBytes = 4 << 20

	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 3 * time.Second
)

var defaultRetryStatusCodes = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// TransportConfig controls retries of one playlist request. Zero values use
// the defaults; negative MaxRetries disables retries.
type TransportConfig struct {
	MaxRetries       int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	RetryStatusCodes []int
}

func (c TransportConfig) withDefaults() TransportConfig {
	c.MaxRetries = max(c.MaxRetries, 0)
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if len(c.RetryStatusCodes) == 0 {
		c.RetryStatusCodes = defaultRetryStatusCodes
	}
	return c
}

// checkRetry retries recoverable transport failures and the configured
// status codes. A done context stops the loop with its error.
func (c TransportConfig) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return slices.Contains(c.RetryStatusCodes, resp.StatusCode), nil
}

// cappedBackoff is the library backoff with a server Retry-After limited
// to maxWait.
func cappedBackoff(minWait, maxWait time.Duration, attempt int, resp *http.Response) time.Duration {
	return min(retryablehttp.DefaultBackoff(minWait, maxWait, attempt, resp), maxWait)
}

// StatusError reports a non-200 playlist response.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("playlist request failed: status=%d url=%s", e.StatusCode, e.URL)
}

// fetcher downloads playlists for one engine.
type fetcher struct {
	client    *retryablehttp.Client
	userAgent string
}

func newFetcher(client *http.Client, userAgent string, cfg TransportConfig, logger zerolog.Logger) *fetcher {
	cfg = cfg.withDefaults()

	rc := retryablehttp.NewClient()
	rc.HTTPClient = client
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.InitialBackoff
	rc.RetryWaitMax = cfg.MaxBackoff
	rc.CheckRetry = cfg.checkRetry
	rc.Backoff = cappedBackoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = logging.Leveled{Logger: logger}

	return &fetcher{client: rc, userAgent: userAgent}
}

// get returns the playlist body at rawURL. When retries run out the last
// response is reported as a StatusError.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.apple.mpegurl, application/x-mpegurl, */*")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, RetryAfter: retryAfter(resp.Header)}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h http.Header) time.Duration {
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return max(time.Duration(seconds)*time.Second, 0)
	}
	if when, err := http.ParseTime(raw); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}
