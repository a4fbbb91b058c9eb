// Package resolver maps a stream descriptor to a playable URL.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/metrics"
	"github.com/famomatic/waisitv/internal/payload"
)

// Kind is the normalized content kind sent to the resolution endpoint.
type Kind string

const (
	KindChannel Kind = "channel"
	KindVOD     Kind = "vod"
	KindEpisode Kind = "episode"
)

// Descriptor identifies what to play. DirectURL wins when set; otherwise
// Slug and Kind are submitted for resolution.
type Descriptor struct {
	DirectURL string
	Slug      string
	Kind      string
}

// IsZero reports whether the descriptor names nothing playable.
func (d Descriptor) IsZero() bool {
	return strings.TrimSpace(d.DirectURL) == "" && strings.TrimSpace(d.Slug) == ""
}

// NormalizeKind maps movie, vod and episode to KindVOD and everything else
// to KindChannel.
func NormalizeKind(kind string) Kind {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "movie", "vod", "episode":
		return KindVOD
	default:
		return KindChannel
	}
}

// Caller is the gateway capability the resolver needs.
type Caller interface {
	Do(ctx context.Context, name gateway.EndpointName, body any) (gateway.Payload, error)
	NewChannelURLRequest(slug, kind string) gateway.ChannelURLRequest
}

// Resolver resolves descriptors through the gateway.
type Resolver struct {
	gateway Caller
	logger  zerolog.Logger
}

// New creates a Resolver.
func New(gw Caller, logger zerolog.Logger) *Resolver {
	return &Resolver{gateway: gw, logger: logger}
}

// Resolve returns the playable URL for d, or "" when the stream is
// unavailable. DirectURL is returned verbatim without a network call.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) string {
	if d.DirectURL != "" {
		metrics.RecordResolution("direct", "ok")
		return d.DirectURL
	}
	slug := strings.TrimSpace(d.Slug)
	if slug == "" {
		metrics.RecordResolution("gateway", "empty_descriptor")
		return ""
	}

	kind := NormalizeKind(d.Kind)
	doc, err := r.gateway.Do(ctx, gateway.EndpointChannelURL, r.gateway.NewChannelURLRequest(slug, string(kind)))
	if err != nil {
		metrics.RecordResolution("gateway", "failed")
		r.logger.Warn().Err(err).Str("slug", slug).Str("kind", string(kind)).Msg("stream resolution failed")
		return ""
	}
	url := payload.StreamURL.String(doc)
	if url == "" {
		metrics.RecordResolution("gateway", "missing_url")
		r.logger.Warn().Str("slug", slug).Str("kind", string(kind)).Msg("stream resolution returned no url")
		return ""
	}
	metrics.RecordResolution("gateway", "ok")
	return url
}
