package resolver

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/gateway/gatewaytest"
)

func TestResolve_DirectURLSkipsNetwork(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()

	r := New(gateway.New(srv.Config()), zerolog.Nop())
	got := r.Resolve(context.Background(), Descriptor{DirectURL: "X", Slug: "ignored", Kind: "vod"})

	assert.Equal(t, "X", got)
	assert.Empty(t, srv.Requests(""))
}

func TestResolve_NormalizesKind(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"movie", "vod"},
		{"vod", "vod"},
		{"episode", "vod"},
		{"Movie", "vod"},
		{"channel", "channel"},
		{"", "channel"},
		{"sports", "channel"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			srv := gatewaytest.New()
			defer srv.Close()
			srv.Handle(gatewaytest.PathChannelURL, func(gatewaytest.Request) gatewaytest.Response {
				return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"ChannelStreamingUrls": "https://cdn.example/s.m3u8"}}}
			})

			r := New(gateway.New(srv.Config()), zerolog.Nop())
			got := r.Resolve(context.Background(), Descriptor{Slug: "s", Kind: tt.kind})
			assert.Equal(t, "https://cdn.example/s.m3u8", got)

			reqs := srv.Requests(gatewaytest.PathChannelURL)
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.want, reqs[0].Body["type"])
		})
	}
}

func TestResolve_RequestShape(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathChannelURL, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"HlsUrl": "https://cdn.example/top.m3u8"}}
	})

	r := New(gateway.New(srv.Config()), zerolog.Nop())
	assert.Equal(t, "https://cdn.example/top.m3u8", r.Resolve(context.Background(), Descriptor{Slug: "ptv-sports", Kind: "channel"}))

	reqs := srv.Requests(gatewaytest.PathChannelURL)
	require.Len(t, reqs, 1)
	body := reqs[0].Body
	assert.Equal(t, "ptv-sports", body["slug"])
	assert.Equal(t, "waisi-test", body["phone_details"])
	assert.Equal(t, "", body["ip"])
	assert.Equal(t, "0", body["user_id"])
	assert.Equal(t, "0", body["mobile"])
	assert.Empty(t, reqs[0].Authorization)
	assert.Zero(t, srv.Count(gatewaytest.PathGuestLogin), "resolution must not register a credential")
}

func TestResolve_FailuresReturnEmpty(t *testing.T) {
	tests := map[string]gatewaytest.Response{
		"no url field":   {Doc: map[string]any{"data": map[string]any{"message": "not found"}}},
		"decrypt failed": {Raw: `{"eData":"00ff"}`},
		"server error":   {Status: 500, Raw: `{}`},
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			srv := gatewaytest.New()
			defer srv.Close()
			srv.Handle(gatewaytest.PathChannelURL, func(gatewaytest.Request) gatewaytest.Response { return resp })

			r := New(gateway.New(srv.Config()), zerolog.Nop())
			assert.Equal(t, "", r.Resolve(context.Background(), Descriptor{Slug: "s"}))
		})
	}
}

func TestResolve_EmptyDescriptor(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()

	r := New(gateway.New(srv.Config()), zerolog.Nop())
	assert.Equal(t, "", r.Resolve(context.Background(), Descriptor{}))
	assert.Empty(t, srv.Requests(""))
	assert.True(t, Descriptor{Slug: "  "}.IsZero())
}
