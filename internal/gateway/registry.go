package gateway

import (
	"strings"
	"sync"
)

// EndpointName identifies one gateway operation.
type EndpointName string

const (
	EndpointGuestLogin    EndpointName = "guest-login"
	EndpointHomeSections  EndpointName = "home-sections"
	EndpointLiveChannels  EndpointName = "live-tv"
	EndpointGenrePrograms EndpointName = "genre-programs"
	EndpointChannelURL    EndpointName = "channel-url"
)

// Endpoint describes where an operation lives and whether it carries the
// bearer credential.
type Endpoint struct {
	Name EndpointName
	URL  string
	Auth bool
}

// Registry resolves endpoint names to endpoints.
type Registry interface {
	Get(name EndpointName) (Endpoint, bool)
	All() []Endpoint
}

type defaultRegistry struct {
	endpoints map[EndpointName]Endpoint
	mu        sync.RWMutex
}

// NewRegistry builds the registry for the configured base URLs.
func NewRegistry(cfg Config) Registry {
	cfg = cfg.withDefaults()
	v5 := ensureSlash(cfg.APIv5Base)
	v3 := ensureSlash(cfg.APIv3Base)
	media := ensureSlash(cfg.MediaBase)
	return &defaultRegistry{
		endpoints: map[EndpointName]Endpoint{
			EndpointGuestLogin:    {Name: EndpointGuestLogin, URL: v5 + "auth/guest-login"},
			EndpointHomeSections:  {Name: EndpointHomeSections, URL: v5 + "home-programs-carousal", Auth: true},
			EndpointLiveChannels:  {Name: EndpointLiveChannels, URL: v3 + "live-tv", Auth: true},
			EndpointGenrePrograms: {Name: EndpointGenrePrograms, URL: v5 + "genre-programs-carousal", Auth: true},
			EndpointChannelURL:    {Name: EndpointChannelURL, URL: media + "get-channel-url"},
		},
	}
}

func (r *defaultRegistry) Get(name EndpointName) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[name]
	return e, ok
}

func (r *defaultRegistry) All() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Endpoint, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		all = append(all, e)
	}
	return all
}

func ensureSlash(base string) string {
	base = strings.TrimSpace(base)
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
