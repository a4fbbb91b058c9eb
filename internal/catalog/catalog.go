// Package catalog loads the browsable catalog: home sections, live
// channels and genre programs. Gateway failures degrade to empty lists.
package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/metrics"
	"github.com/famomatic/waisitv/internal/payload"
)

// Genres used by Load and WarmUp.
const (
	GenreLiveTV       = "live-tv"
	GenreDubbedMovies = "urdu-dubbed-movies"
	GenreSports       = "sports"
)

// Thresholds below which Load fetches a supplemental genre.
const (
	MinMovies = 5
	MinSports = 3
)

const (
	defaultCacheTTL = 5 * time.Minute
	warmUpTimeout   = 10 * time.Second
)

// Caller is the gateway capability the catalog needs.
type Caller interface {
	Do(ctx context.Context, name gateway.EndpointName, body any) (gateway.Payload, error)
	NewHomeSectionsRequest() gateway.HomeSectionsRequest
	NewLiveChannelsRequest() gateway.LiveChannelsRequest
	NewGenreProgramsRequest(genre string) gateway.GenreProgramsRequest
}

// Config configures a Service.
type Config struct {
	// Cache stores decrypted payloads. Nil disables caching.
	Cache    Cache
	CacheTTL time.Duration
	// Premium entries are appended verbatim to every Catalog.
	Premium []Item
	Logger  zerolog.Logger
	// NewID generates fallback ids for entries without one.
	NewID func() string
}

// Service loads catalog data through the gateway.
type Service struct {
	gateway Caller
	cache   Cache
	ttl     time.Duration
	premium []Item
	logger  zerolog.Logger
	newID   func() string

	warm sync.WaitGroup
}

// New creates a Service.
func New(gw Caller, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Service{
		gateway: gw,
		cache:   cfg.Cache,
		ttl:     cfg.CacheTTL,
		premium: append([]Item(nil), cfg.Premium...),
		logger:  cfg.Logger,
		newID:   cfg.NewID,
	}
}

// Home fetches the slider and the raw category chunks.
func (s *Service) Home(ctx context.Context) HomeSections {
	doc := s.fetch(ctx, "home", gateway.EndpointHomeSections, s.gateway.NewHomeSectionsRequest())
	out := HomeSections{Slider: []SliderItem{}, Chunks: []json.RawMessage{}}
	if doc == nil {
		return out
	}
	for _, d := range payload.Slider.Objects(doc) {
		out.Slider = append(out.Slider, s.sliderItem(d))
	}
	for _, c := range payload.Chunks.Objects(doc) {
		out.Chunks = append(out.Chunks, json.RawMessage(c))
	}
	return out
}

// LiveChannels fetches the live channel list. When it is empty the
// live-tv genre is used instead.
func (s *Service) LiveChannels(ctx context.Context) []Item {
	docs := payload.Channels.Objects(s.fetch(ctx, "live", gateway.EndpointLiveChannels, s.gateway.NewLiveChannelsRequest()))
	if len(docs) == 0 {
		docs = payload.Programs.Objects(s.fetchGenre(ctx, GenreLiveTV))
	}
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.channelItem(d))
	}
	return out
}

// GenrePrograms fetches the programs of one genre.
func (s *Service) GenrePrograms(ctx context.Context, genre string) []Item {
	docs := payload.Programs.Objects(s.fetchGenre(ctx, genre))
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.genreItem(d))
	}
	return out
}

// Load assembles the full catalog. Sections come from the home chunks;
// movie and sport rows are topped up from their genres when short.
func (s *Service) Load(ctx context.Context) Catalog {
	home := s.Home(ctx)
	cat := Catalog{
		Slider:   home.Slider,
		Sections: []Section{},
		Movies:   []Item{},
		Sports:   []Item{},
		Premium:  append([]Item{}, s.premium...),
	}

	for _, chunk := range home.Chunks {
		sec := s.section(chunk)
		if len(sec.Items) == 0 {
			continue
		}
		cat.Sections = append(cat.Sections, sec)

		name := strings.ToLower(sec.Title)
		if strings.Contains(name, "movie") || strings.Contains(name, "dubbed") {
			cat.Movies = append(cat.Movies, sec.Items...)
		}
		if strings.Contains(name, "sport") || strings.Contains(name, "cricket") {
			cat.Sports = append(cat.Sports, sec.Items...)
		}
	}

	if len(cat.Movies) < MinMovies {
		cat.Movies = append(cat.Movies, s.GenrePrograms(ctx, GenreDubbedMovies)...)
	}
	if len(cat.Sports) < MinSports {
		cat.Sports = append(cat.Sports, s.GenrePrograms(ctx, GenreSports)...)
	}

	cat.Channels = s.LiveChannels(ctx)
	return cat
}

// WarmUp fires an uncached live-tv genre call in the background. The
// result is discarded. Wait blocks until outstanding warm-ups finish.
func (s *Service) WarmUp(ctx context.Context) {
	s.warm.Add(1)
	go func() {
		defer s.warm.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), warmUpTimeout)
		defer cancel()
		if _, err := s.gateway.Do(ctx, gateway.EndpointGenrePrograms, s.gateway.NewGenreProgramsRequest(GenreLiveTV)); err != nil {
			s.logger.Debug().Err(err).Msg("warm-up call failed")
		}
	}()
}

// Wait blocks until outstanding warm-up calls return.
func (s *Service) Wait() {
	s.warm.Wait()
}

func (s *Service) fetchGenre(ctx context.Context, genre string) gateway.Payload {
	return s.fetch(ctx, "genre:"+genre, gateway.EndpointGenrePrograms, s.gateway.NewGenreProgramsRequest(genre))
}

// fetch returns the decrypted payload for key, from the cache when
// possible. Failed calls are not cached.
func (s *Service) fetch(ctx context.Context, key string, name gateway.EndpointName, body any) gateway.Payload {
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			metrics.RecordCacheLookup(true)
			return v
		}
		metrics.RecordCacheLookup(false)
	}

	doc, err := s.gateway.Do(ctx, name, body)
	if err != nil {
		s.logger.Warn().Err(err).Str("endpoint", string(name)).Msg("catalog call failed")
		return nil
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, doc, s.ttl)
	}
	return doc
}
