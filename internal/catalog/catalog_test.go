package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/gateway/gatewaytest"
)

func programs(prefix string, n int) []any {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{"slug": fmt.Sprintf("%s-%d", prefix, i), "programName": fmt.Sprintf("%s %d", prefix, i)})
	}
	return out
}

func homeWith(chunks ...any) gatewaytest.Handler {
	return func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{
			"slider": []any{map[string]any{"programId": 42, "name": "Headline", "poster": "p.jpg", "slug": "headline"}},
			"chunks": chunks,
		}}}
	}
}

func genreHandler(counts map[string]int) gatewaytest.Handler {
	return func(r gatewaytest.Request) gatewaytest.Response {
		genre, _ := r.Body["genre_slug"].(string)
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"programData": programs(genre, counts[genre])}}}
	}
}

func newService(t *testing.T, srv *gatewaytest.Server, cfg Config) *Service {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "generated" }
	}
	return New(gateway.New(srv.Config()), cfg)
}

func genreCalls(srv *gatewaytest.Server, genre string) int {
	n := 0
	for _, r := range srv.Requests(gatewaytest.PathGenrePrograms) {
		if r.Body["genre_slug"] == genre {
			n++
		}
	}
	return n
}

func TestLoad_ShortMoviesTriggerOneSupplementalFetch(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathHomeSections, homeWith(
		map[string]any{"categoryName": "Latest Movies", "programs": programs("m", 3)},
		map[string]any{"categoryName": "Cricket Highlights", "programData": programs("c", 4)},
	))
	srv.Handle(gatewaytest.PathGenrePrograms, genreHandler(map[string]int{GenreDubbedMovies: 2}))
	srv.Handle(gatewaytest.PathLiveChannels, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"channels": []any{map[string]any{"id": 7, "channelName": "News", "channelSlug": "news"}}}}}
	})

	cat := newService(t, srv, Config{}).Load(context.Background())

	assert.Equal(t, 1, genreCalls(srv, GenreDubbedMovies))
	assert.Zero(t, genreCalls(srv, GenreSports))
	assert.Len(t, cat.Movies, 5)
	assert.Equal(t, "pg-m-0", cat.Movies[0].ID)
	assert.Equal(t, "gen-urdu-dubbed-movies-0", cat.Movies[3].ID)
	assert.Len(t, cat.Sports, 4)
	require.Len(t, cat.Sections, 2)
	assert.Equal(t, "Latest Movies", cat.Sections[0].Title)
	require.Len(t, cat.Channels, 1)
	assert.Equal(t, Item{ID: "jazz-7", Name: "News", Slug: "news", Kind: KindChannel}, cat.Channels[0])
}

func TestLoad_EnoughMoviesSkipSupplementalFetch(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathHomeSections, homeWith(
		map[string]any{"categoryName": "Urdu Dubbed", "programs": programs("m", 6)},
	))
	srv.Handle(gatewaytest.PathGenrePrograms, genreHandler(map[string]int{GenreSports: 1}))
	srv.Handle(gatewaytest.PathLiveChannels, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"channels": []any{map[string]any{"id": 1}}}}}
	})

	cat := newService(t, srv, Config{}).Load(context.Background())

	assert.Zero(t, genreCalls(srv, GenreDubbedMovies))
	assert.Equal(t, 1, genreCalls(srv, GenreSports))
	assert.Len(t, cat.Movies, 6)
	assert.Len(t, cat.Sports, 1)
}

func TestLoad_SectionDefaultsAndEmptyChunks(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathHomeSections, homeWith(
		map[string]any{"programs": []any{map[string]any{"id": 3}}},
		map[string]any{"categoryName": "Empty", "programs": []any{}},
	))

	cat := newService(t, srv, Config{}).Load(context.Background())

	require.Len(t, cat.Sections, 1)
	sec := cat.Sections[0]
	assert.Equal(t, "Featured", sec.Title)
	assert.Equal(t, []Item{{ID: "pg-3", Name: "Untitled Program", Kind: KindVOD}}, sec.Items)
}

func TestLoad_IncludesPremium(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	premium := []Item{{ID: "ext-star", Name: "Star", URL: "https://cdn.example/star.m3u8", Kind: KindChannel}}

	cat := newService(t, srv, Config{Premium: premium}).Load(context.Background())

	assert.Equal(t, premium, cat.Premium)
	assert.Empty(t, cat.Sections)
	assert.Empty(t, cat.Channels)
}

func TestHome_MapsSlider(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathHomeSections, homeWith())

	home := newService(t, srv, Config{}).Home(context.Background())

	require.Len(t, home.Slider, 1)
	assert.Equal(t, SliderItem{ID: "slide-42", Title: "Headline", Thumbnail: "p.jpg", Slug: "headline", Kind: KindChannel}, home.Slider[0])
	assert.Empty(t, home.Chunks)

	reqs := srv.Requests(gatewaytest.PathHomeSections)
	require.Len(t, reqs, 1)
	assert.Equal(t, "0", reqs[0].Body["user_id"])
	assert.Equal(t, "2", reqs[0].Body["project_id"])
	assert.Equal(t, "web", reqs[0].Body["platform"])
}

func TestLiveChannels_FallsBackToGenre(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathLiveChannels, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"channels": []any{}}}}
	})
	srv.Handle(gatewaytest.PathGenrePrograms, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"programs": []any{
			map[string]any{"programId": 9, "title": "Geo", "landscape_poster": "geo.png", "slug": "geo"},
		}}}}
	})

	got := newService(t, srv, Config{}).LiveChannels(context.Background())

	assert.Equal(t, []Item{{ID: "jazz-9", Name: "Geo", Logo: "geo.png", Slug: "geo", Kind: KindChannel}}, got)
	assert.Equal(t, 1, genreCalls(srv, GenreLiveTV))
}

func TestLiveChannels_FailureIsEmpty(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()

	got := newService(t, srv, Config{}).LiveChannels(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenrePrograms_MissingIDUsesGenerated(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathGenrePrograms, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Doc: map[string]any{"data": map[string]any{"programData": []any{
			map[string]any{"name": "Drama", "type": "episode"},
		}}}}
	})

	got := newService(t, srv, Config{}).GenrePrograms(context.Background(), "drama")

	assert.Equal(t, []Item{{ID: "gen-generated", Name: "Drama", Kind: "episode"}}, got)
}

func TestFetch_UsesCache(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathGenrePrograms, genreHandler(map[string]int{"drama": 2}))

	svc := newService(t, srv, Config{Cache: NewMemoryCache(8), CacheTTL: time.Minute})
	first := svc.GenrePrograms(context.Background(), "drama")
	second := svc.GenrePrograms(context.Background(), "drama")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.Count(gatewaytest.PathGenrePrograms))
}

func TestFetch_FailuresNotCached(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathGenrePrograms, func(gatewaytest.Request) gatewaytest.Response {
		return gatewaytest.Response{Status: 500, Raw: "{}"}
	})

	cache := NewMemoryCache(8)
	svc := newService(t, srv, Config{Cache: cache})
	svc.GenrePrograms(context.Background(), "drama")
	svc.GenrePrograms(context.Background(), "drama")

	assert.Equal(t, 2, srv.Count(gatewaytest.PathGenrePrograms))
	assert.Zero(t, cache.Len())
}

func TestWarmUp_CallsLiveGenre(t *testing.T) {
	srv := gatewaytest.New()
	defer srv.Close()
	srv.Handle(gatewaytest.PathGenrePrograms, genreHandler(nil))

	cache := NewMemoryCache(8)
	svc := newService(t, srv, Config{Cache: cache})
	ctx, cancel := context.WithCancel(context.Background())
	svc.WarmUp(ctx)
	cancel()
	svc.Wait()

	assert.Equal(t, 1, genreCalls(srv, GenreLiveTV))
	assert.Zero(t, cache.Len(), "warm-up bypasses the cache")
}
