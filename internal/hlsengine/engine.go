// Package hlsengine is a playback.Engine for HLS. It loads the master
// playlist, reports the offered levels and keeps the selected media playlist
// fresh. Segment download is left to the media sink.
package hlsengine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/playback"
)

const defaultRefresh = 5 * time.Second

// Config configures engines created by NewFactory.
type Config struct {
	HTTPClient *http.Client
	UserAgent  string
	Transport  TransportConfig
	// RefreshInterval overrides the live playlist reload interval. Zero
	// uses the playlist target duration.
	RefreshInterval time.Duration
	Logger          zerolog.Logger
}

// Engine loads HLS playlists for one playback session.
type Engine struct {
	fetch   *fetcher
	refresh time.Duration
	emit    func(playback.EngineEvent)
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	url        string
	sink       playback.Sink
	pinned     int
	loadCancel context.CancelFunc
	switched   chan struct{}
	wg         sync.WaitGroup
}

var _ playback.Engine = (*Engine)(nil)

// NewFactory returns a playback.EngineFactory producing HLS engines.
func NewFactory(cfg Config) playback.EngineFactory {
	return func(ctx context.Context, emit func(playback.EngineEvent)) (playback.Engine, error) {
		return New(ctx, cfg, emit), nil
	}
}

// New creates an engine bound to ctx. Loading starts once both a source
// and a sink are set.
func New(ctx context.Context, cfg Config, emit func(playback.EngineEvent)) *Engine {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		fetch:    newFetcher(client, cfg.UserAgent, cfg.Transport, cfg.Logger),
		refresh:  cfg.RefreshInterval,
		emit:     emit,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		pinned:   playback.AutoQuality,
		switched: make(chan struct{}, 1),
	}
}

// LoadSource sets the master playlist URL.
func (e *Engine) LoadSource(url string) error {
	if url == "" {
		return errors.New("hlsengine: empty source")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = url
	e.startLocked()
	return nil
}

// AttachMedia binds the sink.
func (e *Engine) AttachMedia(sink playback.Sink) error {
	if sink == nil {
		return errors.New("hlsengine: nil sink")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
	e.startLocked()
	return nil
}

// StartLoad restarts loading from the master playlist.
func (e *Engine) StartLoad() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

// RecoverMediaError restarts loading; there is no local media pipeline to
// reset.
func (e *Engine) RecoverMediaError() {
	e.logger.Debug().Msg("media recovery requested")
	e.StartLoad()
}

// SetLevel pins a level, or restores automatic selection for
// playback.AutoQuality.
func (e *Engine) SetLevel(index int) {
	e.mu.Lock()
	e.pinned = index
	e.mu.Unlock()
	select {
	case e.switched <- struct{}{}:
	default:
	}
}

// Destroy stops loading and waits for in-flight requests to return.
func (e *Engine) Destroy() {
	e.cancel()
	e.mu.Lock()
	e.sink = nil
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) startLocked() {
	if e.url == "" || e.sink == nil || e.ctx.Err() != nil {
		return
	}
	if e.loadCancel != nil {
		e.loadCancel()
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.loadCancel = cancel
	e.wg.Add(1)
	go e.run(ctx, e.url)
}

func (e *Engine) send(ctx context.Context, ev playback.EngineEvent) {
	if ctx.Err() != nil {
		return
	}
	e.emit(ev)
}

func (e *Engine) fail(ctx context.Context, category playback.ErrorCategory, err error) {
	if ctx.Err() != nil {
		return
	}
	e.logger.Warn().Err(err).Str("category", string(category)).Msg("hls load failed")
	e.send(ctx, playback.EngineEvent{Type: playback.EventError, Category: category, Fatal: true, Detail: err.Error()})
}

func (e *Engine) run(ctx context.Context, masterURL string) {
	defer e.wg.Done()

	body, err := e.fetch.get(ctx, masterURL)
	if err != nil {
		e.fail(ctx, playback.CategoryNetwork, err)
		return
	}
	master, err := ParsePlaylist(body, masterURL)
	if err != nil {
		e.fail(ctx, playback.CategoryOther, err)
		return
	}

	variants := master.Variants
	if !master.IsMaster() {
		variants = []Variant{{URI: masterURL}}
	}
	sortByBandwidth(variants)
	levels := make([]playback.Level, 0, len(variants))
	for i, v := range variants {
		levels = append(levels, playback.LevelFromHeight(i, v.Height))
	}
	e.send(ctx, playback.EngineEvent{Type: playback.EventManifestParsed, Levels: levels})

	current := -1
	for {
		idx := e.selectLevel(len(variants))
		media := master
		if master.IsMaster() || idx != 0 || current >= 0 {
			body, err := e.fetch.get(ctx, variants[idx].URI)
			if err != nil {
				e.fail(ctx, playback.CategoryNetwork, err)
				return
			}
			if media, err = ParsePlaylist(body, variants[idx].URI); err != nil {
				e.fail(ctx, playback.CategoryOther, err)
				return
			}
		}

		e.send(ctx, playback.EngineEvent{Type: playback.EventLevelLoaded, Levels: levels})
		if idx != current {
			current = idx
			e.send(ctx, playback.EngineEvent{Type: playback.EventLevelSwitched, Level: idx})
		}
		if media.EndList {
			if !e.waitSwitch(ctx) {
				return
			}
			continue
		}
		if !e.waitRefresh(ctx, media.TargetDuration) {
			return
		}
	}
}

// selectLevel returns the pinned level, or the highest bandwidth level in
// automatic mode.
func (e *Engine) selectLevel(n int) int {
	e.mu.Lock()
	pinned := e.pinned
	e.mu.Unlock()
	if pinned >= 0 && pinned < n {
		return pinned
	}
	return n - 1
}

func (e *Engine) waitRefresh(ctx context.Context, target float64) bool {
	d := e.refresh
	if d <= 0 {
		d = time.Duration(target * float64(time.Second))
	}
	if d <= 0 {
		d = defaultRefresh
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-e.switched:
		return true
	case <-timer.C:
		return true
	}
}

func (e *Engine) waitSwitch(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-e.switched:
		return true
	}
}
