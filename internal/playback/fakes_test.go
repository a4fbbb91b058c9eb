package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/waisitv/internal/resolver"
)

type staticResolver struct {
	url string
}

func (r staticResolver) Resolve(_ context.Context, d resolver.Descriptor) string {
	if d.DirectURL != "" {
		return d.DirectURL
	}
	return r.url
}

type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ resolver.Descriptor) string {
	<-ctx.Done()
	return ""
}

type fakeEngine struct {
	mu              sync.Mutex
	emit            func(EngineEvent)
	sources         []string
	attached        int
	startLoads      int
	mediaRecoveries int
	destroys        int
	levels          []int
	loadErr         error
}

func (e *fakeEngine) LoadSource(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = append(e.sources, url)
	return e.loadErr
}

func (e *fakeEngine) AttachMedia(Sink) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attached++
	return nil
}

func (e *fakeEngine) StartLoad() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLoads++
}

func (e *fakeEngine) RecoverMediaError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mediaRecoveries++
}

func (e *fakeEngine) SetLevel(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.levels = append(e.levels, index)
}

func (e *fakeEngine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroys++
}

func (e *fakeEngine) counts() (startLoads, mediaRecoveries, destroys int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLoads, e.mediaRecoveries, e.destroys
}

func (e *fakeEngine) setLevels() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.levels...)
}

func (e *fakeEngine) loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources) > 0 && e.attached > 0
}

// loopEngine reports a fatal error from its own goroutine once the source
// is loaded, and Destroy waits for that goroutine to return.
type loopEngine struct {
	fakeEngine
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newLoopEngine(ctx context.Context, emit func(EngineEvent)) (Engine, error) {
	e := &loopEngine{}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.emit = emit
	return e, nil
}

func (e *loopEngine) LoadSource(url string) error {
	_ = e.fakeEngine.LoadSource(url)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.emit(EngineEvent{Type: EventError, Category: CategoryOther, Fatal: true, Detail: "bad playlist"})
		<-e.ctx.Done()
	}()
	return nil
}

func (e *loopEngine) Destroy() {
	e.cancel()
	e.wg.Wait()
	e.fakeEngine.Destroy()
}

type engineFactory struct {
	mu      sync.Mutex
	engines []*fakeEngine
	err     error
	loadErr error
}

func (f *engineFactory) New(_ context.Context, emit func(EngineEvent)) (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e := &fakeEngine{emit: emit, loadErr: f.loadErr}
	f.engines = append(f.engines, e)
	return e, nil
}

func (f *engineFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.engines)
}

func (f *engineFactory) engine(i int) *fakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.engines[i]
}

type fakeSink struct {
	mu       sync.Mutex
	plays    int
	playErrs []error
	pauses   int
	clears   int
	muted    bool
	volume   float64
	source   string
}

func (s *fakeSink) Play(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	if len(s.playErrs) == 0 {
		return nil
	}
	err := s.playErrs[0]
	s.playErrs = s.playErrs[1:]
	return err
}

func (s *fakeSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
}

func (s *fakeSink) SetMuted(m bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = m
}

func (s *fakeSink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *fakeSink) ClearSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.source = ""
}

func (s *fakeSink) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

func (s *fakeSink) isMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *fakeSink) teardownCounts() (pauses, clears int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauses, s.clears
}

type nativeSink struct {
	fakeSink
}

func (s *nativeSink) SetSource(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = url
	return nil
}

func (s *nativeSink) currentSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type harness struct {
	ctrl    *Controller
	factory *engineFactory
	sink    *fakeSink
	clock   *fakeClock
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{factory: &engineFactory{}, sink: &fakeSink{}, clock: &fakeClock{}}
	cfg := Config{
		Resolver:  staticResolver{url: "https://cdn.example/live.m3u8"},
		NewEngine: h.factory.New,
		Sink:      h.sink,
		Clock:     h.clock,
		Logger:    zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.ctrl = NewController(cfg)
	t.Cleanup(func() {
		h.ctrl.Close()
		h.ctrl.Wait()
	})
	return h
}

func (h *harness) waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func (h *harness) waitPhase(t *testing.T, p Phase) {
	t.Helper()
	h.waitFor(t, func() bool { return h.ctrl.State().Phase == p })
}

// attached starts a session and waits until the engine has the source.
func (h *harness) attached(t *testing.T) *fakeEngine {
	t.Helper()
	require.NoError(t, h.ctrl.Start(context.Background(), resolver.Descriptor{Slug: "geo-news"}))
	h.waitFor(t, func() bool { return h.factory.count() == 1 && h.factory.engine(0).loaded() })
	return h.factory.engine(0)
}

// playing drives a session to PhasePlaying.
func (h *harness) playing(t *testing.T) *fakeEngine {
	t.Helper()
	eng := h.attached(t)
	eng.emit(EngineEvent{Type: EventManifestParsed})
	h.waitFor(t, func() bool { return h.sink.playCount() == 1 })
	h.ctrl.HandleSinkEvent(SinkPlaying)
	require.Equal(t, PhasePlaying, h.ctrl.State().Phase)
	return eng
}

func levels(heights ...int) []Level {
	out := make([]Level, 0, len(heights))
	for i, h := range heights {
		out = append(out, LevelFromHeight(i, h))
	}
	return out
}
