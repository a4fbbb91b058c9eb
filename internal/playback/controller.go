// Package playback drives one adaptive streaming session at a time: it
// resolves a descriptor, attaches an engine to a media sink, recovers from
// engine failures and exposes the user controls as an observable State.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/metrics"
	"github.com/famomatic/waisitv/internal/resolver"
)

const (
	// DefaultControlsTimeout is the inactivity delay before controls hide.
	DefaultControlsTimeout = 3500 * time.Millisecond
	// DefaultMaxNetworkRecoveries bounds consecutive network restarts.
	DefaultMaxNetworkRecoveries = 5
)

// Resolver turns a descriptor into a playable URL, or "" when unavailable.
type Resolver interface {
	Resolve(ctx context.Context, d resolver.Descriptor) string
}

// Config configures a Controller.
type Config struct {
	Resolver  Resolver
	NewEngine EngineFactory
	Sink      Sink
	// MaxNetworkRecoveries bounds network restarts between successful
	// level loads. Zero means DefaultMaxNetworkRecoveries, negative means
	// unbounded.
	MaxNetworkRecoveries int
	ControlsTimeout      time.Duration
	Clock                Clock
	// OnStateChange receives a snapshot after every change. Snapshots are
	// delivered in order on a single delivery goroutine, so the callback may
	// call any Controller method except Wait.
	OnStateChange func(State)
	Logger        zerolog.Logger
}

// session is the liveness token for one Start. Continuations that hold a
// session act only while it is current and its context is live.
type session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	engine        Engine
	native        bool
	netRecoveries int
	autoplayed    bool
	teardown      sync.Once
}

// Controller is the playback state machine.
type Controller struct {
	resolver        Resolver
	newEngine       EngineFactory
	sink            Sink
	maxRecoveries   int
	controlsTimeout time.Duration
	clock           Clock
	onChange        func(State)
	logger          zerolog.Logger

	mu            sync.Mutex
	state         State
	session       *session
	closed        bool
	controlsTimer Timer
	controlsGen   uint64
	pending       []State
	delivering    bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewController creates a Controller in PhaseIdle.
func NewController(cfg Config) *Controller {
	if cfg.MaxNetworkRecoveries == 0 {
		cfg.MaxNetworkRecoveries = DefaultMaxNetworkRecoveries
	}
	if cfg.ControlsTimeout <= 0 {
		cfg.ControlsTimeout = DefaultControlsTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	return &Controller{
		resolver:        cfg.Resolver,
		newEngine:       cfg.NewEngine,
		sink:            cfg.Sink,
		maxRecoveries:   cfg.MaxNetworkRecoveries,
		controlsTimeout: cfg.ControlsTimeout,
		clock:           cfg.Clock,
		onChange:        cfg.OnStateChange,
		logger:          cfg.Logger,
		state:           initialState(),
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Start tears down any previous session and begins playing d. Resolution
// and attachment continue in the background.
func (c *Controller) Start(ctx context.Context, d resolver.Descriptor) error {
	sctx, cancel := context.WithCancel(ctx)
	s := &session{id: uuid.NewString(), ctx: sctx, cancel: cancel}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return ErrSessionClosed
	}
	prev, prevEngine := c.detachLocked()
	c.session = s
	c.state = initialState()
	c.state.Phase, _ = next(PhaseIdle, evStart)
	c.state.IsLoading = true
	c.sink.SetMuted(false)
	c.sink.SetVolume(c.state.Volume)
	c.enqueueLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.teardown(prev, prevEngine)
	metrics.RecordSessionStarted()
	c.logger.Debug().Str("session", s.id).Str("slug", d.Slug).Bool("direct", d.DirectURL != "").Msg("playback session started")

	go c.resolve(s, d)
	return nil
}

// Close ends the controller. It is idempotent; later calls to Start fail
// with ErrSessionClosed and late engine or sink callbacks are dropped.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		s, eng := c.detachLocked()
		c.state.Phase = PhaseClosed
		c.state.IsPlaying = false
		c.state.IsLoading = false
		c.state.Levels = []Level{}
		c.state.CurrentQuality = AutoQuality
		c.state.QualityMenuOpen = false
		c.enqueueLocked()
		c.mu.Unlock()

		c.teardown(s, eng)
	})
}

// Wait blocks until background work of all sessions has returned and
// every queued snapshot has been delivered.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// detachLocked unbinds the current session and stops its timer. The
// session context is cancelled before the lock is released so every
// continuation observes it as dead.
func (c *Controller) detachLocked() (*session, Engine) {
	c.stopControlsLocked()
	s := c.session
	if s == nil {
		return nil, nil
	}
	s.cancel()
	c.session = nil
	eng := s.engine
	s.engine = nil
	return s, eng
}

func (c *Controller) teardown(s *session, eng Engine) {
	if s == nil {
		return
	}
	s.teardown.Do(func() {
		if eng != nil {
			eng.Destroy()
		}
		c.sink.Pause()
		c.sink.ClearSource()
		metrics.RecordSessionClosed()
		c.logger.Debug().Str("session", s.id).Msg("playback session closed")
	})
}

func (c *Controller) currentLocked(s *session) bool {
	return s != nil && c.session == s && s.ctx.Err() == nil
}

// enqueueLocked queues the current state for OnStateChange and starts the
// delivery goroutine when none is running.
func (c *Controller) enqueueLocked() {
	if c.onChange == nil {
		return
	}
	c.pending = append(c.pending, c.state.clone())
	if c.delivering {
		return
	}
	c.delivering = true
	c.wg.Add(1)
	go c.deliver()
}

func (c *Controller) deliver() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.delivering = false
			c.mu.Unlock()
			return
		}
		snap := c.pending[0]
		c.pending[0] = State{}
		c.pending = c.pending[1:]
		c.mu.Unlock()

		c.onChange(snap)
	}
}

func (c *Controller) resolve(s *session, d resolver.Descriptor) {
	defer c.wg.Done()

	url := c.resolver.Resolve(s.ctx, d)
	if url == "" {
		c.fail(s, evUnavailable, ErrorUnavailable)
		return
	}

	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	c.state.Phase, _ = next(c.state.Phase, evResolved)
	c.state.URL = url
	c.enqueueLocked()
	c.mu.Unlock()

	c.attach(s, url)
}

func (c *Controller) attach(s *session, url string) {
	emit := func(ev EngineEvent) { c.handleEngineEvent(s, ev) }

	eng, err := c.newEngine(s.ctx, emit)
	if errors.Is(err, ErrEngineUnsupported) {
		if native, ok := c.sink.(NativeSource); ok {
			c.attachNative(s, native, url)
			return
		}
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("session", s.id).Msg("engine creation failed")
		c.fail(s, evAttachFailed, ErrorConnectionFailed)
		return
	}

	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		eng.Destroy()
		return
	}
	s.engine = eng
	c.mu.Unlock()

	if err := eng.LoadSource(url); err != nil {
		c.logger.Warn().Err(err).Str("session", s.id).Msg("engine load failed")
		c.fail(s, evAttachFailed, ErrorConnectionFailed)
		return
	}
	if err := eng.AttachMedia(c.sink); err != nil {
		c.logger.Warn().Err(err).Str("session", s.id).Msg("engine attach failed")
		c.fail(s, evAttachFailed, ErrorConnectionFailed)
	}
}

func (c *Controller) attachNative(s *session, native NativeSource, url string) {
	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	s.native = true
	c.mu.Unlock()

	if err := native.SetSource(url); err != nil {
		c.logger.Warn().Err(err).Str("session", s.id).Msg("native source failed")
		c.fail(s, evAttachFailed, ErrorConnectionFailed)
	}
}

// fail moves a live session to PhaseError.
func (c *Controller) fail(s *session, ev event, kind ErrorKind) {
	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	c.failLocked(ev, kind)
	c.enqueueLocked()
	c.mu.Unlock()
}

func (c *Controller) failLocked(ev event, kind ErrorKind) {
	to, ok := next(c.state.Phase, ev)
	if !ok {
		return
	}
	c.state.Phase = to
	c.state.Error = &kind
	c.state.IsLoading = false
	c.state.QualityMenuOpen = false
	c.state.ControlsVisible = true
	c.stopControlsLocked()
	metrics.RecordPlaybackError(string(kind))
}

func (c *Controller) handleEngineEvent(s *session, ev EngineEvent) {
	var action func()

	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	before := c.state.clone()
	eng := s.engine

	switch ev.Type {
	case EventManifestParsed:
		if len(ev.Levels) > 0 {
			c.setLevelsLocked(ev.Levels)
		}
		action = c.manifestReadyLocked(s)
	case EventLevelLoaded:
		if c.state.Phase == PhaseError {
			break
		}
		c.setLevelsLocked(ev.Levels)
		s.netRecoveries = 0
	case EventLevelSwitched:
		if c.state.hasLevel(ev.Level) {
			c.state.CurrentQuality = ev.Level
		}
	case EventError:
		action = c.engineErrorLocked(s, eng, ev)
	}

	if !stateEqual(before, c.state) {
		c.enqueueLocked()
	}
	c.mu.Unlock()

	if action != nil {
		action()
	}
}

// manifestReadyLocked leaves PhaseAttaching and schedules autoplay once
// per session.
func (c *Controller) manifestReadyLocked(s *session) func() {
	to, ok := next(c.state.Phase, evManifestParsed)
	if !ok {
		return nil
	}
	c.state.Phase = to
	c.state.IsLoading = false
	if s.autoplayed {
		return nil
	}
	s.autoplayed = true
	c.wg.Add(1)
	return func() { go c.autoplay(s) }
}

func (c *Controller) engineErrorLocked(s *session, eng Engine, ev EngineEvent) func() {
	if !ev.Fatal || eng == nil {
		return nil
	}
	if _, ok := next(c.state.Phase, evFatal); !ok {
		return nil
	}

	switch ev.Category {
	case CategoryNetwork:
		if c.maxRecoveries > 0 && s.netRecoveries >= c.maxRecoveries {
			c.logger.Warn().Str("session", s.id).Int("recoveries", s.netRecoveries).Msg("network recovery limit reached")
			c.failLocked(evFatal, ErrorPlaybackFailed)
			return nil
		}
		s.netRecoveries++
		metrics.RecordRecovery(string(CategoryNetwork))
		return eng.StartLoad
	case CategoryMedia:
		metrics.RecordRecovery(string(CategoryMedia))
		return eng.RecoverMediaError
	default:
		c.logger.Warn().Str("session", s.id).Str("detail", ev.Detail).Msg("fatal engine error")
		c.failLocked(evFatal, ErrorPlaybackFailed)
		return nil
	}
}

// setLevelsLocked replaces the level list and drops a pinned quality that
// is no longer offered.
func (c *Controller) setLevelsLocked(levels []Level) {
	c.state.Levels = append([]Level{}, levels...)
	if c.state.CurrentQuality != AutoQuality && !c.state.hasLevel(c.state.CurrentQuality) {
		c.state.CurrentQuality = AutoQuality
	}
}

func (c *Controller) autoplay(s *session) {
	defer c.wg.Done()

	err := c.sink.Play(s.ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrAutoplayBlocked) {
		c.logger.Debug().Err(err).Str("session", s.id).Msg("play failed")
		return
	}

	c.mu.Lock()
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	c.sink.SetMuted(true)
	c.state.IsMuted = true
	c.state.AutoMuted = true
	c.enqueueLocked()
	c.mu.Unlock()
	metrics.RecordAutoMuted()

	if err := c.sink.Play(s.ctx); err != nil {
		c.logger.Debug().Err(err).Str("session", s.id).Msg("muted play failed")
	}
}

// HandleSinkEvent applies a notification from the sink to the current
// session. Events with no live session are dropped.
func (c *Controller) HandleSinkEvent(ev SinkEvent) {
	var action func()

	c.mu.Lock()
	s := c.session
	if !c.currentLocked(s) {
		c.mu.Unlock()
		return
	}
	before := c.state.clone()

	switch ev {
	case SinkPlaying:
		if to, ok := next(c.state.Phase, evPlay); ok {
			c.state.Phase = to
			c.state.IsPlaying = true
			c.state.IsLoading = false
			s.netRecoveries = 0
			c.armControlsLocked()
		}
	case SinkPaused:
		if to, ok := next(c.state.Phase, evPause); ok {
			c.state.Phase = to
			c.state.IsPlaying = false
			c.state.ControlsVisible = true
			c.stopControlsLocked()
		}
	case SinkWaiting:
		if to, ok := next(c.state.Phase, evWaiting); ok {
			c.state.Phase = to
			c.state.IsLoading = true
		}
	case SinkMetadataLoaded:
		if s.native {
			action = c.manifestReadyLocked(s)
		}
	}

	if !stateEqual(before, c.state) {
		c.enqueueLocked()
	}
	c.mu.Unlock()

	if action != nil {
		action()
	}
}

// TogglePlay pauses a playing session or resumes a paused one. Resuming
// falls back to muted playback when unmuted play is refused.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	s := c.session
	if !c.currentLocked(s) || !playable(c.state.Phase) {
		c.mu.Unlock()
		return
	}
	playing := c.state.IsPlaying
	c.armControlsLocked()
	if !playing {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if playing {
		c.sink.Pause()
		return
	}
	go c.autoplay(s)
}

func playable(p Phase) bool {
	return p == PhaseBuffering || p == PhasePlaying || p == PhasePaused
}

// ToggleMute flips the mute state. The sink and the state change together.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	muted := !c.state.IsMuted
	c.sink.SetMuted(muted)
	c.state.IsMuted = muted
	c.state.AutoMuted = false
	c.armControlsLocked()
	c.enqueueLocked()
	c.mu.Unlock()
}

// SetVolume sets the output volume, clamped to [0, 1].
func (c *Controller) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.sink.SetVolume(v)
	c.state.Volume = v
	c.enqueueLocked()
	c.mu.Unlock()
}

// CycleAspect advances the aspect mode.
func (c *Controller) CycleAspect() AspectMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.AspectMode
	}
	c.state.AspectMode = c.state.AspectMode.Next()
	c.armControlsLocked()
	c.enqueueLocked()
	return c.state.AspectMode
}

// SetQuality pins level index, or restores adaptive switching for
// AutoQuality. The quality menu closes with the selection.
func (c *Controller) SetQuality(index int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if index != AutoQuality && !c.state.hasLevel(index) {
		c.mu.Unlock()
		return ErrUnknownLevel
	}
	var eng Engine
	if s := c.session; c.currentLocked(s) {
		eng = s.engine
	}
	c.state.CurrentQuality = index
	c.state.QualityMenuOpen = false
	c.armControlsLocked()
	c.enqueueLocked()
	c.mu.Unlock()

	if eng != nil {
		eng.SetLevel(index)
	}
	return nil
}

func stateEqual(a, b State) bool {
	if a.Phase != b.Phase || a.URL != b.URL || a.IsPlaying != b.IsPlaying || a.IsLoading != b.IsLoading ||
		a.CurrentQuality != b.CurrentQuality || a.ControlsVisible != b.ControlsVisible ||
		a.QualityMenuOpen != b.QualityMenuOpen || a.Volume != b.Volume || a.IsMuted != b.IsMuted ||
		a.AutoMuted != b.AutoMuted || a.AspectMode != b.AspectMode {
		return false
	}
	if (a.Error == nil) != (b.Error == nil) || (a.Error != nil && *a.Error != *b.Error) {
		return false
	}
	if len(a.Levels) != len(b.Levels) {
		return false
	}
	for i := range a.Levels {
		if a.Levels[i] != b.Levels[i] {
			return false
		}
	}
	return true
}
