package playback

import "context"

// Engine is an adaptive streaming engine bound to one session.
type Engine interface {
	LoadSource(url string) error
	AttachMedia(sink Sink) error
	// StartLoad restarts loading after a network failure.
	StartLoad()
	// RecoverMediaError attempts to recover the media pipeline.
	RecoverMediaError()
	// SetLevel pins a quality level; AutoQuality restores adaptive switching.
	SetLevel(index int)
	Destroy()
}

// EngineFactory creates an engine that reports through emit. emit is safe
// to call from any goroutine and drops events after the session ends.
type EngineFactory func(ctx context.Context, emit func(EngineEvent)) (Engine, error)

// EngineEventType identifies an engine notification.
type EngineEventType int

const (
	EventManifestParsed EngineEventType = iota + 1
	EventLevelLoaded
	EventLevelSwitched
	EventError
)

// ErrorCategory classifies engine errors.
type ErrorCategory string

const (
	CategoryNetwork ErrorCategory = "network"
	CategoryMedia   ErrorCategory = "media"
	CategoryOther   ErrorCategory = "other"
)

// EngineEvent is a notification from the engine. Levels is set for
// EventManifestParsed and EventLevelLoaded, Level for EventLevelSwitched,
// Category and Fatal for EventError.
type EngineEvent struct {
	Type     EngineEventType
	Levels   []Level
	Level    int
	Category ErrorCategory
	Fatal    bool
	Detail   string
}

// Sink is the media output. SetMuted and SetVolume are called with the
// controller lock held and must not call back into the controller. Play,
// Pause and ClearSource are called without it and may report through
// Controller.HandleSinkEvent before they return.
type Sink interface {
	// Play starts playback and returns ErrAutoplayBlocked if refused.
	Play(ctx context.Context) error
	Pause()
	SetMuted(muted bool)
	SetVolume(volume float64)
	ClearSource()
}

// NativeSource is implemented by sinks that can play a stream URL without
// an engine.
type NativeSource interface {
	SetSource(url string) error
}

// SinkEvent is a notification from the sink.
type SinkEvent int

const (
	SinkPlaying SinkEvent = iota + 1
	SinkPaused
	SinkWaiting
	SinkMetadataLoaded
)
