package playback

import "errors"

var (
	// ErrUnknownLevel is returned by SetQuality for an index that is not in
	// the last reported levels.
	ErrUnknownLevel = errors.New("playback: unknown quality level")
	// ErrSessionClosed is returned once the controller has been closed.
	ErrSessionClosed = errors.New("playback: controller closed")
	// ErrAutoplayBlocked is returned by Sink.Play when unmuted playback is
	// refused by the environment.
	ErrAutoplayBlocked = errors.New("playback: autoplay blocked")
	// ErrEngineUnsupported is returned by an EngineFactory that cannot run
	// in the current environment.
	ErrEngineUnsupported = errors.New("playback: engine unsupported")
)
