package playback

// event is an input to the phase machine.
type event int

const (
	evStart event = iota
	evResolved
	evUnavailable
	evAttachFailed
	evManifestParsed
	evPlay
	evPause
	evWaiting
	evFatal
	evClose
	numEvents
)

var eventNames = [...]string{"start", "resolved", "unavailable", "attach-failed", "manifest-parsed", "play", "pause", "waiting", "fatal", "close"}

func (e event) String() string { return eventNames[e] }

// transitions lists every phase change. A pair that is absent leaves the
// phase unchanged and the event is dropped.
var transitions = map[Phase]map[event]Phase{
	PhaseIdle: {
		evStart: PhaseResolving,
		evClose: PhaseClosed,
	},
	PhaseResolving: {
		evStart:       PhaseResolving,
		evResolved:    PhaseAttaching,
		evUnavailable: PhaseError,
		evClose:       PhaseClosed,
	},
	PhaseAttaching: {
		evStart:          PhaseResolving,
		evAttachFailed:   PhaseError,
		evManifestParsed: PhaseBuffering,
		evFatal:          PhaseError,
		evClose:          PhaseClosed,
	},
	PhaseBuffering: {
		evStart: PhaseResolving,
		evPlay:  PhasePlaying,
		evPause: PhasePaused,
		evFatal: PhaseError,
		evClose: PhaseClosed,
	},
	PhasePlaying: {
		evStart:   PhaseResolving,
		evPause:   PhasePaused,
		evWaiting: PhaseBuffering,
		evFatal:   PhaseError,
		evClose:   PhaseClosed,
	},
	PhasePaused: {
		evStart: PhaseResolving,
		evPlay:  PhasePlaying,
		evFatal: PhaseError,
		evClose: PhaseClosed,
	},
	PhaseError: {
		evStart: PhaseResolving,
		evClose: PhaseClosed,
	},
	PhaseClosed: {},
}

// next returns the phase after e. ok is false when e does not apply in p.
func next(p Phase, e event) (Phase, bool) {
	to, ok := transitions[p][e]
	if !ok {
		return p, false
	}
	return to, true
}
