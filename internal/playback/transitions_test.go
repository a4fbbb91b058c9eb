package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionsCoverEveryPhase(t *testing.T) {
	for p := PhaseIdle; p <= PhaseClosed; p++ {
		_, ok := transitions[p]
		assert.True(t, ok, "phase %s missing from table", p)
	}
}

func TestTransitionsAreTotal(t *testing.T) {
	for p := PhaseIdle; p <= PhaseClosed; p++ {
		for e := evStart; e < numEvents; e++ {
			to, ok := next(p, e)
			if !ok {
				assert.Equal(t, p, to, "%s on %s", p, e)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for e := evStart; e < numEvents; e++ {
		_, ok := next(PhaseClosed, e)
		assert.False(t, ok, "closed accepts %s", e)
	}
	for p := PhaseIdle; p < PhaseClosed; p++ {
		to, ok := next(p, evClose)
		assert.True(t, ok)
		assert.Equal(t, PhaseClosed, to)
	}
}

func TestErrorOnlyAcceptsStartAndClose(t *testing.T) {
	for e := evStart; e < numEvents; e++ {
		_, ok := next(PhaseError, e)
		assert.Equal(t, e == evStart || e == evClose, ok, "error on %s", e)
	}
}

func TestErrorReachability(t *testing.T) {
	reach := map[Phase]event{
		PhaseResolving: evUnavailable,
		PhaseAttaching: evAttachFailed,
		PhaseBuffering: evFatal,
		PhasePlaying:   evFatal,
		PhasePaused:    evFatal,
	}
	for p, e := range reach {
		to, ok := next(p, e)
		assert.True(t, ok)
		assert.Equal(t, PhaseError, to, "%s on %s", p, e)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "buffering", PhaseBuffering.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}

func TestLevelLabels(t *testing.T) {
	assert.Equal(t, Level{Index: 0, Height: 1080, Label: "1080p"}, LevelFromHeight(0, 1080))
	assert.Equal(t, Level{Index: 3, Height: 0, Label: "Auto"}, LevelFromHeight(3, 0))
}

func TestErrorReasons(t *testing.T) {
	assert.Equal(t, "Stream link unavailable.", ErrorUnavailable.Reason())
	assert.Equal(t, "Connection failed", ErrorConnectionFailed.Reason())
	assert.Equal(t, "Stream error.", ErrorPlaybackFailed.Reason())
}
