package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestControlsHideAfterInactivity(t *testing.T) {
	h := newHarness(t, nil)
	h.playing(t)
	assert.True(t, h.ctrl.State().ControlsVisible)

	h.clock.Advance(3499 * time.Millisecond)
	assert.True(t, h.ctrl.State().ControlsVisible)

	h.clock.Advance(time.Millisecond)
	assert.False(t, h.ctrl.State().ControlsVisible)
}

func TestInteractRearmsTimer(t *testing.T) {
	h := newHarness(t, nil)
	h.playing(t)

	h.clock.Advance(3 * time.Second)
	h.ctrl.Interact()
	h.clock.Advance(3 * time.Second)
	assert.True(t, h.ctrl.State().ControlsVisible, "stale timer must not hide")

	h.clock.Advance(time.Second)
	assert.False(t, h.ctrl.State().ControlsVisible)

	h.ctrl.Interact()
	assert.True(t, h.ctrl.State().ControlsVisible)
}

func TestControlsStayWhilePaused(t *testing.T) {
	h := newHarness(t, nil)
	h.playing(t)
	h.ctrl.HandleSinkEvent(SinkPaused)

	h.clock.Advance(time.Minute)
	assert.True(t, h.ctrl.State().ControlsVisible)
	assert.Zero(t, h.clock.pending())
}

func TestQualityMenuSuspendsTimer(t *testing.T) {
	h := newHarness(t, nil)
	h.playing(t)

	h.ctrl.ToggleQualityMenu()
	assert.True(t, h.ctrl.State().QualityMenuOpen)
	h.clock.Advance(time.Minute)
	assert.True(t, h.ctrl.State().ControlsVisible)

	h.ctrl.ToggleQualityMenu()
	assert.False(t, h.ctrl.State().QualityMenuOpen)
	h.clock.Advance(DefaultControlsTimeout)
	assert.False(t, h.ctrl.State().ControlsVisible)
}

func TestToggleControlsClosesMenu(t *testing.T) {
	h := newHarness(t, nil)
	h.playing(t)
	h.ctrl.SetQualityMenuOpen(true)

	h.ctrl.ToggleControls()
	st := h.ctrl.State()
	assert.False(t, st.ControlsVisible)
	assert.False(t, st.QualityMenuOpen)

	h.ctrl.ToggleControls()
	assert.True(t, h.ctrl.State().ControlsVisible)
	h.clock.Advance(DefaultControlsTimeout)
	assert.False(t, h.ctrl.State().ControlsVisible)
}

func TestCustomControlsTimeout(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.ControlsTimeout = time.Second })
	h.playing(t)

	h.clock.Advance(time.Second)
	assert.False(t, h.ctrl.State().ControlsVisible)
}

func TestInteractWithoutPlaybackArmsNothing(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Interact()
	assert.Zero(t, h.clock.pending(), "no timer without playback")
}
