package playback

// armControlsLocked restarts the auto-hide timer. The timer only runs while
// playing with visible controls and a closed quality menu.
func (c *Controller) armControlsLocked() {
	c.stopControlsLocked()
	s := c.session
	if !c.currentLocked(s) || !c.state.IsPlaying || c.state.QualityMenuOpen || !c.state.ControlsVisible {
		return
	}
	gen := c.controlsGen
	c.controlsTimer = c.clock.AfterFunc(c.controlsTimeout, func() { c.hideControls(s, gen) })
}

func (c *Controller) stopControlsLocked() {
	c.controlsGen++
	if c.controlsTimer != nil {
		c.controlsTimer.Stop()
		c.controlsTimer = nil
	}
}

func (c *Controller) hideControls(s *session, gen uint64) {
	c.mu.Lock()
	if !c.currentLocked(s) || gen != c.controlsGen || !c.state.ControlsVisible {
		c.mu.Unlock()
		return
	}
	c.controlsTimer = nil
	c.state.ControlsVisible = false
	c.enqueueLocked()
	c.mu.Unlock()
}

// Interact shows the controls and restarts the auto-hide timer.
func (c *Controller) Interact() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := !c.state.ControlsVisible
	c.state.ControlsVisible = true
	c.armControlsLocked()
	if changed {
		c.enqueueLocked()
	}
	c.mu.Unlock()
}

// ToggleControls flips control visibility and closes an open quality menu.
func (c *Controller) ToggleControls() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.ControlsVisible = !c.state.ControlsVisible
	c.state.QualityMenuOpen = false
	c.armControlsLocked()
	c.enqueueLocked()
	c.mu.Unlock()
}

// SetQualityMenuOpen opens or closes the quality menu. The auto-hide timer
// is suspended while the menu is open.
func (c *Controller) SetQualityMenuOpen(open bool) {
	c.mu.Lock()
	if c.closed || c.state.QualityMenuOpen == open {
		c.mu.Unlock()
		return
	}
	c.state.QualityMenuOpen = open
	if open {
		c.state.ControlsVisible = true
	}
	c.armControlsLocked()
	c.enqueueLocked()
	c.mu.Unlock()
}

// ToggleQualityMenu flips the quality menu.
func (c *Controller) ToggleQualityMenu() {
	c.mu.Lock()
	open := !c.state.QualityMenuOpen
	c.mu.Unlock()
	c.SetQualityMenuOpen(open)
}
