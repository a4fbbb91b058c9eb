package client

import (
	"context"
	"sync"

	"github.com/famomatic/waisitv/internal/playback"
)

// HeadlessSink is a playback.Sink without a renderer. Play and Pause report
// back to the bound controller before returning; SetMuted and SetVolume
// only record the setting.
type HeadlessSink struct {
	mu     sync.Mutex
	ctrl   *playback.Controller
	muted  bool
	volume float64
}

var _ playback.Sink = (*HeadlessSink)(nil)

// Bind routes sink notifications to ctrl.
func (s *HeadlessSink) Bind(ctrl *playback.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl = ctrl
}

func (s *HeadlessSink) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.report(playback.SinkPlaying)
	return nil
}

func (s *HeadlessSink) Pause() {
	s.report(playback.SinkPaused)
}

func (s *HeadlessSink) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

func (s *HeadlessSink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *HeadlessSink) ClearSource() {}

// Muted reports the last mute setting.
func (s *HeadlessSink) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Volume reports the last volume setting.
func (s *HeadlessSink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *HeadlessSink) report(ev playback.SinkEvent) {
	s.mu.Lock()
	ctrl := s.ctrl
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.HandleSinkEvent(ev)
	}
}
