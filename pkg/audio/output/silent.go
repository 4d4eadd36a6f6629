// ABOUTME: Silent media handle
// ABOUTME: Tracks playback position against a clock without an audio device
package output

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
)

// Silent hands out handles that keep time without producing sound. Used
// when no audio device is available and in headless runs.
type Silent struct {
	format DeviceFormat
	now    func() time.Time
}

// NewSilent creates a silent output converting to format
func NewSilent(format DeviceFormat) *Silent {
	return &Silent{format: format, now: time.Now}
}

// NewHandle creates an empty silent handle
func (s *Silent) NewHandle() Handle {
	return &SilentHandle{format: s.format, now: s.now, paused: true}
}

// SilentHandle advances its position with wall-clock time while playing
type SilentHandle struct {
	mu       sync.Mutex
	format   DeviceFormat
	now      func() time.Time
	loaded   bool
	duration float64
	paused   bool
	// position at startedAt; meaningful while playing
	base      float64
	startedAt time.Time
}

// LoadAndWait validates and measures the WAV the same way the audible
// handle does
func (h *SilentHandle) LoadAndWait(ctx context.Context, wavBytes []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, duration, err := toDevicePCM(wavBytes, h.format)
	if err != nil {
		return 0, &audio.PlaybackError{Op: "load", Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = true
	h.duration = duration
	h.paused = true
	h.base = 0
	return duration, nil
}

func (h *SilentHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded {
		return &audio.PlaybackError{Op: "play", Err: ErrNotLoaded}
	}
	if h.paused {
		h.paused = false
		h.startedAt = h.now()
	}
	return nil
}

func (h *SilentHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.paused {
		h.base = h.position()
		h.paused = true
	}
}

func (h *SilentHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// position computes the looped position. Caller holds mu.
func (h *SilentHandle) position() float64 {
	if !h.loaded || h.duration <= 0 {
		return 0
	}
	p := h.base
	if !h.paused {
		p += h.now().Sub(h.startedAt).Seconds()
	}
	return math.Mod(p, h.duration)
}

func (h *SilentHandle) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position()
}

func (h *SilentHandle) SetCurrentTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded || math.IsNaN(seconds) {
		return
	}
	h.base = seconds
	h.startedAt = h.now()
}

func (h *SilentHandle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded {
		return math.NaN()
	}
	return h.duration
}

func (h *SilentHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = false
	h.paused = true
	return nil
}
