// ABOUTME: Oto-based media handle
// ABOUTME: Loops prepared station audio on a shared oto context with seek support
package output

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
)

// Oto owns the process-wide oto context. oto allows one context per
// process, so every station handle shares it.
type Oto struct {
	otoCtx *oto.Context
	format DeviceFormat
	logger *zap.SugaredLogger
	volume int
}

var (
	otoOnce sync.Once
	otoInst *Oto
	otoErr  error
)

// NewOto initializes the output device on first call and returns the
// shared instance afterwards. Later calls with a different format reuse the
// existing context.
func NewOto(format DeviceFormat, logger *zap.SugaredLogger) (*Oto, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan
		otoInst = &Oto{otoCtx: ctx, format: format, logger: logger, volume: 100}
		logger.Infow("audio output initialized", "rate", format.SampleRate, "channels", format.Channels)
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoInst.format != format {
		logger.Warnw("format change ignored, oto cannot be reinitialized",
			"active_rate", otoInst.format.SampleRate, "requested_rate", format.SampleRate)
	}
	return otoInst, nil
}

// Format returns the device format
func (o *Oto) Format() DeviceFormat {
	return o.format
}

// NewHandle creates an empty handle on the shared context
func (o *Oto) NewHandle() Handle {
	return &OtoHandle{device: o, volume: o.volume, logger: o.logger}
}

// OtoHandle plays one station as an endless loop
type OtoHandle struct {
	mu       sync.Mutex
	device   *Oto
	player   *oto.Player
	reader   *loopReader
	duration float64
	volume   int
	logger   *zap.SugaredLogger
}

// LoadAndWait converts wavBytes to the device format and prepares a paused
// player. The returned duration is the loop length in seconds.
func (h *OtoHandle) LoadAndWait(ctx context.Context, wavBytes []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pcm, duration, err := toDevicePCM(wavBytes, h.device.format)
	if err != nil {
		return 0, &audio.PlaybackError{Op: "load", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	reader := newLoopReader(pcm)
	player := h.device.otoCtx.NewPlayer(reader)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player != nil {
		h.player.Close()
	}
	player.SetVolume(getVolumeMultiplier(h.volume, false))
	h.player = player
	h.reader = reader
	h.duration = duration

	h.logger.Debugw("station loaded", "seconds", duration, "bytes", len(pcm))
	return duration, nil
}

// Play starts or resumes playback
func (h *OtoHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return &audio.PlaybackError{Op: "play", Err: ErrNotLoaded}
	}
	if err := h.device.otoCtx.Err(); err != nil {
		return &audio.PlaybackError{Op: "play", Err: err}
	}
	h.player.Play()
	if err := h.player.Err(); err != nil {
		return &audio.PlaybackError{Op: "play", Err: err}
	}
	return nil
}

// Pause stops playback, keeping the position
func (h *OtoHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player != nil {
		h.player.Pause()
	}
}

// Paused reports whether the handle is not currently playing
func (h *OtoHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.player == nil || !h.player.IsPlaying()
}

// CurrentTime returns the audible position: the reader offset minus what
// oto has buffered but not yet played.
func (h *OtoHandle) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return 0
	}
	size := h.reader.Len()
	pos, _ := h.reader.Seek(0, io.SeekCurrent)
	audible := (int(pos) - h.player.BufferedSize()) % size
	if audible < 0 {
		audible += size
	}
	return float64(audible) / float64(h.device.format.BytesPerSecond())
}

// SetCurrentTime seeks to seconds, aligned to a whole frame
func (h *OtoHandle) SetCurrentTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil || math.IsNaN(seconds) {
		return
	}
	frame := int64(h.device.format.frameBytes())
	offset := int64(seconds*float64(h.device.format.BytesPerSecond())) / frame * frame
	if _, err := h.player.Seek(offset, io.SeekStart); err != nil {
		h.logger.Warnw("seek failed", "seconds", seconds, "error", err)
	}
}

// Duration returns the loop length, NaN before a load completes
func (h *OtoHandle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return math.NaN()
	}
	return h.duration
}

// SetVolume sets the volume (0-100)
func (h *OtoHandle) SetVolume(volume int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = clampVolume(volume)
	if h.player != nil {
		h.player.SetVolume(getVolumeMultiplier(h.volume, false))
	}
}

// Close releases the player. The shared context stays open.
func (h *OtoHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return nil
	}
	err := h.player.Close()
	h.player = nil
	h.reader = nil
	return err
}
