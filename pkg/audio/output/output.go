// ABOUTME: Audio output interface definition
// ABOUTME: Factories hand out media handles bound to one playback device
package output

import (
	"errors"

	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

// ErrNotLoaded is returned when a handle is played before LoadAndWait
var ErrNotLoaded = errors.New("no audio loaded")

// Handle is a media handle that can also be released
type Handle interface {
	gtsync.Handle
	Close() error
}

// Factory creates handles that share one output device
type Factory interface {
	NewHandle() Handle
}

// VolumeSetter is implemented by handles with software volume
type VolumeSetter interface {
	SetVolume(volume int)
}

// clampVolume limits volume to 0-100
func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(clampVolume(volume)) / 100.0
}
