// ABOUTME: Broadcast position arithmetic
// ABOUTME: Maps local wall-clock time plus an offset onto a looping track
package sync

import (
	"fmt"
	"math"
	"time"
)

// Quality describes how far a handle had drifted before the last sync
type Quality int

const (
	QualityGood Quality = iota
	QualityDegraded
	QualityLost
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityDegraded:
		return "degraded"
	}
	return "lost"
}

// Clock supplies the wall-clock time the broadcast is keyed to
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SecondsSinceMidnight returns whole seconds elapsed since local midnight.
// Sub-second precision is dropped.
func SecondsSinceMidnight(t time.Time) float64 {
	h, m, s := t.Clock()
	return float64(h*3600 + m*60 + s)
}

// validDuration reports whether d can anchor a broadcast position
func validDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// TargetPosition returns where a track of the given duration should be
// when the wall clock reads wallClock seconds and the user has shifted the
// broadcast by offset seconds. The result lies in [0, duration).
func TargetPosition(duration, offset, wallClock float64) float64 {
	if !validDuration(duration) {
		return 0
	}
	p := math.Mod(wallClock+offset, duration)
	p = math.Mod(p+duration, duration)
	if p == 0 {
		// Normalize -0
		return 0
	}
	return p
}

// FormatClock renders seconds as m:ss, or h:mm:ss past the hour
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
