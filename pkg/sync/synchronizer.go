// ABOUTME: Station synchronizer
// ABOUTME: Seeks media handles onto the broadcast timeline with hysteresis
package sync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Resonate-Protocol/gtaradio-go/internal/metrics"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
)

// DefaultDriftThreshold is how far a synced handle may wander before it is
// repositioned
const DefaultDriftThreshold = 2 * time.Second

// Handle is a loaded, seekable, looping media stream
type Handle interface {
	// LoadAndWait loads wavBytes and blocks until the duration is known
	LoadAndWait(ctx context.Context, wavBytes []byte) (float64, error)
	Play() error
	Pause()
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64
}

// StationState tracks whether a station has been placed on the timeline
// since it was last (re)selected
type StationState struct {
	Synced bool
}

// Report describes the outcome of one sync
type Report struct {
	Position float64
	Duration float64
	Target   float64
	Drift    float64
	Seeked   bool
	// Reason is why a seek happened: initial, paused or drift
	Reason  string
	Paused  bool
	Quality Quality
}

// String renders the now-playing position, e.g. "1:23 / 4:56"
func (r Report) String() string {
	return FormatClock(r.Position) + " / " + FormatClock(r.Duration)
}

// Synchronizer applies the broadcast clock to station handles
type Synchronizer struct {
	session   *Session
	clock     Clock
	threshold float64
}

// NewSynchronizer creates a synchronizer. A non-positive threshold selects
// DefaultDriftThreshold.
func NewSynchronizer(session *Session, clock Clock, threshold time.Duration) *Synchronizer {
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Synchronizer{
		session:   session,
		clock:     clock,
		threshold: threshold.Seconds(),
	}
}

// Session returns the session whose offset drives this synchronizer
func (s *Synchronizer) Session() *Session {
	return s.session
}

// Target returns the broadcast position for a track of the given duration
func (s *Synchronizer) Target(duration float64) float64 {
	return TargetPosition(duration, float64(s.session.Offset()), SecondsSinceMidnight(s.clock.Now()))
}

// Sync repositions h onto the broadcast timeline.
//
// A station that is not yet synced is always repositioned. A synced station
// is repositioned only when paused or when its drift exceeds the threshold.
// With autoPlay, a paused handle is started; a refused start is returned as
// a *audio.PlaybackError and leaves the sync state as it is.
func (s *Synchronizer) Sync(st *StationState, h Handle, autoPlay bool) (Report, error) {
	d := h.Duration()
	if !validDuration(d) {
		return Report{}, nil
	}
	metrics.SyncsTotal.Inc()

	target := s.Target(d)
	drift := h.CurrentTime() - target
	report := Report{Duration: d, Target: target, Drift: drift}

	switch {
	case !st.Synced:
		report.Reason = "initial"
		report.Quality = QualityLost
	case h.Paused():
		report.Reason = "paused"
		report.Quality = QualityLost
	case math.Abs(drift) > s.threshold:
		report.Reason = "drift"
		report.Quality = QualityDegraded
	default:
		report.Quality = QualityGood
	}

	if report.Reason != "" {
		h.SetCurrentTime(target)
		st.Synced = true
		report.Seeked = true
		metrics.SeeksTotal.WithLabelValues(report.Reason).Inc()
	}

	var err error
	if autoPlay && h.Paused() {
		if perr := h.Play(); perr != nil {
			metrics.PlayFailuresTotal.Inc()
			var pe *audio.PlaybackError
			if errors.As(perr, &pe) {
				err = perr
			} else {
				err = &audio.PlaybackError{Op: "play", Err: perr}
			}
		}
	}

	report.Position = h.CurrentTime()
	report.Paused = h.Paused()
	if err != nil {
		return report, fmt.Errorf("sync: %w", err)
	}
	return report, nil
}
