// ABOUTME: Tests for broadcast position arithmetic
// ABOUTME: Covers wraparound, negative offsets and clock formatting
package sync

import (
	"math"
	"testing"
	"time"
)

func TestTargetPosition(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		offset   float64
		wall     float64
		expected float64
	}{
		{"negative offset wraps to zero", 60, -90, 30, 0},
		{"plain modulo", 300, 0, 3601, 1},
		{"offset forward", 300, 30, 0, 30},
		{"negative sum wraps", 100, -150, 10, 60},
		{"fractional duration", 2.5, 0, 6, 1},
		{"zero duration", 0, 10, 10, 0},
		{"NaN duration", math.NaN(), 10, 10, 0},
		{"infinite duration", math.Inf(1), 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetPosition(tt.duration, tt.offset, tt.wall)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			if math.Signbit(got) {
				t.Errorf("expected non-negative result, got %v", got)
			}
		})
	}
}

func TestTargetPositionInRange(t *testing.T) {
	for offset := -1000.0; offset <= 1000; offset += 37 {
		for wall := 0.0; wall < 86400; wall += 997 {
			p := TargetPosition(123.4, offset, wall)
			if p < 0 || p >= 123.4 {
				t.Fatalf("position %v out of range for offset %v wall %v", p, offset, wall)
			}
		}
	}
}

func TestSecondsSinceMidnight(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		expected float64
	}{
		{"midnight", time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), 0},
		{"morning", time.Date(2024, 3, 1, 1, 2, 3, 0, time.Local), 3723},
		{"drops sub-second", time.Date(2024, 3, 1, 0, 0, 5, 999999999, time.Local), 5},
		{"last second", time.Date(2024, 3, 1, 23, 59, 59, 0, time.Local), 86399},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondsSinceMidnight(tt.at); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{83, "1:23"},
		{3725, "1:02:05"},
		{-4, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.expected {
			t.Errorf("FormatClock(%v): expected %q, got %q", tt.seconds, tt.expected, got)
		}
	}
}

func TestQualityString(t *testing.T) {
	if QualityGood.String() != "good" || QualityDegraded.String() != "degraded" || QualityLost.String() != "lost" {
		t.Error("unexpected quality names")
	}
}
