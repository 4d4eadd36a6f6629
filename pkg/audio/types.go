// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and sample conversion helpers
package audio

import "math"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Codec tags reported for prepared audio
const (
	CodecPCM      = "pcm"
	CodecIMAADPCM = "ima-adpcm"
	CodecMP3      = "mp3"
	CodecFLAC     = "flac"
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// BytesPerFrame returns the size of one interleaved frame in bytes
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// ScaleToInt16 converts a signed sample of the given bit depth to 16-bit
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 8:
		// 8-bit WAV is unsigned, centered on 128
		return int16((sample - 128) << 8)
	case bitDepth > 16:
		return ClampInt16(int(sample >> (bitDepth - 16)))
	case bitDepth < 16:
		return ClampInt16(int(sample << (16 - bitDepth)))
	}
	return ClampInt16(int(sample))
}

// ClampInt16 saturates v into the int16 range
func ClampInt16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
