// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, codec tags, the error taxonomy and sample conversions
// Package audio provides fundamental audio types shared by the gtaradio packages.
//
// This package defines:
//   - Format: describes a PCM stream (codec, sample rate, channels, bit depth)
//   - FormatError, UnsupportedFormatError, DecodeError, PlaybackError
//
// Callers tell failures apart with errors.As:
//
//	var unsupported *audio.UnsupportedFormatError
//	if errors.As(err, &unsupported) {
//	    log.Printf("format code 0x%04x not playable", unsupported.Code)
//	}
package audio
