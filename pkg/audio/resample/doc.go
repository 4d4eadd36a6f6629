// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts station audio to the output device rate
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	out := resample.Convert(samples, 22050, 44100, 2)
package resample
