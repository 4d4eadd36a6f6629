// ABOUTME: Audio output package for playing station loops
// ABOUTME: Provides oto-backed and silent media handles
// Package output turns prepared station WAVs into seekable, looping media
// handles.
//
// Oto plays through the system audio device. Silent keeps the same clock
// semantics without a device, which headless runs and tests rely on.
//
// Example:
//
//	dev, err := output.NewOto(output.DeviceFormat{SampleRate: 44100, Channels: 2}, logger)
//	h := dev.NewHandle()
//	duration, err := h.LoadAndWait(ctx, wavBytes)
//	h.SetCurrentTime(target)
//	err = h.Play()
package output
