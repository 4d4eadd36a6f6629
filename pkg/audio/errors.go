// ABOUTME: Error taxonomy shared by the codec, resolution and sync layers
// ABOUTME: Callers distinguish failures with errors.As
package audio

import "fmt"

// FormatError reports a malformed or truncated container
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid WAV container: " + e.Reason
}

// UnsupportedFormatError reports a well-formed container the codec will not play.
// Code is the WAV audio format tag, or zero when the rejection is not code based.
type UnsupportedFormatError struct {
	Code   uint16
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason != "" {
		return "unsupported audio format: " + e.Reason
	}
	return fmt.Sprintf("unsupported audio format 0x%04x (%d)", e.Code, e.Code)
}

// DecodeError reports input that parsed but produced no usable audio
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode failed: " + e.Reason
}

// PlaybackError reports a media handle failure (load, play)
type PlaybackError struct {
	Op  string
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s failed: %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
