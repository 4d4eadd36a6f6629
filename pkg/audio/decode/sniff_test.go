// ABOUTME: Tests for compressed-format sniffing and MP3/FLAC error paths
// ABOUTME: Decoding garbage must surface as DecodeError
package decode

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
)

func TestSniffers(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mp3  bool
		flac bool
	}{
		{"id3", []byte("ID3\x04\x00"), true, false},
		{"frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, true, false},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), false, true},
		{"riff", []byte("RIFF\x00\x00\x00\x00WAVE"), false, false},
		{"empty", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMP3(tt.data); got != tt.mp3 {
				t.Errorf("IsMP3 = %v, want %v", got, tt.mp3)
			}
			if got := IsFLAC(tt.data); got != tt.flac {
				t.Errorf("IsFLAC = %v, want %v", got, tt.flac)
			}
		})
	}
}

func TestDecodeFLACGarbage(t *testing.T) {
	_, err := NewFLAC().Decode([]byte("fLaC garbage that is not a stream"))
	var de *audio.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeMP3Empty(t *testing.T) {
	_, err := NewMP3().Decode(nil)
	var de *audio.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestFLACSampleScaling(t *testing.T) {
	if got := flacSampleToInt16(-128, 8); got != -32768 {
		t.Errorf("expected signed 8-bit -128 -> -32768, got %d", got)
	}
	if got := flacSampleToInt16(0x7FFFFF, 24); got != 0x7FFF {
		t.Errorf("expected 24-bit max -> 0x7FFF, got %d", got)
	}
	if got := flacSampleToInt16(-2, 16); got != -2 {
		t.Errorf("expected 16-bit passthrough, got %d", got)
	}
}
