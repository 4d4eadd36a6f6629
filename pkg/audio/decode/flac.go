// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes a complete FLAC stream to 16-bit PCM
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to PCM
func (d *FLACDecoder) Decode(data []byte) (*PCM, error) {
	return DecodeFLAC(data)
}

// DecodeFLAC decodes a whole FLAC file held in memory
func DecodeFLAC(data []byte) (*PCM, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, &audio.DecodeError{Reason: fmt.Sprintf("failed to decode FLAC: %v", err)}
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels == 0 {
		return nil, &audio.DecodeError{Reason: "FLAC stream has no channels"}
	}

	samples := make([]int16, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &audio.DecodeError{Reason: fmt.Sprintf("FLAC frame error: %v", err)}
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, flacSampleToInt16(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	frameCount := len(samples) / channels
	if frameCount == 0 {
		return nil, &audio.DecodeError{Reason: "no FLAC frames"}
	}

	return &PCM{
		Samples:    samples,
		FrameCount: frameCount,
		SampleRate: int(info.SampleRate),
		Channels:   channels,
	}, nil
}

// flacSampleToInt16 rescales a signed FLAC sample; FLAC 8-bit is signed,
// unlike WAV.
func flacSampleToInt16(sample int32, bitDepth int) int16 {
	if bitDepth == 8 {
		return int16(sample << 8)
	}
	return audio.ScaleToInt16(sample, bitDepth)
}

// IsFLAC sniffs the fLaC stream marker
func IsFLAC(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "fLaC"
}
