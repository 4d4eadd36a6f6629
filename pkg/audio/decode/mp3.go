// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes a complete MP3 file to 16-bit stereo PCM
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits 16-bit little-endian stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to PCM
func (d *MP3Decoder) Decode(data []byte) (*PCM, error) {
	return DecodeMP3(data)
}

// DecodeMP3 decodes a whole MP3 file held in memory
func DecodeMP3(data []byte) (*PCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, &audio.DecodeError{Reason: fmt.Sprintf("failed to create mp3 decoder: %v", err)}
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, &audio.DecodeError{Reason: fmt.Sprintf("mp3 decode error: %v", err)}
	}

	numSamples := len(raw) / 2
	frameCount := numSamples / mp3Channels
	if frameCount == 0 {
		return nil, &audio.DecodeError{Reason: "no mp3 frames"}
	}

	samples := make([]int16, frameCount*mp3Channels)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	return &PCM{
		Samples:    samples,
		FrameCount: frameCount,
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
	}, nil
}

// IsMP3 sniffs an ID3v2 tag or an MPEG audio frame sync
func IsMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}
