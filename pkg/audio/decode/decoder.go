// ABOUTME: Decoder interface and decoded PCM buffer
// ABOUTME: Every decoder produces interleaved 16-bit PCM for a whole file
package decode

import (
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/wav"
)

// Decoder decodes a complete encoded file into PCM
type Decoder interface {
	// Decode converts the whole input to interleaved 16-bit samples
	Decode(data []byte) (*PCM, error)
}

// PCM is a fully decoded, interleaved 16-bit sample buffer
type PCM struct {
	Samples    []int16
	FrameCount int
	SampleRate int
	Channels   int
}

// Duration returns the buffer length in seconds
func (p *PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.FrameCount) / float64(p.SampleRate)
}

// Format describes the decoded stream
func (p *PCM) Format() audio.Format {
	return audio.Format{
		Codec:      audio.CodecPCM,
		SampleRate: p.SampleRate,
		Channels:   p.Channels,
		BitDepth:   16,
	}
}

// WAV wraps the samples in a canonical 16-bit PCM WAV container
func (p *PCM) WAV() []byte {
	return wav.EncodePCM16(p.Samples, p.SampleRate, p.Channels)
}
