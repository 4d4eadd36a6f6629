// ABOUTME: Playable-audio resolution
// ABOUTME: Inspects raw station bytes and produces a PCM WAV ready to play
package playable

import (
	"errors"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/gtaradio-go/internal/metrics"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/wav"
)

// Options gates the CPU-heavy paths
type Options struct {
	// AllowADPCMDecode opts in to decoding IMA ADPCM WAV files
	AllowADPCMDecode bool
}

// Result is a station buffer ready for a media handle. It is owned by the
// caller and never cached here.
type Result struct {
	// Bytes is always a PCM WAV container
	Bytes      []byte
	Format     string
	Duration   float64
	SampleRate int
	Channels   int
	// Note is a human-readable remark about any conversion performed
	Note string
}

// Prepare resolves raw bytes into a playable PCM WAV.
//
// PCM WAV input is returned unmodified. IMA ADPCM is decoded only when
// opts.AllowADPCMDecode is set. MP3 and FLAC files are decoded to PCM.
func Prepare(buf []byte, opts Options) (*Result, error) {
	res, err := prepare(buf, opts)
	if err != nil {
		metrics.PrepareErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}
	metrics.PreparedTotal.WithLabelValues(res.Format).Inc()
	return res, nil
}

func prepare(buf []byte, opts Options) (*Result, error) {
	switch {
	case wav.IsRIFF(buf):
		return prepareWAV(buf, opts)
	case decode.IsFLAC(buf):
		return prepareCompressed(buf, audio.CodecFLAC, decode.NewFLAC())
	case decode.IsMP3(buf):
		return prepareCompressed(buf, audio.CodecMP3, decode.NewMP3())
	}

	// Not a container we recognise; let the WAV parser name the problem
	_, err := wav.ParseHeader(buf)
	if err == nil {
		err = &audio.FormatError{Reason: "unrecognised container"}
	}
	return nil, err
}

func prepareWAV(buf []byte, opts Options) (*Result, error) {
	h, err := wav.ParseHeader(buf)
	if err != nil {
		return nil, err
	}

	switch h.AudioFormat {
	case wav.FormatPCM:
		if !h.HasDuration() {
			return nil, &audio.FormatError{Reason: "PCM byte rate is zero"}
		}
		return &Result{
			Bytes:      buf,
			Format:     audio.CodecPCM,
			Duration:   h.Duration,
			SampleRate: h.SampleRate,
			Channels:   h.NumChannels,
		}, nil

	case wav.FormatIMAADPCM:
		if !opts.AllowADPCMDecode {
			return nil, &audio.UnsupportedFormatError{
				Code:   uint16(h.AudioFormat),
				Reason: "IMA ADPCM decoding is not enabled",
			}
		}

		start := time.Now()
		pcm, err := decode.DecodeIMAADPCM(buf, h)
		if err != nil {
			return nil, err
		}
		metrics.DecodeSeconds.WithLabelValues(audio.CodecIMAADPCM).Observe(time.Since(start).Seconds())

		return &Result{
			Bytes:      pcm.WAV(),
			Format:     audio.CodecIMAADPCM,
			Duration:   pcm.Duration(),
			SampleRate: pcm.SampleRate,
			Channels:   pcm.Channels,
			Note:       fmt.Sprintf("Decoded IMA ADPCM audio (%d Hz)", h.SampleRate),
		}, nil
	}

	return nil, &audio.UnsupportedFormatError{Code: uint16(h.AudioFormat)}
}

func prepareCompressed(buf []byte, codec string, decoder decode.Decoder) (*Result, error) {
	start := time.Now()
	pcm, err := decoder.Decode(buf)
	if err != nil {
		return nil, err
	}
	metrics.DecodeSeconds.WithLabelValues(codec).Observe(time.Since(start).Seconds())

	return &Result{
		Bytes:      pcm.WAV(),
		Format:     codec,
		Duration:   pcm.Duration(),
		SampleRate: pcm.SampleRate,
		Channels:   pcm.Channels,
		Note:       fmt.Sprintf("Decoded %s audio (%d Hz)", codec, pcm.SampleRate),
	}, nil
}

func errorKind(err error) string {
	var (
		formatErr      *audio.FormatError
		unsupportedErr *audio.UnsupportedFormatError
		decodeErr      *audio.DecodeError
	)
	switch {
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &unsupportedErr):
		return "unsupported"
	case errors.As(err, &decodeErr):
		return "decode"
	}
	return "other"
}
