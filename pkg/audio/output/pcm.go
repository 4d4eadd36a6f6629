// ABOUTME: Prepared WAV to device PCM conversion
// ABOUTME: Reads any PCM WAV and remixes/resamples it to the device format
package output

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	gowav "github.com/go-audio/wav"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/resample"
)

// DeviceFormat is the fixed format the output device runs at
type DeviceFormat struct {
	SampleRate int
	Channels   int
}

// BytesPerSecond returns the int16 byte rate of the device
func (f DeviceFormat) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// frameBytes returns the size of one device frame
func (f DeviceFormat) frameBytes() int {
	return f.Channels * 2
}

// toDevicePCM decodes wavBytes and converts them to little-endian int16 at
// the device format. Returns the bytes and their duration in seconds.
func toDevicePCM(wavBytes []byte, dev DeviceFormat) ([]byte, float64, error) {
	dec := gowav.NewDecoder(bytes.NewReader(wavBytes))
	if !dec.IsValidFile() {
		return nil, 0, &audio.FormatError{Reason: "not a playable PCM WAV"}
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, &audio.DecodeError{Reason: fmt.Sprintf("read PCM: %v", err)}
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, 0, &audio.FormatError{Reason: "WAV has no usable format"}
	}

	srcChannels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}

	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = audio.ScaleToInt16(int32(s), bitDepth)
	}

	samples = remix(samples, srcChannels, dev.Channels)
	samples = resample.Convert(samples, buf.Format.SampleRate, dev.SampleRate, dev.Channels)
	if len(samples) < dev.Channels {
		return nil, 0, &audio.DecodeError{Reason: "WAV contains no frames"}
	}

	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out, float64(len(out)) / float64(dev.BytesPerSecond()), nil
}

// remix maps interleaved frames from one channel count to another. Mono is
// duplicated; downmixing to mono averages every channel.
func remix(samples []int16, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}
	frames := len(samples) / from
	out := make([]int16, frames*to)
	for f := 0; f < frames; f++ {
		frame := samples[f*from : (f+1)*from]
		if to == 1 {
			sum := 0
			for _, s := range frame {
				sum += int(s)
			}
			out[f] = audio.ClampInt16(sum / from)
			continue
		}
		for ch := 0; ch < to; ch++ {
			out[f*to+ch] = frame[ch%from]
		}
	}
	return out
}

// loopReader serves a PCM buffer forever, wrapping at the end
type loopReader struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

func newLoopReader(data []byte) *loopReader {
	return &loopReader{data: data}
}

func (l *loopReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.data) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], l.data[l.pos:])
		n += c
		l.pos += c
		if l.pos >= len(l.data) {
			l.pos = 0
		}
	}
	return n, nil
}

// Seek positions the reader within the loop. Offsets wrap.
func (l *loopReader) Seek(offset int64, whence int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size := int64(len(l.data))
	if size == 0 {
		return 0, nil
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(l.pos) + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	abs = ((abs % size) + size) % size
	l.pos = int(abs)
	return abs, nil
}

// Len returns the loop length in bytes
func (l *loopReader) Len() int {
	return len(l.data)
}
