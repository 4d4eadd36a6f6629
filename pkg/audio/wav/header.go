// ABOUTME: RIFF/WAVE container parser
// ABOUTME: Walks chunks and extracts the fmt descriptor and data range
package wav

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
)

// AudioFormat is the WAVEFORMATEX format tag
type AudioFormat uint16

const (
	FormatPCM      AudioFormat = 0x0001
	FormatIMAADPCM AudioFormat = 0x0011
)

func (f AudioFormat) String() string {
	switch f {
	case FormatPCM:
		return "PCM"
	case FormatIMAADPCM:
		return "IMA ADPCM"
	}
	return fmt.Sprintf("0x%04x", uint16(f))
}

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	minFmtSize      = 16
)

// Header describes one parsed WAV file. It is read-only after ParseHeader.
type Header struct {
	AudioFormat   AudioFormat
	NumChannels   int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int

	// SamplesPerBlock is the ADPCM frames-per-block from the fmt extension,
	// zero when the file does not declare it.
	SamplesPerBlock int

	DataOffset int
	DataSize   int

	// Duration in seconds. Only known up front for PCM.
	Duration float64
}

// HasDuration reports whether Duration was computable from the header alone
func (h *Header) HasDuration() bool {
	return h.AudioFormat == FormatPCM && h.ByteRate > 0
}

// FramesPerBlock returns the declared ADPCM samples per block, or the value
// derived from block geometry when the extension field was absent.
func (h *Header) FramesPerBlock() int {
	if h.SamplesPerBlock > 0 {
		return h.SamplesPerBlock
	}
	if h.NumChannels <= 0 {
		return 0
	}
	bytesPerChannel := (h.BlockAlign - 4*h.NumChannels) / h.NumChannels
	if bytesPerChannel < 0 {
		bytesPerChannel = 0
	}
	return 1 + bytesPerChannel*2
}

// Format returns the stream format described by the header
func (h *Header) Format() audio.Format {
	codec := audio.CodecPCM
	if h.AudioFormat == FormatIMAADPCM {
		codec = audio.CodecIMAADPCM
	}
	return audio.Format{
		Codec:      codec,
		SampleRate: h.SampleRate,
		Channels:   h.NumChannels,
		BitDepth:   h.BitsPerSample,
	}
}

// IsRIFF reports whether buf starts with RIFF/WAVE magic
func IsRIFF(buf []byte) bool {
	return len(buf) >= riffHeaderSize &&
		string(buf[0:4]) == "RIFF" &&
		string(buf[8:12]) == "WAVE"
}

// ParseHeader parses the RIFF container in buf.
//
// The chunk walk stops at the first chunk whose declared size overruns the
// buffer; that chunk is truncated to the bytes present.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < riffHeaderSize {
		return nil, &audio.FormatError{Reason: fmt.Sprintf("buffer too short (%d bytes)", len(buf))}
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return nil, &audio.FormatError{Reason: "missing RIFF/WAVE magic"}
	}

	var (
		fmtChunk []byte
		h        Header
		haveData bool
	)

	offset := riffHeaderSize
	for offset+chunkHeaderSize <= len(buf) {
		id := string(buf[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(buf[offset+4 : offset+8]))
		body := offset + chunkHeaderSize
		overrun := body+size > len(buf)
		end := body + size
		if overrun {
			end = len(buf)
		}

		switch id {
		case "fmt ":
			fmtChunk = buf[body:end]
		case "data":
			h.DataOffset = body
			h.DataSize = end - body
			haveData = true
		}

		if overrun || (fmtChunk != nil && haveData) {
			break
		}

		offset = body + size
		if size%2 == 1 {
			offset++
		}
	}

	if fmtChunk == nil {
		return nil, &audio.FormatError{Reason: "no fmt chunk"}
	}
	if !haveData {
		return nil, &audio.FormatError{Reason: "no data chunk"}
	}
	if len(fmtChunk) < minFmtSize {
		return nil, &audio.FormatError{Reason: fmt.Sprintf("fmt chunk too short (%d bytes)", len(fmtChunk))}
	}

	h.AudioFormat = AudioFormat(binary.LittleEndian.Uint16(fmtChunk[0:2]))
	h.NumChannels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
	h.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
	h.ByteRate = int(binary.LittleEndian.Uint32(fmtChunk[8:12]))
	h.BlockAlign = int(binary.LittleEndian.Uint16(fmtChunk[12:14]))
	h.BitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))

	if len(fmtChunk) >= 18 {
		cbSize := int(binary.LittleEndian.Uint16(fmtChunk[16:18]))
		if h.AudioFormat == FormatIMAADPCM && cbSize >= 2 && len(fmtChunk) >= 20 {
			h.SamplesPerBlock = int(binary.LittleEndian.Uint16(fmtChunk[18:20]))
		}
	}

	switch h.AudioFormat {
	case FormatPCM, FormatIMAADPCM:
	default:
		return nil, &audio.UnsupportedFormatError{Code: uint16(h.AudioFormat)}
	}

	if h.NumChannels <= 0 {
		return nil, &audio.FormatError{Reason: "channel count is zero"}
	}
	if h.SampleRate <= 0 {
		return nil, &audio.FormatError{Reason: "sample rate is zero"}
	}

	if h.HasDuration() {
		h.Duration = float64(h.DataSize) / float64(h.ByteRate)
	}

	return &h, nil
}
