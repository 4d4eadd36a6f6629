// ABOUTME: Synthetic RIFF/WAVE builders for tests
// ABOUTME: Builds PCM and IMA ADPCM files chunk by chunk
package wavtest

import (
	"encoding/binary"
)

// Chunk is one RIFF chunk
type Chunk struct {
	ID   string
	Body []byte
	// Size overrides the declared size when non-zero
	Size uint32
}

// RIFF assembles a RIFF/WAVE file, padding odd-sized chunks
func RIFF(chunks ...Chunk) []byte {
	out := []byte("RIFF\x00\x00\x00\x00WAVE")
	for _, c := range chunks {
		size := uint32(len(c.Body))
		if c.Size != 0 {
			size = c.Size
		}
		hdr := make([]byte, 8)
		copy(hdr[0:4], c.ID)
		binary.LittleEndian.PutUint32(hdr[4:8], size)
		out = append(out, hdr...)
		out = append(out, c.Body...)
		if len(c.Body)%2 == 1 {
			out = append(out, 0)
		}
	}
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out
}

// FmtPCM builds a 16-byte PCM fmt chunk
func FmtPCM(channels, sampleRate, bitsPerSample int) Chunk {
	blockAlign := channels * bitsPerSample / 8
	return Chunk{ID: "fmt ", Body: fmtBody(0x0001, channels, sampleRate, sampleRate*blockAlign, blockAlign, bitsPerSample)}
}

// FmtFormat builds a 16-byte fmt chunk with an arbitrary format tag
func FmtFormat(tag uint16, channels, sampleRate int) Chunk {
	return Chunk{ID: "fmt ", Body: fmtBody(tag, channels, sampleRate, sampleRate*channels*2, channels*2, 16)}
}

// FmtIMAADPCM builds a 20-byte IMA ADPCM fmt chunk. A zero samplesPerBlock
// leaves out the extension so the decoder must derive it.
func FmtIMAADPCM(channels, sampleRate, blockAlign, samplesPerBlock int) Chunk {
	spb := samplesPerBlock
	if spb == 0 {
		spb = 1 + (blockAlign-4*channels)/channels*2
	}
	byteRate := sampleRate * blockAlign / spb
	body := fmtBody(0x0011, channels, sampleRate, byteRate, blockAlign, 4)
	if samplesPerBlock == 0 {
		return Chunk{ID: "fmt ", Body: body}
	}
	ext := make([]byte, 4)
	binary.LittleEndian.PutUint16(ext[0:2], 2)
	binary.LittleEndian.PutUint16(ext[2:4], uint16(samplesPerBlock))
	return Chunk{ID: "fmt ", Body: append(body, ext...)}
}

func fmtBody(tag uint16, channels, sampleRate, byteRate, blockAlign, bits int) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], tag)
	binary.LittleEndian.PutUint16(b[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(b[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(b[8:12], uint32(byteRate))
	binary.LittleEndian.PutUint16(b[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(b[14:16], uint16(bits))
	return b
}

// Data wraps a sample payload in a data chunk
func Data(payload []byte) Chunk {
	return Chunk{ID: "data", Body: payload}
}

// PCM16 encodes interleaved samples as little-endian bytes
func PCM16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// ChannelHeader is the per-channel preamble of an IMA ADPCM block
type ChannelHeader struct {
	Predictor int16
	Index     byte
}

// IMABlock builds one ADPCM block: the channel headers followed by
// nibbleBytes bytes all set to fill.
func IMABlock(headers []ChannelHeader, nibbleBytes int, fill byte) []byte {
	out := make([]byte, 0, 4*len(headers)+nibbleBytes)
	for _, h := range headers {
		hdr := make([]byte, 4)
		binary.LittleEndian.PutUint16(hdr[0:2], uint16(h.Predictor))
		hdr[2] = h.Index
		out = append(out, hdr...)
	}
	for i := 0; i < nibbleBytes; i++ {
		out = append(out, fill)
	}
	return out
}

// MonoIMAADPCM builds a complete mono IMA ADPCM WAV of the given blocks,
// each blockAlign bytes, with silent nibbles and step index 0.
func MonoIMAADPCM(sampleRate, blockAlign int, predictors ...int16) []byte {
	var payload []byte
	for _, p := range predictors {
		payload = append(payload, IMABlock([]ChannelHeader{{Predictor: p}}, blockAlign-4, 0)...)
	}
	spb := 1 + (blockAlign-4)*2
	return RIFF(FmtIMAADPCM(1, sampleRate, blockAlign, spb), Data(payload))
}
