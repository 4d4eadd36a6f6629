// ABOUTME: IMA ADPCM WAV decoder
// ABOUTME: Decodes per-block, per-channel nibble streams into 16-bit PCM
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/wav"
)

const (
	maxStepIndex = 88

	// Each channel header is predictor(2) + step index(1) + reserved(1)
	channelHeaderSize = 4

	// Nibble bytes rotate across channels in 4-byte words
	interleaveWord = 4
)

var imaStepTable = [maxStepIndex + 1]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31, 34,
	37, 41, 45, 50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307, 337, 371, 408, 449, 494,
	544, 598, 658, 724, 796, 876, 963, 1060, 1166, 1282, 1411, 1552,
	1707, 1878, 2066, 2272, 2499, 2749, 3024, 3327, 3660, 4026,
	4428, 4871, 5358, 5894, 6484, 7132, 7845, 8630, 9493, 10442,
	11487, 12635, 13899, 15289, 16818, 18500, 20350, 22385, 24623,
	27086, 29794, 32767,
}

var imaIndexTable = [16]int{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// imaChannel holds the running predictor registers for one channel
type imaChannel struct {
	predictor int
	index     int
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (c *imaChannel) reset(predictor int16, index byte) {
	c.predictor = int(predictor)
	c.index = clamp(int(index), 0, maxStepIndex)
}

func (c *imaChannel) decodeNibble(nibble byte) int16 {
	step := imaStepTable[c.index]

	diff := step >> 3
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&8 != 0 {
		c.predictor -= diff
	} else {
		c.predictor += diff
	}
	c.predictor = clamp(c.predictor, -32768, 32767)

	c.index = clamp(c.index+imaIndexTable[nibble&0x0F], 0, maxStepIndex)

	return int16(c.predictor)
}

// nibbleByteOffset maps the i-th byte of channel ch to its position in the
// block's nibble area.
func nibbleByteOffset(i, ch, channels int) int {
	if channels == 1 {
		return i
	}
	word := i / interleaveWord
	return (word*channels+ch)*interleaveWord + i%interleaveWord
}

// IMAADPCMDecoder decodes IMA ADPCM WAV files described by a parsed header
type IMAADPCMDecoder struct {
	header *wav.Header
}

// NewIMAADPCM creates a decoder bound to a parsed header
func NewIMAADPCM(h *wav.Header) (Decoder, error) {
	if h == nil || h.AudioFormat != wav.FormatIMAADPCM {
		return nil, fmt.Errorf("invalid header for IMA ADPCM decoder")
	}
	return &IMAADPCMDecoder{header: h}, nil
}

// Decode decodes buf, which must be the buffer the header was parsed from
func (d *IMAADPCMDecoder) Decode(buf []byte) (*PCM, error) {
	return DecodeIMAADPCM(buf, d.header)
}

// DecodeIMAADPCM decodes the data region of an IMA ADPCM WAV.
//
// Channels are truncated to the shortest channel when block boundaries leave
// them uneven. Zero decoded frames is a DecodeError.
func DecodeIMAADPCM(buf []byte, h *wav.Header) (*PCM, error) {
	if h.AudioFormat != wav.FormatIMAADPCM {
		return nil, &audio.DecodeError{Reason: fmt.Sprintf("not IMA ADPCM (format %s)", h.AudioFormat)}
	}
	channels := h.NumChannels
	if channels <= 0 {
		return nil, &audio.DecodeError{Reason: "channel count is zero"}
	}
	if h.BlockAlign <= 0 {
		return nil, &audio.DecodeError{Reason: "block align is zero"}
	}
	if h.DataOffset+h.DataSize > len(buf) {
		return nil, &audio.DecodeError{Reason: "data region exceeds buffer"}
	}

	data := buf[h.DataOffset : h.DataOffset+h.DataSize]
	framesPerBlock := h.FramesPerBlock()
	headersSize := channelHeaderSize * channels

	blocks := (len(data) + h.BlockAlign - 1) / h.BlockAlign
	perChannel := make([][]int16, channels)
	for ch := range perChannel {
		perChannel[ch] = make([]int16, 0, 2*len(data)/channels+blocks)
	}
	state := make([]imaChannel, channels)

	for offset := 0; offset < len(data); offset += h.BlockAlign {
		blockSize := h.BlockAlign
		if remaining := len(data) - offset; remaining < blockSize {
			blockSize = remaining
		}
		if blockSize < headersSize {
			break
		}
		block := data[offset : offset+blockSize]

		// Header sample is the first frame of the block for each channel
		for ch := 0; ch < channels; ch++ {
			hdr := block[ch*channelHeaderSize:]
			predictor := int16(binary.LittleEndian.Uint16(hdr[0:2]))
			state[ch].reset(predictor, hdr[2])
			perChannel[ch] = append(perChannel[ch], predictor)
		}

		nibbles := block[headersSize:]
		bytesPerChannel := (blockSize - headersSize) / channels

		for ch := 0; ch < channels; ch++ {
			produced := 1
			for i := 0; i < bytesPerChannel && produced < framesPerBlock; i++ {
				pos := nibbleByteOffset(i, ch, channels)
				if pos >= len(nibbles) {
					break
				}
				b := nibbles[pos]

				perChannel[ch] = append(perChannel[ch], state[ch].decodeNibble(b&0x0F))
				produced++
				if produced >= framesPerBlock {
					break
				}
				perChannel[ch] = append(perChannel[ch], state[ch].decodeNibble(b>>4))
				produced++
			}
		}
	}

	frameCount := len(perChannel[0])
	for _, samples := range perChannel[1:] {
		if len(samples) < frameCount {
			frameCount = len(samples)
		}
	}
	if frameCount == 0 {
		return nil, &audio.DecodeError{Reason: "no IMA ADPCM frames in data chunk"}
	}

	out := make([]int16, frameCount*channels)
	for frame := 0; frame < frameCount; frame++ {
		for ch := 0; ch < channels; ch++ {
			out[frame*channels+ch] = perChannel[ch][frame]
		}
	}

	return &PCM{
		Samples:    out,
		FrameCount: frameCount,
		SampleRate: h.SampleRate,
		Channels:   channels,
	}, nil
}
