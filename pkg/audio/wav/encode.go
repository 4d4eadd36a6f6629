// ABOUTME: Canonical PCM WAV writer
// ABOUTME: Wraps 16-bit interleaved samples in a 44-byte-header container
package wav

import (
	"encoding/binary"
)

// CanonicalHeaderSize is the size of the header EncodePCM16 emits
const CanonicalHeaderSize = 44

// EncodePCM16 wraps interleaved 16-bit samples in a minimal linear PCM WAV
func EncodePCM16(samples []int16, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	dataSize := len(samples) * 2
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, CanonicalHeaderSize+dataSize)

	// RIFF header
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataSize))
	copy(out[8:12], "WAVE")

	// fmt chunk
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], uint16(FormatPCM))
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	// data chunk
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[CanonicalHeaderSize+i*2:], uint16(s))
	}

	return out
}
