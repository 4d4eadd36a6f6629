// ABOUTME: Audio decoder package for whole-file decoding
// ABOUTME: Provides IMA ADPCM, MP3 and FLAC decoders producing 16-bit PCM
// Package decode turns encoded station audio into 16-bit PCM.
//
// Supports: IMA ADPCM WAV (bit-exact), MP3, FLAC
//
// Decoding is done up front for the whole file; there is no streaming mode.
//
// Example:
//
//	h, err := wav.ParseHeader(buf)
//	pcm, err := decode.DecodeIMAADPCM(buf, h)
//	playable := pcm.WAV()
package decode
