// ABOUTME: WAV container package
// ABOUTME: Parses RIFF/WAVE headers and writes canonical PCM WAV files
// Package wav reads and writes the RIFF/WAVE container.
//
// ParseHeader accepts linear PCM (0x0001) and IMA ADPCM (0x0011) files and
// reports any other format tag as an *audio.UnsupportedFormatError.
// EncodePCM16 always emits the canonical 44-byte header so consumers only
// need a PCM reader.
//
// Example:
//
//	h, err := wav.ParseHeader(buf)
//	if err != nil {
//	    return err
//	}
//	log.Printf("%s %dHz %dch, %.1fs", h.AudioFormat, h.SampleRate, h.NumChannels, h.Duration)
package wav
