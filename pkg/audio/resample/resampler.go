// ABOUTME: Linear resampler for converting station audio to the device rate
// ABOUTME: Streams interleaved int32 chunks or converts whole int16 buffers
package resample

import "github.com/Resonate-Protocol/gtaradio-go/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	channels int
	ratio    float64
	position float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		channels: channels,
		ratio:    float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []int32, output []int32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputIdx := int(r.position)

		// The last input frame has no successor to interpolate toward
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]
			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	// Carry only the fractional part into the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// Convert resamples a complete interleaved 16-bit buffer in one pass. Equal
// rates return the input unchanged.
func Convert(input []int16, inputRate, outputRate, channels int) []int16 {
	if inputRate == outputRate || len(input) == 0 || channels <= 0 {
		return input
	}

	r := New(inputRate, outputRate, channels)
	in := make([]int32, len(input))
	for i, s := range input {
		in[i] = audio.SampleFromInt16(s)
	}
	out := make([]int32, r.OutputSamplesNeeded(len(in))+channels)
	n := r.Resample(in, out)

	result := make([]int16, n)
	for i := 0; i < n; i++ {
		result[i] = audio.SampleToInt16(out[i])
	}
	return result
}
