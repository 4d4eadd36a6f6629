// ABOUTME: Playable-audio resolution package
// ABOUTME: Dispatches raw station bytes to the right decoder
// Package playable turns raw station bytes into a uniform, ready-to-play
// result. Whatever the input, Result.Bytes is a PCM WAV so the media layer
// only needs a PCM reader.
//
// Example:
//
//	res, err := playable.Prepare(raw, playable.Options{AllowADPCMDecode: true})
//	if err != nil {
//	    return err
//	}
//	duration, err := handle.LoadAndWait(ctx, res.Bytes)
package playable
