package decode

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
	"github.com/cueprep/cueprep/pkg/logging"
)

// ReadWAVFile decodes a PCM WAV file into a SampleBuffer with one
// float64 slice per channel, samples scaled to [-1,1]. This is the only
// place the toolchain touches a container format; everything else works
// on decoded buffers.
func ReadWAVFile(path string) (*pcm.SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}

	intBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav pcm: %w", err)
	}
	if intBuf.Format == nil || intBuf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("wav file has no channels: %s", path)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1 / float64(int(1)<<(bitDepth-1))

	numChannels := intBuf.Format.NumChannels
	frames := len(intBuf.Data) / numChannels
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	// WAV interleaves samples frame by frame.
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float64(intBuf.Data[i*numChannels+ch]) * scale
		}
	}

	buf, err := pcm.NewSampleBuffer(channels, intBuf.Format.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("wrap decoded samples: %w", err)
	}

	logging.WithFields(logging.Fields{"component": "wav_decoder"}).Debug("decoded wav file", logging.Fields{
		"path":        path,
		"sample_rate": buf.SampleRate,
		"channels":    buf.NumChannels(),
		"duration_s":  buf.Duration().Seconds(),
		"bit_depth":   bitDepth,
	})
	return buf, nil
}
