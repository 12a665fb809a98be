package pcm

import (
	"errors"
	"time"
)

// ErrInvalidBuffer is returned when a buffer fails basic shape checks
var ErrInvalidBuffer = errors.New("invalid sample buffer")

// SampleBuffer holds decoded PCM audio: one float64 slice per channel at
// a known sample rate. Buffers are treated as immutable once produced by
// a decoder; detectors only read them, so one buffer can feed several
// analyses concurrently.
type SampleBuffer struct {
	Channels   [][]float64
	SampleRate int
}

// NewSampleBuffer validates the channel shapes and wraps them
func NewSampleBuffer(channels [][]float64, sampleRate int) (*SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if len(channels) == 0 {
		return nil, errors.New("at least one channel required")
	}
	for i := 1; i < len(channels); i++ {
		if len(channels[i]) != len(channels[0]) {
			return nil, errors.New("channels must have equal length")
		}
	}
	return &SampleBuffer{Channels: channels, SampleRate: sampleRate}, nil
}

// NumChannels returns the channel count
func (b *SampleBuffer) NumChannels() int {
	return len(b.Channels)
}

// NumSamples returns the per-channel sample count
func (b *SampleBuffer) NumSamples() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration derives the buffer length from sample count and rate
func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	seconds := float64(b.NumSamples()) / float64(b.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Mono returns a single-channel view of the buffer: channel 0 as-is for
// mono input, otherwise a freshly allocated average across channels.
func (b *SampleBuffer) Mono() []float64 {
	if len(b.Channels) == 1 {
		return b.Channels[0]
	}

	n := b.NumSamples()
	mixed := make([]float64, n)
	scale := 1 / float64(len(b.Channels))
	for _, ch := range b.Channels {
		for i, s := range ch {
			mixed[i] += s * scale
		}
	}
	return mixed
}
