package pcm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleBufferValidation(t *testing.T) {
	_, err := NewSampleBuffer(nil, 44100)
	assert.Error(t, err)

	_, err = NewSampleBuffer([][]float64{{0, 0}}, 0)
	assert.Error(t, err)

	_, err = NewSampleBuffer([][]float64{{0, 0}, {0}}, 44100)
	assert.Error(t, err)

	buf, err := NewSampleBuffer([][]float64{{0, 0}, {0, 0}}, 44100)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.NumChannels())
	assert.Equal(t, 2, buf.NumSamples())
}

func TestDuration(t *testing.T) {
	buf, err := NewSampleBuffer([][]float64{make([]float64, 48000)}, 48000)
	require.NoError(t, err)
	assert.Equal(t, time.Second, buf.Duration())

	buf, err = NewSampleBuffer([][]float64{make([]float64, 24000)}, 48000)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, buf.Duration())
}

func TestMonoDownmix(t *testing.T) {
	left := []float64{1, 0.5, -1}
	right := []float64{0, 0.5, 1}
	buf, err := NewSampleBuffer([][]float64{left, right}, 44100)
	require.NoError(t, err)

	mono := buf.Mono()
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0}, mono, 1e-12)

	// Mono input returns the channel itself, not a copy.
	single, err := NewSampleBuffer([][]float64{left}, 44100)
	require.NoError(t, err)
	assert.Equal(t, &left[0], &single.Mono()[0])
}
