package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
)

func TestPeaks(t *testing.T) {
	samples := make([]float64, 1000)
	samples[100] = 0.9
	samples[600] = -0.4
	buf, err := pcm.NewSampleBuffer([][]float64{samples}, 44100)
	require.NoError(t, err)

	peaks := Peaks(buf, 2)
	require.Len(t, peaks, 2)
	assert.InDelta(t, 0.9, peaks[0], 1e-12)
	assert.InDelta(t, 0.4, peaks[1], 1e-12)
}

func TestPeaksMultiChannel(t *testing.T) {
	left := []float64{0.1, 0.2, 0.3, 0.4}
	right := []float64{-0.8, 0, 0, 0}
	buf, err := pcm.NewSampleBuffer([][]float64{left, right}, 44100)
	require.NoError(t, err)

	peaks := Peaks(buf, 1)
	require.Len(t, peaks, 1)
	assert.InDelta(t, 0.8, peaks[0], 1e-12)
}

func TestPeaksMoreBucketsThanSamples(t *testing.T) {
	buf, err := pcm.NewSampleBuffer([][]float64{{0.5, -0.25}}, 44100)
	require.NoError(t, err)

	peaks := Peaks(buf, 10)
	assert.Equal(t, []float64{0.5, 0.25}, peaks)
}

func TestPeaksDegenerate(t *testing.T) {
	buf, err := pcm.NewSampleBuffer([][]float64{{0.5}}, 44100)
	require.NoError(t, err)

	assert.Nil(t, Peaks(buf, 0))
	assert.Nil(t, Peaks(buf, -1))
}
