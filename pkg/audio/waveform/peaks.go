package waveform

import (
	"math"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
)

// Peaks reduces a buffer to the maximum absolute sample amplitude per
// bucket, across all channels, for drawing a waveform overview. Returns
// nil when the buffer is empty or buckets is not positive.
func Peaks(buf *pcm.SampleBuffer, buckets int) []float64 {
	n := buf.NumSamples()
	if n == 0 || buckets <= 0 {
		return nil
	}
	if buckets > n {
		buckets = n
	}

	peaks := make([]float64, buckets)
	samplesPerBucket := float64(n) / float64(buckets)

	for b := range peaks {
		start := int(float64(b) * samplesPerBucket)
		end := int(float64(b+1) * samplesPerBucket)
		if b == buckets-1 {
			end = n
		}

		peak := 0.0
		for _, ch := range buf.Channels {
			for i := start; i < end; i++ {
				if a := math.Abs(ch[i]); a > peak {
					peak = a
				}
			}
		}
		peaks[b] = peak
	}
	return peaks
}
