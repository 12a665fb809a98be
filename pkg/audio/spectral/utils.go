package spectral

import "math/cmplx"

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Callers pad
// blocks with zeros up to this size before transforming.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}

// ZeroPad returns samples extended with zeros to length n. If samples is
// already long enough it is returned unchanged.
func ZeroPad(samples []float64, n int) []float64 {
	if len(samples) >= n {
		return samples
	}
	padded := make([]float64, n)
	copy(padded, samples)
	return padded
}

// Magnitudes returns the per-bin magnitude of a transformed block
func Magnitudes(bins []complex128) []float64 {
	mags := make([]float64, len(bins))
	for i, b := range bins {
		mags[i] = cmplx.Abs(b)
	}
	return mags
}

// BinFrequency returns the center frequency in Hz of bin k for an n-point
// transform at the given sample rate.
func BinFrequency(k, n, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(n)
}

// FrequencyBin returns the bin index closest to freq for an n-point
// transform at the given sample rate.
func FrequencyBin(freq float64, n, sampleRate int) int {
	return int(freq*float64(n)/float64(sampleRate) + 0.5)
}
