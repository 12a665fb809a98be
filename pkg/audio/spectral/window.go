package spectral

import "math"

// WindowType selects an analysis window function
type WindowType int

const (
	WindowHann WindowType = iota
	WindowHamming
)

// NewWindow returns the n coefficients of the requested window, each in
// [0,1]. Applying a window before the transform reduces spectral leakage
// from frequencies that do not land exactly on a bin.
func NewWindow(t WindowType, n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	switch t {
	case WindowHamming:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	default: // Hann
		for i := range w {
			w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	}
	return w
}

// ApplyWindow multiplies samples by the window coefficients into dst.
// dst and samples may alias. Panics if lengths differ, since mismatched
// windows are a programming error rather than a runtime condition.
func ApplyWindow(dst, samples, window []float64) {
	if len(samples) != len(window) || len(dst) != len(samples) {
		panic("spectral: window and sample block lengths differ")
	}
	for i, s := range samples {
		dst[i] = s * window[i]
	}
}
