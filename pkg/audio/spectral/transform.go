package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"
)

// ErrNotPowerOfTwo is returned when a transform is requested for a block
// size the radix-2 algorithm cannot handle. Callers are expected to pad
// with NextPowerOfTwo rather than rely on silent truncation.
var ErrNotPowerOfTwo = errors.New("transform size must be a power of two")

// Plan holds the precomputed state for transforms of one fixed size:
// the bit-reversal permutation and the N/2 twiddle factors used by the
// butterfly stages. A plan is immutable after construction and safe for
// concurrent use.
type Plan struct {
	size    int
	bitrev  []int
	twiddle []complex128
}

// Engine computes forward and inverse discrete Fourier transforms of
// power-of-two blocks in O(N log N). Plans are built lazily per size and
// retained in a cache; the cache is the only mutable state and inserts
// are serialized so concurrent detector runs share plans safely.
type Engine struct {
	mu    sync.RWMutex
	plans map[int]*Plan
}

// NewEngine creates an engine with an empty plan cache
func NewEngine() *Engine {
	return &Engine{plans: make(map[int]*Plan)}
}

// Plan returns the cached plan for size n, building it on first request.
func (e *Engine) Plan(n int) (*Plan, error) {
	if n < 1 || !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, n)
	}

	e.mu.RLock()
	p, ok := e.plans[n]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Another goroutine may have built it between the two locks.
	if p, ok := e.plans[n]; ok {
		return p, nil
	}
	p = newPlan(n)
	e.plans[n] = p
	return p, nil
}

// Transform computes the forward transform of a real-valued block whose
// length must be a power of two. The result has one complex bin per input
// sample; magnitudes are symmetric about the Nyquist bin for real input.
func (e *Engine) Transform(samples []float64) ([]complex128, error) {
	p, err := e.Plan(len(samples))
	if err != nil {
		return nil, err
	}

	x := make([]complex128, len(samples))
	for i, s := range samples {
		x[i] = complex(s, 0)
	}
	p.execute(x, false)
	return x, nil
}

// TransformComplex computes the forward transform of a complex block in a
// freshly allocated slice.
func (e *Engine) TransformComplex(x []complex128) ([]complex128, error) {
	p, err := e.Plan(len(x))
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(x))
	copy(out, x)
	p.execute(out, false)
	return out, nil
}

// Inverse computes the inverse transform, scaled by 1/N so that a
// forward/inverse round trip reproduces the input.
func (e *Engine) Inverse(bins []complex128) ([]complex128, error) {
	p, err := e.Plan(len(bins))
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(bins))
	copy(out, bins)
	p.execute(out, true)

	scale := complex(1/float64(len(bins)), 0)
	for i := range out {
		out[i] *= scale
	}
	return out, nil
}

// CachedSizes reports the block sizes with resident plans, mainly for
// diagnostics.
func (e *Engine) CachedSizes() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sizes := make([]int, 0, len(e.plans))
	for n := range e.plans {
		sizes = append(sizes, n)
	}
	return sizes
}

// Size returns the block size this plan was built for
func (p *Plan) Size() int {
	return p.size
}

func newPlan(n int) *Plan {
	p := &Plan{
		size:    n,
		bitrev:  make([]int, n),
		twiddle: make([]complex128, n/2),
	}

	shift := 64 - uint(bits.Len(uint(n-1)))
	if n == 1 {
		shift = 64
	}
	for i := range p.bitrev {
		p.bitrev[i] = int(bits.Reverse64(uint64(i)) >> shift)
	}

	for k := range p.twiddle {
		angle := -2 * math.Pi * float64(k) / float64(n)
		p.twiddle[k] = complex(math.Cos(angle), math.Sin(angle))
	}
	return p
}

// execute runs the in-place radix-2 decimation-in-time transform.
// inverse conjugates the twiddles; scaling is left to the caller.
func (p *Plan) execute(x []complex128, inverse bool) {
	n := p.size
	if n == 1 {
		return
	}

	for i, j := range p.bitrev {
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	for span := 2; span <= n; span <<= 1 {
		half := span / 2
		step := n / span
		for start := 0; start < n; start += span {
			for k := 0; k < half; k++ {
				w := p.twiddle[k*step]
				if inverse {
					w = complex(real(w), -imag(w))
				}
				a := x[start+k]
				b := x[start+k+half] * w
				x[start+k] = a + b
				x[start+k+half] = a - b
			}
		}
	}
}
