package key

import "math"

// PitchClasses lists the chromatic pitch class names in index order
var PitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Chromagram is the energy distribution over the 12 pitch classes,
// octave-folded: every C maps to bin 0 regardless of octave.
type Chromagram [12]float64

// Sum returns the total energy across all pitch classes
func (c *Chromagram) Sum() float64 {
	total := 0.0
	for _, v := range c {
		total += v
	}
	return total
}

// Normalize scales the chromagram to unit sum and reports whether any
// energy was present. An all-zero chromagram is left untouched.
func (c *Chromagram) Normalize() bool {
	total := c.Sum()
	if total <= 0 {
		return false
	}
	for i := range c {
		c[i] /= total
	}
	return true
}

// pitchClass folds a frequency onto its chromatic pitch class via the
// MIDI note scale anchored at A4 = tuning Hz. Returns -1 for
// non-positive frequencies.
func pitchClass(freq, tuning float64) int {
	if freq <= 0 {
		return -1
	}
	midi := 69 + 12*math.Log2(freq/tuning)
	pc := int(math.Round(midi)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}
