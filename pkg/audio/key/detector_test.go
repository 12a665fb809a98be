package key

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
	"github.com/cueprep/cueprep/pkg/audio/spectral"
)

// makeHarmonicTone synthesizes a tone with decaying harmonics above the
// fundamental, roughly like a sustained plucked note.
func makeHarmonicTone(sampleRate int, fundamental float64, seconds float64) *pcm.SampleBuffer {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for h := 1; h <= 4; h++ {
		freq := fundamental * float64(h)
		if freq >= float64(sampleRate)/2 {
			break
		}
		amp := 1 / float64(h)
		for i := range samples {
			samples[i] += amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		}
	}
	buf, _ := pcm.NewSampleBuffer([][]float64{samples}, sampleRate)
	return buf
}

func TestDetectC4Tone(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())

	// C4 with harmonics: C-E-G content. The relative pair C major /
	// A minor is the accepted ambiguity here.
	est, err := detector.Detect(context.Background(), makeHarmonicTone(44100, 261.63, 4))
	require.NoError(t, err)

	cMajor := Estimate{PitchClass: 0, Mode: ModeMajor, Camelot: "8B", Score: est.Score}
	aMinor := Estimate{PitchClass: 9, Mode: ModeMinor, Camelot: "8A", Score: est.Score}
	assert.Contains(t, []Estimate{cMajor, aMinor}, est)
	assert.Greater(t, est.Score, 0.0)
}

func TestDetectA2PitchClass(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())

	est, err := detector.Detect(context.Background(), makeHarmonicTone(48000, 110, 5))
	require.NoError(t, err)

	assert.Equal(t, 9, est.PitchClass, "110 Hz is A2")
	assert.Equal(t, CamelotCode(est.PitchClass, est.Mode), est.Camelot)
}

func TestDetectSilence(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())
	silence, err := pcm.NewSampleBuffer([][]float64{make([]float64, 2*44100)}, 44100)
	require.NoError(t, err)

	est, err := detector.Detect(context.Background(), silence)
	require.NoError(t, err)
	assert.Zero(t, est.Score)
	assert.Empty(t, est.Camelot)
}

func TestDetectShortBuffer(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())
	short, err := pcm.NewSampleBuffer([][]float64{make([]float64, 1024)}, 44100)
	require.NoError(t, err)

	est, err := detector.Detect(context.Background(), short)
	require.NoError(t, err)
	assert.Equal(t, Estimate{}, est)
}

func TestDetectCancellation(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := detector.Detect(ctx, makeHarmonicTone(44100, 261.63, 2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChromagramNormalization(t *testing.T) {
	detector := NewDetector(spectral.NewEngine())

	chroma, err := detector.Chromagram(context.Background(), makeHarmonicTone(44100, 261.63, 2))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, chroma.Sum(), 1e-9)
	for pc, v := range chroma {
		assert.GreaterOrEqualf(t, v, 0.0, "pitch class %s", PitchClasses[pc])
	}

	// C (fundamental plus octaves and the fourth harmonic) dominates.
	maxBin := 0
	for pc, v := range chroma {
		if v > chroma[maxBin] {
			maxBin = pc
		}
	}
	assert.Equal(t, 0, maxBin)
}

func TestPitchClassFolding(t *testing.T) {
	tests := []struct {
		freq float64
		want int
	}{
		{440, 9},     // A4
		{220, 9},     // A3, octave fold
		{110, 9},     // A2
		{261.63, 0},  // C4
		{523.25, 0},  // C5
		{311.13, 3},  // D#4
		{16.35, 0},    // C0
		{7902.13, 11}, // B8
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, pitchClass(tt.freq, 440), "%.2f Hz", tt.freq)
	}

	assert.Equal(t, -1, pitchClass(0, 440))
	assert.Equal(t, -1, pitchClass(-5, 440))
}

func TestCamelotTable(t *testing.T) {
	tests := []struct {
		pc   int
		mode Mode
		want string
	}{
		{0, ModeMajor, "8B"},  // C major
		{9, ModeMinor, "8A"},  // A minor
		{7, ModeMajor, "9B"},  // G major
		{4, ModeMinor, "9A"},  // E minor
		{11, ModeMajor, "1B"}, // B major
		{8, ModeMinor, "1A"},  // G# minor
		{6, ModeMajor, "2B"},  // F# major
		{1, ModeMinor, "12A"}, // C# minor
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CamelotCode(tt.pc, tt.mode))
	}

	// Every wheel position appears exactly once across the 24 keys.
	seen := make(map[string]bool)
	for pc := 0; pc < 12; pc++ {
		for _, mode := range []Mode{ModeMajor, ModeMinor} {
			code := CamelotCode(pc, mode)
			assert.False(t, seen[code], "duplicate camelot code %s", code)
			seen[code] = true
		}
	}
	assert.Len(t, seen, 24)

	assert.Empty(t, CamelotCode(-1, ModeMajor))
	assert.Empty(t, CamelotCode(12, ModeMinor))
}
