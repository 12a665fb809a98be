package key

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
	"github.com/cueprep/cueprep/pkg/audio/spectral"
	"github.com/cueprep/cueprep/pkg/logging"
)

// Mode distinguishes major from minor keys
type Mode string

const (
	ModeMajor Mode = "major"
	ModeMinor Mode = "minor"
)

// Config contains frame and folding parameters for key detection. The
// block is larger than the tempo detector's because key estimation needs
// finer frequency resolution to separate neighboring semitones.
type Config struct {
	FrameSize int     // analysis block size, power of two
	HopSize   int     // samples between frames
	MinFreq   float64 // lowest frequency folded into the chromagram
	MaxFreq   float64 // highest frequency folded into the chromagram
	Tuning    float64 // A4 reference frequency in Hz
}

// DefaultConfig returns the standard analysis parameters
func DefaultConfig() Config {
	return Config{
		FrameSize: 8192,
		HopSize:   4096,
		MinFreq:   55,
		MaxFreq:   8000,
		Tuning:    440,
	}
}

// Estimate is the result of one key analysis. Score is the Pearson
// correlation of the chromagram with the winning key profile; a zero
// score with an empty Camelot code means no tonal content was found.
type Estimate struct {
	PitchClass int     `json:"pitch_class"`
	Mode       Mode    `json:"mode"`
	Camelot    string  `json:"camelot"`
	Score      float64 `json:"score"`
}

// Name returns the conventional key name, e.g. "A minor"
func (e Estimate) Name() string {
	if e.Mode == "" {
		return "unknown"
	}
	return PitchClasses[e.PitchClass] + " " + string(e.Mode)
}

// Krumhansl-Schmuckler key profiles: expected pitch-class emphasis of a
// major and minor key with the tonic at index 0, from listener-rating
// experiments. Rotating them yields templates for all 24 keys.
var (
	krumhanslMajor = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	krumhanslMinor = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Detector estimates the musical key of a buffer by correlating its
// chromagram against the 24 rotated key profiles. Each Detect call is
// independent; the transform plan cache inside the engine is the only
// shared state.
type Detector struct {
	cfg    Config
	engine *spectral.Engine
	window []float64
	logger logging.Logger
}

// NewDetector creates a key detector with default parameters sharing the
// given transform engine.
func NewDetector(engine *spectral.Engine) *Detector {
	return NewDetectorWithConfig(engine, DefaultConfig())
}

// NewDetectorWithConfig creates a key detector with custom parameters
func NewDetectorWithConfig(engine *spectral.Engine, cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		engine: engine,
		window: spectral.NewWindow(spectral.WindowHamming, cfg.FrameSize),
		logger: logging.WithFields(logging.Fields{
			"component":  "key_detector",
			"frame_size": cfg.FrameSize,
			"hop_size":   cfg.HopSize,
		}),
	}
}

// Detect estimates the key of the buffer. Buffers shorter than one frame
// or without tonal energy return a zero estimate rather than an error.
func (d *Detector) Detect(ctx context.Context, buf *pcm.SampleBuffer) (Estimate, error) {
	samples := buf.Mono()
	if len(samples) < d.cfg.FrameSize {
		d.logger.Debug("buffer shorter than one frame, skipping key analysis", logging.Fields{
			"samples": len(samples),
		})
		return Estimate{}, nil
	}

	chroma, err := d.chromagram(ctx, samples, buf.SampleRate)
	if err != nil {
		return Estimate{}, err
	}
	if !chroma.Normalize() {
		// All-zero chromagram: silence or content entirely outside the
		// musical range.
		return Estimate{}, nil
	}

	est := bestProfileMatch(chroma)
	d.logger.Debug("key analysis completed", logging.Fields{
		"key":     est.Name(),
		"camelot": est.Camelot,
		"score":   est.Score,
	})
	return est, nil
}

// Chromagram exposes the accumulated, normalized pitch-class profile of
// a buffer, mainly for diagnostics and tests.
func (d *Detector) Chromagram(ctx context.Context, buf *pcm.SampleBuffer) (Chromagram, error) {
	samples := buf.Mono()
	if len(samples) < d.cfg.FrameSize {
		return Chromagram{}, nil
	}
	chroma, err := d.chromagram(ctx, samples, buf.SampleRate)
	if err != nil {
		return Chromagram{}, err
	}
	chroma.Normalize()
	return chroma, nil
}

// chromagram folds the magnitude spectrum of every frame into the 12
// pitch-class bins, skipping sub-bass rumble and bins beyond musical
// pitch range.
func (d *Detector) chromagram(ctx context.Context, samples []float64, sampleRate int) (Chromagram, error) {
	var chroma Chromagram

	// The bin-to-pitch-class mapping depends only on the frame geometry,
	// so compute it once rather than per frame.
	mapping := make([]int, d.cfg.FrameSize/2+1)
	for k := range mapping {
		freq := spectral.BinFrequency(k, d.cfg.FrameSize, sampleRate)
		if freq < d.cfg.MinFreq || freq > d.cfg.MaxFreq {
			mapping[k] = -1
			continue
		}
		mapping[k] = pitchClass(freq, d.cfg.Tuning)
	}

	numFrames := (len(samples)-d.cfg.FrameSize)/d.cfg.HopSize + 1
	frame := make([]float64, d.cfg.FrameSize)

	for i := 0; i < numFrames; i++ {
		if i%16 == 0 {
			select {
			case <-ctx.Done():
				return Chromagram{}, ctx.Err()
			default:
			}
		}

		start := i * d.cfg.HopSize
		spectral.ApplyWindow(frame, samples[start:start+d.cfg.FrameSize], d.window)

		bins, err := d.engine.Transform(frame)
		if err != nil {
			return Chromagram{}, err
		}

		for k, pc := range mapping {
			if pc < 0 {
				continue
			}
			re, im := real(bins[k]), imag(bins[k])
			chroma[pc] += math.Sqrt(re*re + im*im)
		}
	}
	return chroma, nil
}

// bestProfileMatch correlates the chromagram against all 24 key
// templates and returns the top match. Relative major/minor pairs often
// score within a hair of each other; the top score is reported without
// further disambiguation.
func bestProfileMatch(chroma Chromagram) Estimate {
	observed := chroma[:]
	template := make([]float64, 12)

	best := Estimate{}
	found := false

	for tonic := 0; tonic < 12; tonic++ {
		for _, mode := range []Mode{ModeMajor, ModeMinor} {
			profile := krumhanslMajor
			if mode == ModeMinor {
				profile = krumhanslMinor
			}
			// Rotate so the template's tonic weight lands on this pitch
			// class.
			for i := range template {
				template[(i+tonic)%12] = profile[i]
			}

			score := stat.Correlation(observed, template, nil)
			if math.IsNaN(score) {
				continue
			}
			if !found || score > best.Score {
				best = Estimate{
					PitchClass: tonic,
					Mode:       mode,
					Camelot:    CamelotCode(tonic, mode),
					Score:      score,
				}
				found = true
			}
		}
	}
	if !found {
		return Estimate{}
	}
	return best
}
