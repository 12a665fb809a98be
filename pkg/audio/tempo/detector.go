package tempo

import (
	"context"
	"math"

	"github.com/cueprep/cueprep/pkg/audio/pcm"
	"github.com/cueprep/cueprep/pkg/audio/spectral"
	"github.com/cueprep/cueprep/pkg/logging"
)

// Config contains frame and search parameters for tempo detection
type Config struct {
	FrameSize int     // analysis block size, power of two
	HopSize   int     // samples between frames, < FrameSize for overlap
	MinBPM    float64 // lower bound of the tempo search range
	MaxBPM    float64 // upper bound of the tempo search range
}

// DefaultConfig returns the standard analysis parameters
func DefaultConfig() Config {
	return Config{
		FrameSize: 2048,
		HopSize:   512,
		MinBPM:    60,
		MaxBPM:    200,
	}
}

// Estimate is the result of one tempo analysis. A zero estimate with zero
// confidence means no periodic onset structure was found, which is a
// valid outcome for silence or steady tones.
type Estimate struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

// Detector estimates beats per minute from the periodicity of spectral
// energy increases. Each Detect call is independent and side-effect free;
// the only shared state is the transform plan cache inside the engine.
type Detector struct {
	cfg    Config
	engine *spectral.Engine
	window []float64
	logger logging.Logger
}

// NewDetector creates a tempo detector with default parameters sharing
// the given transform engine.
func NewDetector(engine *spectral.Engine) *Detector {
	return NewDetectorWithConfig(engine, DefaultConfig())
}

// NewDetectorWithConfig creates a tempo detector with custom parameters
func NewDetectorWithConfig(engine *spectral.Engine, cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		engine: engine,
		window: spectral.NewWindow(spectral.WindowHann, cfg.FrameSize),
		logger: logging.WithFields(logging.Fields{
			"component":  "tempo_detector",
			"frame_size": cfg.FrameSize,
			"hop_size":   cfg.HopSize,
		}),
	}
}

// Detect estimates the tempo of the buffer. Buffers shorter than one
// frame return a zero estimate rather than an error.
func (d *Detector) Detect(ctx context.Context, buf *pcm.SampleBuffer) (Estimate, error) {
	samples := buf.Mono()
	if len(samples) < d.cfg.FrameSize {
		d.logger.Debug("buffer shorter than one frame, skipping tempo analysis", logging.Fields{
			"samples": len(samples),
		})
		return Estimate{}, nil
	}

	envelope, err := d.onsetEnvelope(ctx, samples)
	if err != nil {
		return Estimate{}, err
	}

	est := d.estimateFromEnvelope(envelope, buf.SampleRate)
	d.logger.Debug("tempo analysis completed", logging.Fields{
		"bpm":        est.BPM,
		"confidence": est.Confidence,
		"frames":     len(envelope),
	})
	return est, nil
}

// fluxGate drops flux below this fraction of the previous frame's total
// magnitude. Off-bin steady tones leak a small phase-dependent magnitude
// ripple between frames; without the gate its periodicity reads as a
// confident tempo even though the signal has no onsets.
const fluxGate = 0.01

// onsetEnvelope computes one half-wave rectified spectral flux value per
// frame: the summed per-bin magnitude increase over the previous frame.
func (d *Detector) onsetEnvelope(ctx context.Context, samples []float64) ([]float64, error) {
	numFrames := (len(samples)-d.cfg.FrameSize)/d.cfg.HopSize + 1
	envelope := make([]float64, numFrames)

	frame := make([]float64, d.cfg.FrameSize)
	var prevMag []float64
	prevTotal := 0.0

	for i := 0; i < numFrames; i++ {
		if i%64 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		start := i * d.cfg.HopSize
		spectral.ApplyWindow(frame, samples[start:start+d.cfg.FrameSize], d.window)

		bins, err := d.engine.Transform(frame)
		if err != nil {
			return nil, err
		}

		// Positive frequencies only; the upper half mirrors them.
		mags := spectral.Magnitudes(bins[:d.cfg.FrameSize/2+1])

		total := 0.0
		for _, m := range mags {
			total += m
		}

		if prevMag != nil {
			flux := 0.0
			for k, m := range mags {
				if diff := m - prevMag[k]; diff > 0 {
					flux += diff
				}
			}
			if flux < fluxGate*prevTotal {
				flux = 0
			}
			envelope[i] = flux
		}
		prevMag = mags
		prevTotal = total
	}
	return envelope, nil
}

// estimateFromEnvelope finds the dominant periodicity of the envelope by
// autocorrelation over the lag range implied by the BPM search bounds.
func (d *Detector) estimateFromEnvelope(envelope []float64, sampleRate int) Estimate {
	frameRate := float64(sampleRate) / float64(d.cfg.HopSize)

	minLag := int(math.Round(frameRate * 60 / d.cfg.MaxBPM))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(math.Round(frameRate * 60 / d.cfg.MinBPM))
	if maxLag > len(envelope)-1 {
		maxLag = len(envelope) - 1
	}
	if maxLag < minLag {
		return Estimate{}
	}

	energy := 0.0
	for _, v := range envelope {
		energy += v * v
	}
	if energy == 0 {
		// Degenerate envelope: silence or constant spectrum.
		return Estimate{}
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(envelope); i++ {
			sum += envelope[i] * envelope[i+lag]
		}
		// Strict greater-than keeps the smallest lag on ties, biasing
		// toward the higher tempo of a halving/doubling ambiguity.
		if sum > bestCorr {
			bestCorr = sum
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return Estimate{}
	}

	bpm := 60 * frameRate / float64(bestLag)
	for bpm < d.cfg.MinBPM {
		bpm *= 2
	}
	for bpm > d.cfg.MaxBPM {
		bpm /= 2
	}

	confidence := bestCorr / energy
	if confidence > 1 {
		confidence = 1
	}

	return Estimate{BPM: bpm, Confidence: confidence}
}
