package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cueprep/cueprep/pkg/audio/key"
	"github.com/cueprep/cueprep/pkg/audio/pcm"
	"github.com/cueprep/cueprep/pkg/audio/spectral"
	"github.com/cueprep/cueprep/pkg/audio/tempo"
	"github.com/cueprep/cueprep/pkg/logging"
)

// Result bundles the playback metadata extracted from one buffer
type Result struct {
	Tempo      tempo.Estimate `json:"tempo" yaml:"tempo"`
	Key        key.Estimate   `json:"key" yaml:"key"`
	Duration   time.Duration  `json:"duration" yaml:"duration"`
	SampleRate int            `json:"sample_rate" yaml:"sample_rate"`
	Channels   int            `json:"channels" yaml:"channels"`
}

// Analyzer runs the tempo and key detectors concurrently over one
// immutable sample buffer. Both detectors share a single transform
// engine; its plan cache is the only state touched by both goroutines
// and is safe for concurrent get-or-create access.
type Analyzer struct {
	engine *spectral.Engine
	tempo  *tempo.Detector
	key    *key.Detector
	logger logging.Logger
}

// NewAnalyzer creates an analyzer with default detector parameters
func NewAnalyzer() *Analyzer {
	engine := spectral.NewEngine()
	return &Analyzer{
		engine: engine,
		tempo:  tempo.NewDetector(engine),
		key:    key.NewDetector(engine),
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
}

// NewAnalyzerWithConfig creates an analyzer with custom detector
// parameters.
func NewAnalyzerWithConfig(tempoCfg tempo.Config, keyCfg key.Config) *Analyzer {
	engine := spectral.NewEngine()
	return &Analyzer{
		engine: engine,
		tempo:  tempo.NewDetectorWithConfig(engine, tempoCfg),
		key:    key.NewDetectorWithConfig(engine, keyCfg),
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
}

// Analyze runs both detectors and joins their results. Cancelling the
// context abandons both; the shared plan cache stays valid because plans
// are immutable and inserts are append-only.
func (a *Analyzer) Analyze(ctx context.Context, buf *pcm.SampleBuffer) (*Result, error) {
	start := time.Now()
	result := &Result{
		Duration:   buf.Duration(),
		SampleRate: buf.SampleRate,
		Channels:   buf.NumChannels(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		est, err := a.tempo.Detect(ctx, buf)
		if err != nil {
			return err
		}
		result.Tempo = est
		return nil
	})
	g.Go(func() error {
		est, err := a.key.Detect(ctx, buf)
		if err != nil {
			return err
		}
		result.Key = est
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("analysis completed", logging.Fields{
		"bpm":         result.Tempo.BPM,
		"key":         result.Key.Name(),
		"duration_s":  result.Duration.Seconds(),
		"analysis_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}
