package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cueprep/cueprep/internal/transcode"
	"github.com/cueprep/cueprep/pkg/audio/analysis"
	"github.com/cueprep/cueprep/pkg/audio/decode"
	"github.com/cueprep/cueprep/pkg/audio/waveform"
	"github.com/cueprep/cueprep/pkg/logging"
)

// EngineConfig contains configuration for the preparation engine
type EngineConfig struct {
	FFmpegPath string
	SampleRate int
	Channels   int

	// WaveformBuckets selects the overview resolution; zero skips the
	// waveform stage entirely.
	WaveformBuckets int

	Observer Observer
	Logger   logging.Logger
}

// Engine drives the preparation pipeline for one track at a time:
// extract PCM with the external transcoder, decode it, analyze tempo
// and key concurrently, and reduce waveform peaks. It owns no state
// across Prepare calls.
type Engine struct {
	transcoder      *transcode.FFmpeg
	analyzer        *analysis.Analyzer
	sampleRate      int
	channels        int
	waveformBuckets int
	observer        Observer
	logger          logging.Logger
}

// TrackReport is the full result of preparing one track
type TrackReport struct {
	Path     string           `json:"path" yaml:"path"`
	Analysis *analysis.Result `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Waveform []float64        `json:"waveform,omitempty" yaml:"waveform,omitempty"`

	// AnalysisSkipped is set when detectors failed or were skipped;
	// the track is still usable, its tempo/key are just unknown.
	AnalysisSkipped bool   `json:"analysis_skipped,omitempty" yaml:"analysis_skipped,omitempty"`
	AnalysisError   string `json:"analysis_error,omitempty" yaml:"analysis_error,omitempty"`

	ExtractTime time.Duration `json:"extract_time" yaml:"extract_time"`
	AnalyzeTime time.Duration `json:"analyze_time" yaml:"analyze_time"`
}

// NewEngine creates a preparation engine
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{"component": "pipeline"})
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	channels := cfg.Channels
	if channels <= 0 {
		channels = 1
	}
	return &Engine{
		transcoder:      transcode.NewFFmpeg(cfg.FFmpegPath),
		analyzer:        analysis.NewAnalyzer(),
		sampleRate:      sampleRate,
		channels:        channels,
		waveformBuckets: cfg.WaveformBuckets,
		observer:        observer,
		logger:          logger,
	}
}

// Prepare runs the full pipeline for one media file. Analysis failures
// degrade to an "unknown" report rather than failing the run; only
// infrastructure errors (transcoder, decoder, cancellation) abort.
func (e *Engine) Prepare(ctx context.Context, path string) (*TrackReport, error) {
	report := &TrackReport{Path: path}

	e.logger.Debug("starting track preparation", logging.Fields{
		"path": path,
	})

	wavPath, cleanup, extractTime, err := e.extract(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	report.ExtractTime = extractTime

	e.observer.OnStage(StageDecode)
	buf, err := decode.ReadWAVFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	e.observer.OnStage(StageAnalyze)
	analyzeStart := time.Now()
	result, err := e.analyzer.Analyze(ctx, buf)
	report.AnalyzeTime = time.Since(analyzeStart)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Tempo/key unknown is a valid outcome; keep the track.
		e.logger.Warn("analysis failed, reporting track without tempo/key", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		report.AnalysisSkipped = true
		report.AnalysisError = err.Error()
	} else {
		report.Analysis = result
	}

	if e.waveformBuckets > 0 {
		e.observer.OnStage(StageWaveform)
		report.Waveform = waveform.Peaks(buf, e.waveformBuckets)
	}

	e.logger.Debug("track preparation completed", logging.Fields{
		"path":       path,
		"extract_ms": report.ExtractTime.Milliseconds(),
		"analyze_ms": report.AnalyzeTime.Milliseconds(),
	})
	return report, nil
}

// Export transcodes the input into each requested format under outDir
// and returns the created paths.
func (e *Engine) Export(ctx context.Context, path, outDir string, formats []transcode.Format, opts transcode.ExportOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	e.observer.OnStage(StageExport)
	outputs := make([]string, 0, len(formats))
	for i, format := range formats {
		outPath := transcode.OutputPath(outDir, path, format)
		if err := e.transcoder.Export(ctx, path, outPath, format, opts); err != nil {
			return outputs, fmt.Errorf("export %s as %s: %w", path, format, err)
		}
		outputs = append(outputs, outPath)
		e.observer.OnProgress(StageExport, float64(i+1)/float64(len(formats)))

		e.logger.Debug("export completed", logging.Fields{
			"input":  path,
			"output": outPath,
			"format": string(format),
		})
	}
	return outputs, nil
}

// extract produces a PCM WAV for the decoder. WAV inputs are used
// directly; anything else goes through the external transcoder into a
// temp file the returned cleanup removes.
func (e *Engine) extract(ctx context.Context, path string) (string, func(), time.Duration, error) {
	nop := func() {}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path, nop, 0, nil
	}

	e.observer.OnStage(StageExtract)
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "cueprep-")
	if err != nil {
		return "", nop, 0, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	wavPath := filepath.Join(tmpDir, "extracted.wav")
	err = e.transcoder.ExtractPCM(ctx, path, wavPath, transcode.ExtractOptions{
		SampleRate: e.sampleRate,
		Channels:   e.channels,
	})
	if err != nil {
		cleanup()
		return "", nop, 0, fmt.Errorf("extract audio from %s: %w", path, err)
	}
	return wavPath, cleanup, time.Since(start), nil
}
