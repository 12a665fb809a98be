package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cueprep/cueprep/internal/pipeline"
	"github.com/cueprep/cueprep/pkg/logging"
)

var (
	// Analyze command flags
	analyzeWaveform bool
	analyzeBuckets  int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] files...",
	Short: "Analyze tempo and key of audio files",
	Long: `Analyze one or more audio files for tempo (BPM) and musical key.

Non-WAV inputs are first transcoded to PCM with ffmpeg. The detected
key is reported with its Camelot code for harmonic mixing.

Examples:
  # Analyze a single track
  cueprep analyze track.flac

  # Analyze a batch and emit JSON
  cueprep analyze --output json *.mp3

  # Include a waveform overview in the report
  cueprep analyze --waveform --buckets 400 track.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeWaveform, "waveform", false,
		"include waveform overview peaks in the report")
	analyzeCmd.Flags().IntVar(&analyzeBuckets, "buckets", 0,
		"waveform bucket count (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.Default()

	buckets := 0
	if analyzeWaveform {
		buckets = cfg.Waveform.Buckets
		if analyzeBuckets > 0 {
			buckets = analyzeBuckets
		}
	}

	engine := pipeline.NewEngine(&pipeline.EngineConfig{
		FFmpegPath:      cfg.FFmpeg.Path,
		SampleRate:      cfg.Audio.SampleRate,
		Channels:        cfg.Audio.Channels,
		WaveformBuckets: buckets,
		Logger:          logger,
	})

	reports := make([]*pipeline.TrackReport, 0, len(args))
	var failed int
	for _, path := range args {
		report, err := prepareOne(cmd.Context(), engine, cfg.FFmpeg.Timeout, path)
		if err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			logger.Error("analysis failed", logging.Fields{
				"file":  path,
				"error": err.Error(),
			})
			failed++
			continue
		}
		reports = append(reports, report)
	}

	if len(reports) > 0 {
		if err := renderReports(os.Stdout, viper.GetString("output_format"), reports); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// prepareOne runs the pipeline for a single file under the configured
// transcoder timeout
func prepareOne(ctx context.Context, engine *pipeline.Engine, timeout time.Duration, path string) (*pipeline.TrackReport, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return engine.Prepare(ctx, path)
}
