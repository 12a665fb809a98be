package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cueprep/cueprep/internal/pipeline"
	"github.com/cueprep/cueprep/internal/transcode"
	"github.com/cueprep/cueprep/pkg/logging"
)

var (
	// Convert command flags
	convertFormats []string
	convertBitrate string
	convertOutDir  string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [flags] files...",
	Short: "Export audio files to deck-friendly formats",
	Long: `Convert one or more audio files to the given export formats
using ffmpeg.

Supported formats: flac, wav, mp3, aac.

Examples:
  # Export to FLAC (the default)
  cueprep convert track.wav

  # Export to multiple formats into a directory
  cueprep convert --format flac,mp3 --out-dir ./export *.wav

  # Control the lossy encoder bitrate
  cueprep convert --format mp3 --bitrate 320k track.flac`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringSliceVarP(&convertFormats, "format", "f", nil,
		"export formats (default from config)")
	convertCmd.Flags().StringVar(&convertBitrate, "bitrate", "",
		"lossy encoder bitrate, e.g. 192k (default from config)")
	convertCmd.Flags().StringVar(&convertOutDir, "out-dir", "",
		"output directory (default from config)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.Export.Formats
	if len(convertFormats) > 0 {
		names = convertFormats
	}
	formats := make([]transcode.Format, 0, len(names))
	for _, name := range names {
		f, err := transcode.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	bitrate := cfg.Export.Bitrate
	if convertBitrate != "" {
		bitrate = convertBitrate
	}
	outDir := cfg.Export.OutputDir
	if convertOutDir != "" {
		outDir = convertOutDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := logging.Default()
	engine := pipeline.NewEngine(&pipeline.EngineConfig{
		FFmpegPath: cfg.FFmpeg.Path,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Logger:     logger,
	})

	var outputs []string
	for _, path := range args {
		out, err := engine.Export(cmd.Context(), path, outDir, formats,
			transcode.ExportOptions{Bitrate: bitrate})
		if err != nil {
			return fmt.Errorf("convert %s: %w", path, err)
		}
		outputs = append(outputs, out...)
	}

	return renderOutputs(os.Stdout, viper.GetString("output_format"), outputs)
}
