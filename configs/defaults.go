package configs

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "table")
	}

	// Transcoder defaults
	if !v.IsSet("ffmpeg.path") {
		v.Set("ffmpeg.path", "ffmpeg")
	}
	if !v.IsSet("ffmpeg.timeout") {
		v.Set("ffmpeg.timeout", 5*time.Minute)
	}

	// Analysis audio layout defaults
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 44100)
	}
	if !v.IsSet("audio.channels") {
		v.Set("audio.channels", 2)
	}

	// Export defaults
	if !v.IsSet("export.formats") {
		v.Set("export.formats", []string{"flac"})
	}
	if !v.IsSet("export.bitrate") {
		v.Set("export.bitrate", "192k")
	}
	if !v.IsSet("export.output_dir") {
		v.Set("export.output_dir", ".")
	}

	// Waveform defaults
	if !v.IsSet("waveform.buckets") {
		v.Set("waveform.buckets", 800)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		FFmpeg: FFmpegConfig{
			Path:    "ffmpeg",
			Timeout: 5 * time.Minute,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
		},
		Export: ExportConfig{
			Formats:   []string{"flac"},
			Bitrate:   "192k",
			OutputDir: ".",
		},
		Waveform: WaveformConfig{
			Buckets: 800,
		},
	}
}
