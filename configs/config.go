package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/cueprep/cueprep/internal/transcode"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// External transcoder settings
	FFmpeg FFmpegConfig `mapstructure:"ffmpeg"`

	// Decoded audio layout for analysis
	Audio AudioConfig `mapstructure:"audio"`

	// Export settings
	Export ExportConfig `mapstructure:"export"`

	// Waveform overview settings
	Waveform WaveformConfig `mapstructure:"waveform"`
}

// FFmpegConfig contains settings for the external transcoding engine
type FFmpegConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AudioConfig contains the PCM layout used for analysis. Detector
// internals (frame sizes, search ranges, frequency thresholds) are
// build-time defaults in their packages, not user-facing settings.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`
}

// ExportConfig contains export artifact settings
type ExportConfig struct {
	Formats   []string `mapstructure:"formats"`
	Bitrate   string   `mapstructure:"bitrate"`
	OutputDir string   `mapstructure:"output_dir"`
}

// WaveformConfig contains waveform overview settings
type WaveformConfig struct {
	Buckets int `mapstructure:"buckets"`
}

// LoadConfig builds a validated Config from the viper instance
func LoadConfig(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.OutputFormat {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("invalid output_format %q", c.OutputFormat)
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}

	for _, name := range c.Export.Formats {
		if _, err := transcode.ParseFormat(name); err != nil {
			return fmt.Errorf("export.formats: %w", err)
		}
	}

	if c.Waveform.Buckets <= 0 {
		return fmt.Errorf("waveform.buckets must be positive, got %d", c.Waveform.Buckets)
	}
	return nil
}

// ExportFormats returns the configured formats parsed into the
// transcoder's type. Validate must have passed first.
func (c *Config) ExportFormats() []transcode.Format {
	formats := make([]transcode.Format, 0, len(c.Export.Formats))
	for _, name := range c.Export.Formats {
		f, err := transcode.ParseFormat(name)
		if err != nil {
			continue
		}
		formats = append(formats, f)
	}
	return formats
}
