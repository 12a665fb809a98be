package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueprep/cueprep/internal/transcode"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.False(t, cfg.Verbose)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, 5*time.Minute, cfg.FFmpeg.Timeout)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 2, cfg.Audio.Channels)
	assert.Equal(t, []string{"flac"}, cfg.Export.Formats)
	assert.Equal(t, "192k", cfg.Export.Bitrate)
	assert.Equal(t, 800, cfg.Waveform.Buckets)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "debug")
	v.Set("output_format", "json")
	v.Set("audio.sample_rate", 48000)
	v.Set("audio.channels", 1)
	v.Set("export.formats", []string{"wav", "mp3"})

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 1, cfg.Audio.Channels)
	assert.Equal(t, []string{"wav", "mp3"}, cfg.Export.Formats)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad output format", func(c *Config) { c.OutputFormat = "xml" }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"too many channels", func(c *Config) { c.Audio.Channels = 6 }},
		{"unknown export format", func(c *Config) { c.Export.Formats = []string{"ogg"} }},
		{"zero waveform buckets", func(c *Config) { c.Waveform.Buckets = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExportFormats(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Export.Formats = []string{"flac", "mp3"}
	require.NoError(t, cfg.Validate())

	formats := cfg.ExportFormats()
	assert.Equal(t, []transcode.Format{transcode.FormatFLAC, transcode.FormatMP3}, formats)
}

func TestGetDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, GetDefaultConfig().Validate())
}
