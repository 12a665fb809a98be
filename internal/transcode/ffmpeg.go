package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cueprep/cueprep/pkg/logging"
)

// Format identifies an export codec/container
type Format string

const (
	FormatFLAC Format = "flac"
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatAAC  Format = "aac"
)

// ErrUnsupportedFormat is returned for formats outside the export set
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat validates a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatFLAC:
		return FormatFLAC, nil
	case FormatWAV:
		return FormatWAV, nil
	case FormatMP3:
		return FormatMP3, nil
	case FormatAAC:
		return FormatAAC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension returns the file extension for the format, without the dot
func (f Format) Extension() string {
	if f == FormatAAC {
		return "m4a"
	}
	return string(f)
}

// ExtractOptions controls the decoded PCM layout
type ExtractOptions struct {
	SampleRate int
	Channels   int
}

// ExportOptions controls lossy encoder settings
type ExportOptions struct {
	Bitrate string // e.g. "192k"; ignored for lossless formats
}

// FFmpeg invokes the external ffmpeg binary with explicit argument
// lists. It performs no parsing of media containers itself; all codec
// work happens in the external process.
type FFmpeg struct {
	binPath string
	logger  logging.Logger
}

// NewFFmpeg creates a wrapper around the ffmpeg binary at binPath, or
// "ffmpeg" from PATH when empty.
func NewFFmpeg(binPath string) *FFmpeg {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpeg{
		binPath: binPath,
		logger: logging.WithFields(logging.Fields{
			"component": "transcode",
			"bin":       binPath,
		}),
	}
}

// Available reports whether the ffmpeg binary can be found
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.binPath)
	return err == nil
}

// ExtractPCM decodes any media input into a 16-bit PCM WAV file at
// outPath so the analysis pipeline can read it with the WAV decoder.
func (f *FFmpeg) ExtractPCM(ctx context.Context, inPath, outPath string, opts ExtractOptions) error {
	args := extractArgs(inPath, outPath, opts)
	return f.run(ctx, args)
}

// Export transcodes the input into the requested format next to
// outPath. The argument list is fixed per format; nothing is shell
// interpolated.
func (f *FFmpeg) Export(ctx context.Context, inPath, outPath string, format Format, opts ExportOptions) error {
	args, err := exportArgs(inPath, outPath, format, opts)
	if err != nil {
		return err
	}
	return f.run(ctx, args)
}

// OutputPath derives an export file path from the input name and format
func OutputPath(outDir, inPath string, format Format) string {
	base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	return filepath.Join(outDir, base+"."+format.Extension())
}

func extractArgs(inPath, outPath string, opts ExtractOptions) []string {
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", inPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-f", "wav",
		outPath,
	}
}

func exportArgs(inPath, outPath string, format Format, opts ExportOptions) ([]string, error) {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", inPath,
		"-vn",
	}

	bitrate := opts.Bitrate
	if bitrate == "" {
		bitrate = "192k"
	}

	switch format {
	case FormatFLAC:
		args = append(args, "-c:a", "flac")
	case FormatWAV:
		args = append(args, "-c:a", "pcm_s16le")
	case FormatMP3:
		args = append(args, "-c:a", "libmp3lame", "-b:a", bitrate)
	case FormatAAC:
		args = append(args, "-c:a", "aac", "-b:a", bitrate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return append(args, outPath), nil
}

// run executes ffmpeg and surfaces the tail of stderr on failure, which
// is where ffmpeg reports the actual cause.
func (f *FFmpeg) run(ctx context.Context, args []string) error {
	f.logger.Debug("invoking ffmpeg", logging.Fields{
		"args": strings.Join(args, " "),
	})

	cmd := exec.CommandContext(ctx, f.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		if msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
