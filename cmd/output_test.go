package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueprep/cueprep/internal/pipeline"
	"github.com/cueprep/cueprep/pkg/audio/analysis"
	"github.com/cueprep/cueprep/pkg/audio/key"
	"github.com/cueprep/cueprep/pkg/audio/tempo"
)

func sampleReports() []*pipeline.TrackReport {
	return []*pipeline.TrackReport{
		{
			Path: "/music/track.wav",
			Analysis: &analysis.Result{
				Tempo:      tempo.Estimate{BPM: 128.0, Confidence: 0.82},
				Key:        key.Estimate{PitchClass: 9, Mode: key.ModeMinor, Camelot: "8A", Score: 0.91},
				Duration:   3*time.Minute + 42*time.Second,
				SampleRate: 44100,
				Channels:   2,
			},
		},
		{
			Path:            "/music/broken.wav",
			AnalysisSkipped: true,
			AnalysisError:   "buffer too short",
		},
	}
}

func TestRenderReportsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReports(&buf, "json", sampleReports()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "/music/track.wav", decoded[0]["path"])
	assert.NotContains(t, decoded[0], "analysis_skipped")
	assert.Equal(t, true, decoded[1]["analysis_skipped"])
}

func TestRenderReportsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReports(&buf, "yaml", sampleReports()))
	assert.Contains(t, buf.String(), "path: /music/track.wav")
	assert.Contains(t, buf.String(), "camelot: 8A")
}

func TestRenderReportsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReports(&buf, "table", sampleReports()))

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "track.wav")
	assert.Contains(t, out, "128.0")
	assert.Contains(t, out, "A minor")
	assert.Contains(t, out, "8A")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "broken.wav")
	assert.Contains(t, lines[2], "-")
}

func TestRenderReportsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, renderReports(&buf, "csv", sampleReports()))
}

func TestRenderOutputs(t *testing.T) {
	outputs := []string{"out/a.flac", "out/a.mp3"}

	var buf bytes.Buffer
	require.NoError(t, renderOutputs(&buf, "table", outputs))
	assert.Equal(t, "out/a.flac\nout/a.mp3\n", buf.String())

	buf.Reset()
	require.NoError(t, renderOutputs(&buf, "json", outputs))
	var decoded []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, outputs, decoded)
}
