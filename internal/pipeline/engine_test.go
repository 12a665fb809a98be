package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver collects stage notifications for assertions
type recordingObserver struct {
	stages   []string
	progress []float64
}

func (o *recordingObserver) OnStage(stage string) {
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) OnProgress(_ string, fraction float64) {
	o.progress = append(o.progress, fraction)
}

func writeToneWAV(t *testing.T, sampleRate int, freq float64, seconds float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	frames := int(seconds * float64(sampleRate))
	data := make([]int, frames)
	for i := range data {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestPrepareWAVInput(t *testing.T) {
	observer := &recordingObserver{}
	engine := NewEngine(&EngineConfig{
		Observer:        observer,
		WaveformBuckets: 100,
	})

	path := writeToneWAV(t, 48000, 110, 5)
	report, err := engine.Prepare(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, report.Analysis)
	assert.False(t, report.AnalysisSkipped)
	assert.Equal(t, 9, report.Analysis.Key.PitchClass, "110 Hz is pitch class A")
	assert.Less(t, report.Analysis.Tempo.Confidence, 0.05)
	assert.Equal(t, 48000, report.Analysis.SampleRate)
	assert.Len(t, report.Waveform, 100)

	// WAV input skips the extract stage entirely.
	assert.Equal(t, []string{StageDecode, StageAnalyze, StageWaveform}, observer.stages)
	assert.Zero(t, report.ExtractTime)
}

func TestPrepareMissingFile(t *testing.T) {
	engine := NewEngine(&EngineConfig{})

	_, err := engine.Prepare(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestPrepareCancellation(t *testing.T) {
	engine := NewEngine(&EngineConfig{})
	path := writeToneWAV(t, 48000, 110, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Prepare(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
