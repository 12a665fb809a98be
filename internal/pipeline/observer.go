package pipeline

// Observer receives stage and progress notifications from the pipeline.
// The analysis packages never depend on it; only this orchestration
// layer calls out, so a caller that doesn't care passes NopObserver.
type Observer interface {
	OnStage(stage string)
	OnProgress(stage string, fraction float64)
}

// NopObserver ignores all notifications
type NopObserver struct{}

func (NopObserver) OnStage(string)             {}
func (NopObserver) OnProgress(string, float64) {}

// Pipeline stage names reported to observers
const (
	StageExtract  = "extract"
	StageDecode   = "decode"
	StageAnalyze  = "analyze"
	StageWaveform = "waveform"
	StageExport   = "export"
)
