package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Item kinds counted per build.
const (
	ItemInputsFused      = "inputs_fused"
	ItemFiguresMoved     = "figures_moved"
	ItemFiguresIgnored   = "figures_ignored"
	ItemArtifactsRemoved = "artifacts_removed"
	ItemDirsPruned       = "dirs_pruned"
)

// Recorder defines observability hooks for builds and their stages.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // success|warning|failed|canceled
	ObserveCloneDuration(d time.Duration, success bool)
	AddItems(kind string, n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) ObserveCloneDuration(time.Duration, bool)   {}
func (NoopRecorder) AddItems(string, int)                       {}
