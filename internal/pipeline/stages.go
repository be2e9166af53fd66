package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/metrics"
	"git.home.luguber.info/inful/arxivbuilder/internal/observability"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage and its classification.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Errors that are not StageErrors count as fatal.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.recorder()
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.Name, err)
			bs.Report.recordStageError(se)
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		}

		sctx := observability.WithStage(ctx, string(st.Name))
		t0 := time.Now()
		err := st.Fn(sctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur
		rec.ObserveStageDuration(string(st.Name), dur)

		if err == nil {
			observability.DebugContext(sctx, "Stage complete", logfields.Duration(dur))
			rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = newFatalStageError(st.Name, err)
		}
		if se.Kind == StageErrorFatal && ctx.Err() != nil {
			se = newCanceledStageError(st.Name, err)
		}
		bs.Report.recordStageError(se)

		switch se.Kind {
		case StageErrorWarning:
			observability.WarnContext(sctx, "Stage finished with warning", logfields.Error(se.Err))
			rec.IncStageResult(string(st.Name), metrics.ResultWarning)
		case StageErrorCanceled:
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
			rec.IncStageResult(string(st.Name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
