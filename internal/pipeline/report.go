package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BuildOutcome is the final result state of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures what one build did.
type BuildReport struct {
	BuildID     string
	Source      string
	Destination string
	Commit      string // set for repository sources
	Start       time.Time
	End         time.Time

	Errors          []error // fatal or canceled, at most one
	Warnings        []error
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind

	InputsFused      int
	InputsRemoved    int
	FiguresMoved     int
	FigureRefs       int // rewritten \includegraphics references
	FiguresIgnored   int
	ArtifactsRemoved int
	DirsPruned       int
	IgnoredPruned    []string // ignored figure references whose directory was pruned
	Archive          string   // set when the toolchain produced an archive

	Outcome BuildOutcome
}

func newBuildReport(src, dst string) *BuildReport {
	return &BuildReport{
		BuildID:         uuid.NewString(),
		Source:          src,
		Destination:     dst,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

func (r *BuildReport) recordStageError(se *StageError) {
	r.StageErrorKinds[se.Stage] = se.Kind
	if se.Kind == StageErrorWarning {
		r.Warnings = append(r.Warnings, se)
		return
	}
	r.Errors = append(r.Errors, se)
}

func (r *BuildReport) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
			}
		}
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("inputs=%d figures=%d ignored=%d artifacts=%d pruned=%d duration=%s warnings=%d outcome=%s",
		r.InputsFused, r.FiguresMoved, r.FiguresIgnored, r.ArtifactsRemoved, r.DirsPruned,
		dur.Truncate(time.Millisecond), len(r.Warnings), r.Outcome)
}

type reportJSON struct {
	BuildID          string            `json:"build_id"`
	Source           string            `json:"source"`
	Destination      string            `json:"destination"`
	Commit           string            `json:"commit,omitempty"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	Outcome          BuildOutcome      `json:"outcome"`
	Errors           []string          `json:"errors,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
	StageDurationsMS map[string]int64  `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string `json:"stage_error_kinds,omitempty"`
	InputsFused      int               `json:"inputs_fused"`
	InputsRemoved    int               `json:"inputs_removed"`
	FiguresMoved     int               `json:"figures_moved"`
	FigureRefs       int               `json:"figure_refs_rewritten"`
	FiguresIgnored   int               `json:"figures_ignored"`
	ArtifactsRemoved int               `json:"artifacts_removed"`
	DirsPruned       int               `json:"dirs_pruned"`
	IgnoredPruned    []string          `json:"ignored_figures_pruned,omitempty"`
	Archive          string            `json:"archive,omitempty"`
}

// MarshalJSON renders errors as strings and durations as milliseconds.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		BuildID:          r.BuildID,
		Source:           r.Source,
		Destination:      r.Destination,
		Commit:           r.Commit,
		Start:            r.Start,
		End:              r.End,
		Outcome:          r.Outcome,
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		InputsFused:      r.InputsFused,
		InputsRemoved:    r.InputsRemoved,
		FiguresMoved:     r.FiguresMoved,
		FigureRefs:       r.FigureRefs,
		FiguresIgnored:   r.FiguresIgnored,
		ArtifactsRemoved: r.ArtifactsRemoved,
		DirsPruned:       r.DirsPruned,
		IgnoredPruned:    r.IgnoredPruned,
		Archive:          r.Archive,
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	for k, d := range r.StageDurations {
		out.StageDurationsMS[k] = d.Milliseconds()
	}
	if len(r.StageErrorKinds) > 0 {
		out.StageErrorKinds = make(map[string]string, len(r.StageErrorKinds))
		for k, v := range r.StageErrorKinds {
			out.StageErrorKinds[string(k)] = string(v)
		}
	}
	return json.Marshal(out)
}

// Persist writes the report as indented JSON to path, replacing any previous
// file atomically.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.finish()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".build-report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
