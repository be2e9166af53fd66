package pipeline

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/arxivbuilder/internal/config"
	"git.home.luguber.info/inful/arxivbuilder/internal/git"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/metrics"
	"git.home.luguber.info/inful/arxivbuilder/internal/observability"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
	"git.home.luguber.info/inful/arxivbuilder/internal/workspace"
)

// Options configure one build.
type Options struct {
	// Source is a directory or a repository URL.
	Source string
	// Dest is the directory the submission is assembled in.
	Dest string
	// Force removes a non-empty Dest instead of refusing to build.
	Force bool
	// Ref selects a branch or tag for repository sources.
	Ref    string
	Config *config.Config

	Runner   toolchain.Runner
	Recorder metrics.Recorder
	// WorkspaceBase holds temporary clones. Empty means os.TempDir.
	WorkspaceBase string
}

// Builder runs the build stages for one source and destination.
type Builder struct {
	opts   Options
	stages []StageDef
}

// NewBuilder fills unset options with defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Runner == nil {
		opts.Runner = toolchain.New(opts.Config.Toolchain)
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Builder{opts: opts, stages: defaultStages()}
}

// Run executes the build. The report is always returned; the error is the
// fatal or canceled StageError that stopped the build, if any.
func (b *Builder) Run(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport(b.opts.Source, b.opts.Dest)
	bs := &BuildState{
		Options: b.opts,
		Report:  report,
		Remote:  git.IsRemote(b.opts.Source),
	}
	defer bs.cleanup()

	ctx = observability.WithSource(observability.WithBuildID(ctx, report.BuildID), b.opts.Source)
	observability.InfoContext(ctx, "Build started", logfields.Dest(b.opts.Dest))

	err := runStages(ctx, bs, b.stages)
	report.finish()

	rec := b.opts.Recorder
	rec.ObserveBuildDuration(report.End.Sub(report.Start))
	rec.IncBuildOutcome(string(report.Outcome))
	rec.AddItems(metrics.ItemInputsFused, report.InputsFused)
	rec.AddItems(metrics.ItemFiguresMoved, report.FiguresMoved)
	rec.AddItems(metrics.ItemFiguresIgnored, report.FiguresIgnored)
	rec.AddItems(metrics.ItemArtifactsRemoved, report.ArtifactsRemoved)
	rec.AddItems(metrics.ItemDirsPruned, report.DirsPruned)

	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Outcome(string(report.Outcome)), logfields.Error(err))
		return report, err
	}
	observability.InfoContext(ctx, "Build finished", logfields.Outcome(string(report.Outcome)), slog.String("summary", report.Summary()))
	return report, nil
}

// BuildState carries mutable state across stages.
type BuildState struct {
	Options
	Report *BuildReport
	// Remote is true when Source names a repository.
	Remote bool

	workspace *workspace.Manager
	// fetched is the local tree copied into Dest.
	fetched string
	// rootPath is the root document inside Dest.
	rootPath string
	rootMode os.FileMode
	// text is the root document, read once in locate_root and written once in write_root.
	text string
	// ignored holds figure references left in place by relocate_figures.
	ignored []string
}

func (bs *BuildState) recorder() metrics.Recorder {
	if bs.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return bs.Recorder
}

func (bs *BuildState) cleanup() {
	if bs.workspace == nil {
		return
	}
	if err := bs.workspace.Cleanup(); err != nil {
		slog.Warn("Workspace cleanup failed", logfields.Error(err))
	}
}
