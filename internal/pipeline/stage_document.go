package pipeline

import (
	"context"
	"os"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/observability"
	"git.home.luguber.info/inful/arxivbuilder/internal/texsplice"
)

func stageFuseInputs(ctx context.Context, bs *BuildState) error {
	out, res, err := texsplice.FuseInputs(bs.Dest, bs.text)
	if err != nil {
		return err
	}
	bs.text = out
	bs.Report.InputsFused = len(res.Inlined)
	bs.Report.InputsRemoved = len(res.Removed)
	observability.DebugContext(ctx, "Fused inputs", logfields.Count(len(res.Inlined)))
	return nil
}

func stageRelocateFigures(ctx context.Context, bs *BuildState) error {
	ignore := texsplice.NewIgnoreSet(bs.Config.IgnoreImages...)
	if ignore.Len() > 0 {
		observability.DebugContext(ctx, "Figure ignore list", logfields.Count(ignore.Len()))
	}
	out, res, err := texsplice.RelocateFigures(bs.Dest, bs.text, ignore)
	if err != nil {
		return err
	}
	bs.text = out
	bs.Report.FiguresMoved = len(res.Moved)
	bs.Report.FigureRefs = res.Rewritten
	bs.Report.FiguresIgnored = len(res.Ignored)
	bs.ignored = res.Ignored
	for _, name := range res.Ignored {
		observability.DebugContext(ctx, "Figure left in place", logfields.Figure(name))
	}
	return nil
}

func stageAppendHint(_ context.Context, bs *BuildState) error {
	bs.text = texsplice.AppendRerunHint(bs.text)
	return nil
}

func stageWriteRoot(ctx context.Context, bs *BuildState) error {
	if err := os.WriteFile(bs.rootPath, []byte(bs.text), bs.rootMode); err != nil {
		return aerrors.FileSystemError("cannot write root document").WithCause(err).WithPath(bs.rootPath).Build()
	}
	observability.InfoContext(ctx, "Root document written", logfields.File(bs.rootPath))
	return nil
}
