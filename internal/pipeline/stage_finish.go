package pipeline

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/observability"
	"git.home.luguber.info/inful/arxivbuilder/internal/staging"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
)

// stagePruneDirectories drops subdirectories whose content is now inlined or moved.
// Ignored figures living in a pruned directory are gone afterwards, so each
// one is logged as a warning and listed in the report.
func stagePruneDirectories(ctx context.Context, bs *BuildState) error {
	removed, err := staging.PruneSubdirs(bs.Dest)
	bs.Report.DirsPruned = len(removed)

	pruned := make(map[string]struct{}, len(removed))
	for _, dir := range removed {
		pruned[filepath.Base(dir)] = struct{}{}
	}
	for _, ref := range bs.ignored {
		top, ok := topDir(ref)
		if !ok {
			continue
		}
		if _, gone := pruned[top]; !gone {
			continue
		}
		bs.Report.IgnoredPruned = append(bs.Report.IgnoredPruned, ref)
		observability.WarnContext(ctx, "Ignored figure removed with its directory",
			logfields.Figure(ref), logfields.Path(filepath.Join(bs.Dest, top)))
	}
	return err
}

// topDir returns the first directory component of a relative reference.
func topDir(ref string) (string, bool) {
	clean := path.Clean(filepath.ToSlash(ref))
	top, _, found := strings.Cut(clean, "/")
	if !found || top == ".." || top == "" {
		return "", false
	}
	return top, true
}

// stageRunToolchain hands the destination to the external build. Failures are
// warnings unless toolchain.fail_on_error is set.
func stageRunToolchain(ctx context.Context, bs *BuildState) error {
	root := filepath.Base(bs.rootPath)
	if err := bs.Runner.Run(ctx, bs.Dest, root); err != nil {
		if bs.Config.Toolchain.FailOnError || ctx.Err() != nil {
			return newFatalStageError(StageRunToolchain, err)
		}
		return newWarnStageError(StageRunToolchain, err)
	}

	archive := toolchain.ArchivePath(bs.Dest)
	if _, err := os.Stat(archive); err == nil {
		bs.Report.Archive = archive
		observability.DebugContext(ctx, "Archive recorded", logfields.File(archive))
	}
	return nil
}
