package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/git"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/observability"
	"git.home.luguber.info/inful/arxivbuilder/internal/retry"
	"git.home.luguber.info/inful/arxivbuilder/internal/staging"
	"git.home.luguber.info/inful/arxivbuilder/internal/workspace"
)

// stagePrepareDestination validates the source and guards the destination.
// Nothing is copied or written before it succeeds.
func stagePrepareDestination(_ context.Context, bs *BuildState) error {
	if !bs.Remote {
		info, err := os.Stat(bs.Source)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return aerrors.NotFound("source directory not found").WithCause(err).WithPath(bs.Source).Build()
		case err != nil:
			return aerrors.FileSystemError("cannot inspect source").WithCause(err).WithPath(bs.Source).Build()
		case !info.IsDir():
			return aerrors.ValidationError("source is not a directory").WithPath(bs.Source).Build()
		}
		if err := staging.CheckDisjoint(bs.Source, bs.Dest); err != nil {
			return err
		}
	}
	return staging.PrepareDestination(bs.Dest, bs.Force)
}

// stageFetchSource copies the source tree into the destination, cloning it
// into a temporary workspace first when it is a repository.
func stageFetchSource(ctx context.Context, bs *BuildState) error {
	bs.fetched = bs.Source
	if bs.Remote {
		if err := cloneSource(ctx, bs); err != nil {
			return err
		}
	}
	observability.DebugContext(ctx, "Copying source tree", logfields.Path(bs.fetched), logfields.Dest(bs.Dest))
	return staging.CopyTree(bs.fetched, bs.Dest)
}

func cloneSource(ctx context.Context, bs *BuildState) error {
	bs.workspace = workspace.NewManager(bs.WorkspaceBase)
	if err := bs.workspace.Create(); err != nil {
		return aerrors.FileSystemError("cannot create workspace").WithCause(err).Build()
	}

	gc := bs.Config.Git
	ref := bs.Ref
	if ref == "" {
		ref = gc.Ref
	}
	src := git.Source{
		URL:      bs.Source,
		Ref:      ref,
		Depth:    gc.Depth,
		Token:    os.Getenv(gc.TokenEnv),
		Username: gc.Username,
	}

	client := git.NewClient(bs.workspace.GetPath())
	policy := retry.NewPolicy(retry.Backoff(gc.RetryBackoff), gc.RetryDelay, gc.RetryMaxDelay, gc.Retries)
	var res git.CloneResult
	err := policy.Do(ctx, git.IsTransient, func(attempt int) error {
		if attempt > 0 {
			observability.WarnContext(ctx, "Retrying clone", logfields.URL(src.URL), slog.Int("attempt", attempt))
		}
		t0 := time.Now()
		var cerr error
		res, cerr = client.Clone(ctx, src)
		bs.recorder().ObserveCloneDuration(time.Since(t0), cerr == nil)
		return cerr
	})
	if err != nil {
		return err
	}
	bs.fetched = res.Path
	bs.Report.Commit = res.Commit
	return nil
}

// stageCleanArtifacts removes version control metadata and build products.
func stageCleanArtifacts(ctx context.Context, bs *BuildState) error {
	removed, err := staging.RemoveArtifacts(bs.Dest, bs.Config.CleanPatterns)
	bs.Report.ArtifactsRemoved = len(removed)
	if err != nil {
		return err
	}
	observability.DebugContext(ctx, "Removed artifacts", logfields.Count(len(removed)))
	return nil
}

// stageLocateRoot requires the root document and reads it.
func stageLocateRoot(_ context.Context, bs *BuildState) error {
	root, err := staging.RequireRoot(bs.Dest, bs.Config.RootDocument)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return aerrors.FileSystemError("cannot inspect root document").WithCause(err).WithPath(root).Build()
	}
	data, err := os.ReadFile(root)
	if err != nil {
		return aerrors.FileSystemError("cannot read root document").WithCause(err).WithPath(root).Build()
	}
	bs.rootPath = root
	bs.rootMode = info.Mode().Perm()
	bs.text = string(data)
	return nil
}
