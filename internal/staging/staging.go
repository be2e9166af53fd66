package staging

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// VCSDir is removed from the top of the destination after copying.
const VCSDir = ".git"

// DefaultArtifactPatterns match generated LaTeX build products by base name.
var DefaultArtifactPatterns = []string{
	"*.aux", "*.log", "*.bbl", "*.blg", "*.fdb_latexmk", "*.fls", "*.out",
	"root.pdf", "*.xml", "root-blx.bib",
}

// PrepareDestination guards dst before anything is copied. A destination
// that exists and is not empty is refused unless force is set, in which case
// it is removed.
func PrepareDestination(dst string, force bool) error {
	entries, err := os.ReadDir(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return aerrors.FileSystemError("cannot inspect destination").WithCause(err).WithPath(dst).Build()
	}

	if len(entries) > 0 && !force {
		return aerrors.AlreadyExists("destination already exists, use -f to force delete").WithPath(dst).Build()
	}
	if err := os.RemoveAll(dst); err != nil {
		return aerrors.FileSystemError("cannot remove destination").WithCause(err).WithPath(dst).Build()
	}
	if len(entries) > 0 {
		slog.Info("Removed existing destination", logfields.Path(dst), logfields.Count(len(entries)))
	}
	return nil
}

// CopyTree recursively copies src into dst, preserving file modes.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return wrapFS(err, "cannot read source directory", src)
	}
	if !srcInfo.IsDir() {
		return aerrors.ValidationError("source is not a directory").WithPath(src).Build()
	}
	if err := copyDir(src, dst, srcInfo.Mode()); err != nil {
		return wrapFS(err, "copy source tree", src)
	}
	return nil
}

func copyDir(src, dst string, mode fs.FileMode) error {
	if err := os.MkdirAll(dst, mode.Perm()|0o700); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return err
		}
		switch {
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath, info.Mode()); err != nil {
				return err
			}
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return err
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath, info.Mode()); err != nil {
				return err
			}
		default:
			slog.Debug("Skipping irregular file", logfields.Path(srcPath))
		}
	}
	return nil
}

// copyFile copies a single file from src to dst.
func copyFile(src, dst string, mode fs.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, mode.Perm())
}

// RemoveArtifacts deletes dir/.git and every file below dir whose base name
// matches one of patterns. It returns the removed paths.
func RemoveArtifacts(dir string, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, aerrors.ConfigError("invalid artifact pattern").WithCause(err).WithContext("pattern", p).Build()
		}
	}

	var removed []string
	vcs := filepath.Join(dir, VCSDir)
	if _, err := os.Lstat(vcs); err == nil {
		if err := os.RemoveAll(vcs); err != nil {
			return removed, wrapFS(err, "cannot remove version control metadata", vcs)
		}
		removed = append(removed, vcs)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !matchesAny(d.Name(), patterns) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed = append(removed, path)
		slog.Debug("Removed build artifact", logfields.Path(path))
		return nil
	})
	if err != nil {
		return removed, wrapFS(err, "cannot remove build artifacts", dir)
	}
	return removed, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// RequireRoot returns the path of the root document inside dir, failing when
// it is absent.
func RequireRoot(dir, name string) (string, error) {
	root := filepath.Join(dir, name)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", aerrors.NotFound("expected to find root document").
				WithCause(err).
				WithPath(root).
				Build()
		}
		return "", wrapFS(err, "cannot inspect root document", root)
	}
	if info.IsDir() {
		return "", aerrors.ValidationError("root document is a directory").WithPath(root).Build()
	}
	return root, nil
}

// PruneSubdirs removes every directory directly below dir and returns the
// removed paths.
func PruneSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapFS(err, "cannot list destination", dir)
	}
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, wrapFS(err, "cannot remove subdirectory", path)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

func wrapFS(err error, message, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return aerrors.NotFound(message).WithCause(err).WithPath(path).Build()
	}
	return aerrors.FileSystemError(message).WithCause(err).WithPath(path).Build()
}

// CheckDisjoint refuses overlapping trees. A destination equal to or nested
// inside the source would be copied into itself, and a source nested inside
// the destination would be deleted when a forced build clears it.
func CheckDisjoint(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return wrapFS(err, "cannot resolve source", src)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return wrapFS(err, "cannot resolve destination", dst)
	}
	if within(absSrc, absDst) {
		return aerrors.ValidationError("destination must not be inside the source directory").
			WithContext("source", absSrc).
			WithContext("destination", absDst).
			Build()
	}
	if within(absDst, absSrc) {
		return aerrors.ValidationError("source must not be inside the destination directory").
			WithContext("source", absSrc).
			WithContext("destination", absDst).
			Build()
	}
	return nil
}

// within reports whether path is base or lies below it.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
