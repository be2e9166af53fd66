package texsplice

import (
	"errors"
	"io/fs"
	"path/filepath"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
)

// fileError classifies an I/O failure on path. Missing files keep
// fs.ErrNotExist reachable through the chain.
func fileError(err error, message, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return aerrors.NotFound(message).WithCause(err).WithPath(path).Build()
	}
	return aerrors.FileSystemError(message).WithCause(err).WithPath(path).Build()
}

// checkLocal rejects a reference that would resolve outside the document
// directory: absolute paths, ".." escapes and empty names.
func checkLocal(ref, kind string) error {
	if filepath.IsLocal(filepath.FromSlash(ref)) {
		return nil
	}
	return aerrors.ValidationError(kind+" reference escapes the document directory").
		WithContext("reference", ref).
		WithPath(ref).
		Build()
}
