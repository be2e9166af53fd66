// Package testutils builds LaTeX project trees and git repositories for tests.
package testutils

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// WriteTree creates files below root. Keys are slash-separated relative paths.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// RequireGit skips the test when no git binary is installed. go-git's
// file transport shells out to git-upload-pack for local clones.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// InitRepo initializes a repository at path and commits files to it.
func InitRepo(t *testing.T, path string, files map[string]string) (*git.Repository, plumbing.Hash) {
	t.Helper()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)
	return repo, Commit(t, repo, path, files)
}

// Commit writes files into the worktree at path and commits them.
func Commit(t *testing.T, repo *git.Repository, path string, files map[string]string) plumbing.Hash {
	t.Helper()
	WriteTree(t, path, files)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err = wt.Add(name)
		require.NoError(t, err)
	}
	h, err := wt.Commit("update "+names[0], &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h
}

// FileURL returns a file:// URL for a local repository path.
func FileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}
