package git

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// Source describes a repository to fetch.
type Source struct {
	URL string
	// Ref is a branch or tag name. Empty means the remote HEAD.
	Ref string
	// Depth limits history. Zero clones everything.
	Depth int
	// Token, when set, is sent as HTTP basic auth.
	Token    string
	Username string
}

// auth returns token basic auth, or nil when no token is configured.
func (s Source) auth() *http.BasicAuth {
	if s.Token == "" {
		return nil
	}
	user := s.Username
	if user == "" {
		user = "x-access-token"
	}
	return &http.BasicAuth{Username: user, Password: s.Token}
}

// CloneResult is where a source ended up and which commit was checked out.
type CloneResult struct {
	Path   string
	Commit string
}

// Client clones sources below a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a Git client that clones into workspaceDir.
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// Clone fetches src into a fresh directory inside the workspace.
func (c *Client) Clone(ctx context.Context, src Source) (CloneResult, error) {
	repoPath := filepath.Join(c.workspaceDir, RepoName(src.URL))
	slog.Debug("Cloning repository", logfields.URL(src.URL), slog.String("ref", src.Ref), logfields.Path(repoPath))

	if err := os.RemoveAll(repoPath); err != nil {
		return CloneResult{}, aerrors.FileSystemError("failed to remove existing clone directory").
			WithCause(err).WithPath(repoPath).Build()
	}

	opts := &git.CloneOptions{URL: src.URL, Depth: src.Depth}
	if auth := src.auth(); auth != nil {
		opts.Auth = auth
	}

	repo, err := c.cloneRef(ctx, repoPath, opts, src.Ref)
	if err != nil {
		return CloneResult{}, classifyCloneError(src.URL, err)
	}

	res := CloneResult{Path: repoPath}
	if head, herr := repo.Head(); herr == nil {
		res.Commit = head.Hash().String()
		slog.Info("Repository cloned", logfields.URL(src.URL), logfields.Commit(res.Commit[:8]), logfields.Path(repoPath))
	} else {
		slog.Info("Repository cloned", logfields.URL(src.URL), logfields.Path(repoPath))
	}
	return res, nil
}

// cloneRef tries ref as a branch first and then as a tag.
func (c *Client) cloneRef(ctx context.Context, path string, opts *git.CloneOptions, ref string) (*git.Repository, error) {
	if ref == "" {
		return git.PlainCloneContext(ctx, path, false, opts)
	}

	opts.SingleBranch = true
	opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	repo, err := git.PlainCloneContext(ctx, path, false, opts)
	if err == nil || !isMissingRef(err) {
		return repo, err
	}

	slog.Debug("Branch not found, trying tag", slog.String("ref", ref))
	if rmErr := os.RemoveAll(path); rmErr != nil {
		return nil, rmErr
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(ref)
	repo, err = git.PlainCloneContext(ctx, path, false, opts)
	if err != nil && isMissingRef(err) {
		return nil, aerrors.NotFound("reference not found").WithCause(err).WithContext("ref", ref).Build()
	}
	return repo, err
}

func isMissingRef(err error) bool {
	var noMatch git.NoMatchingRefSpecError
	return errors.As(err, &noMatch) ||
		errors.Is(err, plumbing.ErrReferenceNotFound)
}
