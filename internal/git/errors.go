package git

import (
	"context"
	"errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
)

// classifyCloneError maps go-git failures onto error categories.
func classifyCloneError(url string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := aerrors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())
	var builder *aerrors.ErrorBuilder
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"),
		strings.Contains(l, "invalid username or password"):
		builder = aerrors.AuthError("repository authentication failed")
	case errors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(l, "repository not found"),
		strings.Contains(l, "repository does not exist"):
		builder = aerrors.NotFound("repository not found")
	default:
		builder = aerrors.GitError("failed to clone repository")
	}
	return builder.WithCause(err).WithContext("url", url).Build()
}

// IsTransient reports whether a clone error may succeed when retried.
// Authentication, missing repositories or refs and cancellation are permanent.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return aerrors.HasCategory(err, aerrors.CategoryGit)
}
