package git

import (
	"context"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
)

// RemoteHead returns the commit src.Ref (or the remote HEAD) points at
// without cloning.
func (c *Client) RemoteHead(ctx context.Context, src Source) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{src.URL},
	})

	opts := &git.ListOptions{}
	if auth := src.auth(); auth != nil {
		opts.Auth = auth
	}
	refs, err := remote.ListContext(ctx, opts)
	if err != nil {
		return "", classifyCloneError(src.URL, err)
	}

	byName := make(map[plumbing.ReferenceName]*plumbing.Reference, len(refs))
	for _, ref := range refs {
		byName[ref.Name()] = ref
	}

	var wanted []plumbing.ReferenceName
	if src.Ref == "" {
		wanted = []plumbing.ReferenceName{plumbing.HEAD}
	} else {
		wanted = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(src.Ref),
			plumbing.NewTagReferenceName(src.Ref),
		}
	}

	for _, name := range wanted {
		ref, ok := byName[name]
		// symbolic refs (HEAD) are followed one level
		if ok && ref.Type() == plumbing.SymbolicReference {
			ref, ok = byName[ref.Target()]
		}
		if ok {
			return ref.Hash().String(), nil
		}
	}
	return "", aerrors.NotFound("reference not found on remote").
		WithContext("url", src.URL).
		WithContext("ref", src.Ref).
		Build()
}
