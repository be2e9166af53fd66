package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/arxivbuilder/internal/config"
	"git.home.luguber.info/inful/arxivbuilder/internal/testutil/testutils"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
)

func TestBuilder_RepositorySource(t *testing.T) {
	testutils.RequireGit(t)
	base := t.TempDir()
	repoPath := filepath.Join(base, "paper")
	_, head := testutils.InitRepo(t, repoPath, map[string]string{
		"root.tex":    "\\input{body}\n\\includegraphics[w]{fig/a_b.png}",
		"body.tex":    "text",
		"fig/a_b.png": "png",
	})

	cfg := config.Default()
	cfg.Git.Depth = 0
	dst := filepath.Join(base, "submission")
	ws := filepath.Join(base, "ws")

	report, err := NewBuilder(Options{
		Source:        testutils.FileURL(repoPath),
		Dest:          dst,
		Config:        cfg,
		Runner:        toolchain.NoopRunner{},
		WorkspaceBase: ws,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, head.String(), report.Commit)
	assert.Equal(t, "text\n\n\n\\includegraphics[w]{ab.png}\n"+"\\typeout{get arXiv to do 4 passes: Label(s) may have changed. Rerun}",
		readFile(t, filepath.Join(dst, "root.tex")))
	assert.FileExists(t, filepath.Join(dst, "ab.png"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))

	entries, err := filepath.Glob(filepath.Join(ws, "*"))
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace should be cleaned up")
}
