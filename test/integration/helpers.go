package integration

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/arxivbuilder/internal/config"
	"git.home.luguber.info/inful/arxivbuilder/internal/pipeline"
	"git.home.luguber.info/inful/arxivbuilder/internal/staging"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
)

// Snapshot is the golden view of a finished submission directory.
type Snapshot struct {
	Files  []string       `json:"files"`
	Counts map[string]int `json:"counts"`
}

// goldenCase names a fixture project, an optional config and its golden dir.
type goldenCase struct {
	project    string
	configPath string
	goldenDir  string
	// fromRepo commits the project to a git repository and builds from its URL.
	fromRepo bool
}

func loadConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

// setupTestRepo copies a fixture project into a new repository with one commit.
func setupTestRepo(t *testing.T, project string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), filepath.Base(project))
	require.NoError(t, staging.CopyTree(project, dir), "failed to copy fixture")

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, w.AddGlob("."))
	_, err = w.Commit("Initial test commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return "file://" + filepath.ToSlash(dir)
}

// runGoldenTest builds the fixture and compares the result with the golden
// files, rewriting them instead when update is set.
func runGoldenTest(t *testing.T, tc goldenCase, update bool) {
	t.Helper()

	cfg := loadConfig(t, tc.configPath)
	source := tc.project
	if tc.fromRepo {
		source = setupTestRepo(t, tc.project)
		// shallow fetches are not served by the local transport
		cfg.Git.Depth = 0
	}
	dst := filepath.Join(t.TempDir(), "submission")

	report, err := pipeline.NewBuilder(pipeline.Options{
		Source:        source,
		Dest:          dst,
		Config:        cfg,
		Runner:        toolchain.NoopRunner{},
		WorkspaceBase: t.TempDir(),
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeSuccess, report.Outcome)

	got := snapshot(t, dst, report)
	root, err := os.ReadFile(filepath.Join(dst, "root.tex"))
	require.NoError(t, err)

	goldenRoot := filepath.Join(tc.goldenDir, "root.tex")
	goldenStructure := filepath.Join(tc.goldenDir, "structure.json")

	if update {
		require.NoError(t, os.MkdirAll(tc.goldenDir, 0o750))
		require.NoError(t, os.WriteFile(goldenRoot, root, 0o600))
		data, err := json.MarshalIndent(got, "", "  ")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(goldenStructure, append(data, '\n'), 0o600))
		t.Logf("updated golden files in %s", tc.goldenDir)
		return
	}

	wantRoot, err := os.ReadFile(goldenRoot)
	require.NoError(t, err, "missing golden root document; run with -update-golden")
	assert.Equal(t, string(wantRoot), string(root))

	data, err := os.ReadFile(goldenStructure)
	require.NoError(t, err)
	var want Snapshot
	require.NoError(t, json.Unmarshal(data, &want))
	assert.Equal(t, want.Files, got.Files)
	if !tc.fromRepo {
		// repository builds also remove .git, so artifact counts differ
		assert.Equal(t, want.Counts, got.Counts)
	}
}

func snapshot(t *testing.T, dir string, r *pipeline.BuildReport) Snapshot {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)

	return Snapshot{
		Files: files,
		Counts: map[string]int{
			"inputs_fused":      r.InputsFused,
			"figures_moved":     r.FiguresMoved,
			"figures_ignored":   r.FiguresIgnored,
			"artifacts_removed": r.ArtifactsRemoved,
			"dirs_pruned":       r.DirsPruned,
		},
	}
}
