package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_DeriveOutcome(t *testing.T) {
	r := newBuildReport("src", "dst")
	r.finish()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r = newBuildReport("src", "dst")
	r.recordStageError(newWarnStageError(StageRunToolchain, errors.New("w")))
	r.finish()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r = newBuildReport("src", "dst")
	r.recordStageError(newWarnStageError(StageRunToolchain, errors.New("w")))
	r.recordStageError(newFatalStageError(StageFuseInputs, errors.New("f")))
	r.finish()
	assert.Equal(t, OutcomeFailed, r.Outcome)

	r = newBuildReport("src", "dst")
	r.recordStageError(newCanceledStageError(StageFetchSource, context.Canceled))
	r.finish()
	assert.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestBuildReport_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, newBuildReport("a", "b").BuildID, newBuildReport("a", "b").BuildID)
}

func TestBuildReport_Persist(t *testing.T) {
	r := newBuildReport("paper", "submission")
	r.StageDurations[string(StageFuseInputs)] = 1500 * time.Millisecond
	r.InputsFused = 2
	r.FiguresMoved = 1
	r.recordStageError(newWarnStageError(StageRunToolchain, errors.New("biber failed")))

	path := filepath.Join(t.TempDir(), "reports", "build-report.json")
	require.NoError(t, r.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, r.BuildID, got["build_id"])
	assert.Equal(t, "warning", got["outcome"])
	assert.InDelta(t, 2, got["inputs_fused"], 0)
	assert.InDelta(t, 1500, got["stage_durations_ms"].(map[string]any)["fuse_inputs"], 0)
	assert.Equal(t, map[string]any{"run_toolchain": "warning"}, got["stage_error_kinds"])
	require.Len(t, got["warnings"], 1)
	assert.Contains(t, got["warnings"].([]any)[0], "biber failed")

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".build-report-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	// a second persist replaces the file
	r.FiguresMoved = 4
	require.NoError(t, r.Persist(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"figures_moved": 4`)
}

func TestBuildReport_Summary(t *testing.T) {
	r := newBuildReport("a", "b")
	r.InputsFused = 3
	r.finish()
	s := r.Summary()
	assert.Contains(t, s, "inputs=3")
	assert.Contains(t, s, "outcome=success")
}
