package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("fuse_inputs", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("fuse_inputs", ResultSuccess)
	pr.IncStageResult("run_toolchain", ResultWarning)
	pr.IncBuildOutcome("warning")
	pr.ObserveCloneDuration(time.Second, true)
	pr.AddItems(ItemFiguresMoved, 3)
	pr.AddItems(ItemFiguresIgnored, 0)

	assert.InDelta(t, 1, testutil.ToFloat64(pr.stageResults.WithLabelValues("run_toolchain", "warning")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("warning")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(pr.items.WithLabelValues(ItemFiguresMoved)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(pr.items))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("success")

	path := filepath.Join(t.TempDir(), "arxivbuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `arxivbuilder_build_outcomes_total{outcome="success"} 1`)
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncStageResult("write_root", ResultSuccess)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "arxivbuilder_stage_results_total")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("x", time.Second)
		r.ObserveBuildDuration(time.Second)
		r.IncStageResult("x", ResultFatal)
		r.IncBuildOutcome("failed")
		r.ObserveCloneDuration(time.Second, false)
		r.AddItems(ItemDirsPruned, 2)
	})
}
