package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arxivbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	cloneDuration *prom.HistogramVec
	items         *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		cloneDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "clone_duration_seconds",
			Help:      "Duration of remote source clones",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		items: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_items_total",
			Help:      "Inputs, figures, artifacts and directories handled by builds",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.cloneDuration, pr.items)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveCloneDuration(d time.Duration, success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.cloneDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddItems(kind string, n int) {
	if n <= 0 {
		return
	}
	p.items.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile writes the current metrics in text exposition format, for the
// node_exporter textfile collector. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

// Handler serves the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
