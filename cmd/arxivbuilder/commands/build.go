package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/metrics"
	"git.home.luguber.info/inful/arxivbuilder/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Target `embed:""`

	Force       bool   `short:"f" help:"Delete a non-empty destination instead of refusing to build"`
	Report      string `name:"report" help:"Write a JSON build report to this file"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this file"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := b.loadConfig(root.Config)
	if err != nil {
		return err
	}

	opts := b.options(cfg, b.Force)
	var prom *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		opts.Recorder = prom
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, buildErr := pipeline.NewBuilder(opts).Run(ctx)

	if b.Report != "" {
		if err := report.Persist(b.Report); err != nil {
			slog.Warn("Failed to write build report", logfields.Path(b.Report), logfields.Error(err))
		}
	}
	if prom != nil {
		if err := prom.WriteTextfile(b.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	printReport(g.out(), report)
	return nil
}
