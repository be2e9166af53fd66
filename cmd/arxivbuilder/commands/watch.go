package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"git.home.luguber.info/inful/arxivbuilder/internal/git"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/metrics"
	"git.home.luguber.info/inful/arxivbuilder/internal/pipeline"
	"git.home.luguber.info/inful/arxivbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command. Every rebuild replaces the destination.
type WatchCmd struct {
	Target `embed:""`

	Interval      time.Duration `help:"Poll interval for repository sources (default from config)"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address, e.g. :9464"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := w.loadConfig(root.Config)
	if err != nil {
		return err
	}
	interval := cfg.Watch.Interval
	if w.Interval > 0 {
		interval = w.Interval
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := w.options(cfg, true)
	if w.MetricsListen != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		opts.Recorder = prom
		go serveMetrics(ctx, w.MetricsListen, prom.Handler())
	}

	out := g.out()
	wopts := watch.Options{
		Interval:         interval,
		Debounce:         cfg.Watch.Debounce,
		ArtifactPatterns: cfg.CleanPatterns,
		Build: func(ctx context.Context) error {
			report, err := pipeline.NewBuilder(opts).Run(ctx)
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}
	if git.IsRemote(w.Source) {
		src := git.Source{
			URL:      w.Source,
			Ref:      w.Ref,
			Token:    os.Getenv(cfg.Git.TokenEnv),
			Username: cfg.Git.Username,
		}
		if src.Ref == "" {
			src.Ref = cfg.Git.Ref
		}
		client := git.NewClient("")
		wopts.Head = func(ctx context.Context) (string, error) { return client.RemoteHead(ctx, src) }
	} else {
		wopts.Source = w.Source
	}

	return watch.New(wopts).Run(ctx)
}

func serveMetrics(ctx context.Context, addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("Metrics server stopped", logfields.Error(err))
	}
}
