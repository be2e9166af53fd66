package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/arxivbuilder/internal/config"
	"git.home.luguber.info/inful/arxivbuilder/internal/pipeline"
	"git.home.luguber.info/inful/arxivbuilder/internal/toolchain"
)

// LogLevelEnv overrides the log level (debug|info|warn|error).
const LogLevelEnv = "ARXIVBUILDER_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives user-facing progress lines.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return io.Discard
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"arxivbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Assemble a submission directory and archive from a LaTeX project"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
	Watch WatchCmd `cmd:"" help:"Rebuild the submission whenever the source changes"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// parseLogLevel resolves the level from --verbose and LogLevelEnv. The flag wins.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Target holds the arguments shared by build and watch.
type Target struct {
	Source    string   `arg:"" name:"src" help:"LaTeX project directory or git repository URL"`
	Dest      string   `arg:"" name:"dst" help:"Directory the submission is assembled in"`
	IgnoreImg []string `name:"ignore-img" help:"Figure file names left in place (repeatable)"`
	Ref       string   `help:"Branch or tag when SRC is a repository"`
	NoArchive bool     `name:"no-archive" help:"Skip the external compiler and archive collector"`
}

// loadConfig reads the optional config file and merges the target's flags into it.
func (t *Target) loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.IgnoreImages = append(cfg.IgnoreImages, t.IgnoreImg...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (t *Target) options(cfg *config.Config, force bool) pipeline.Options {
	opts := pipeline.Options{
		Source: t.Source,
		Dest:   t.Dest,
		Force:  force,
		Ref:    t.Ref,
		Config: cfg,
	}
	if t.NoArchive {
		opts.Runner = toolchain.NoopRunner{}
	}
	return opts
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printReport(w io.Writer, r *pipeline.BuildReport) {
	_, _ = fmt.Fprintf(w, "Build %s: %s\n", r.Outcome, r.Summary())
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  warning: %v\n", warn)
	}
	if r.Archive != "" {
		_, _ = fmt.Fprintf(w, "Archive: %s\n", r.Archive)
	}
}
