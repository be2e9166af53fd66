package config

import (
	"time"

	"git.home.luguber.info/inful/arxivbuilder/internal/retry"
	"git.home.luguber.info/inful/arxivbuilder/internal/staging"
)

// DefaultSteps compile, resolve the bibliography, compile again and
// collect the sources into an archive.
var DefaultSteps = []Step{
	{Command: "pdflatex", Args: []string{"{root}"}},
	{Command: "biber", Args: []string{"{stem}"}},
	{Command: "pdflatex", Args: []string{"{root}"}},
	{Command: "arxiv-collector", Args: []string{"{root}"}},
}

// DefaultTokenEnv names the variable holding a git access token.
const DefaultTokenEnv = "ARXIVBUILDER_GIT_TOKEN"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

// DocumentDefaultApplier handles the root document and cleanup defaults.
type DocumentDefaultApplier struct{}

func (DocumentDefaultApplier) Domain() string { return "document" }

func (DocumentDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.RootDocument == "" {
		cfg.RootDocument = "root.tex"
	}
	if cfg.CleanPatterns == nil {
		cfg.CleanPatterns = append([]string(nil), staging.DefaultArtifactPatterns...)
	}
}

// ToolchainDefaultApplier handles external toolchain defaults.
type ToolchainDefaultApplier struct{}

func (ToolchainDefaultApplier) Domain() string { return "toolchain" }

func (ToolchainDefaultApplier) ApplyDefaults(cfg *Config) {
	if len(cfg.Toolchain.Steps) == 0 {
		cfg.Toolchain.Steps = make([]Step, len(DefaultSteps))
		for i, s := range DefaultSteps {
			cfg.Toolchain.Steps[i] = Step{Command: s.Command, Args: append([]string(nil), s.Args...)}
		}
	}
	if cfg.Toolchain.CollectorArchive == "" {
		cfg.Toolchain.CollectorArchive = "arxiv.tar.gz"
	}
}

// GitDefaultApplier handles remote source defaults.
type GitDefaultApplier struct{}

func (GitDefaultApplier) Domain() string { return "git" }

func (GitDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Git.Depth <= 0 {
		cfg.Git.Depth = 1
	}
	if cfg.Git.TokenEnv == "" {
		cfg.Git.TokenEnv = DefaultTokenEnv
	}
	if cfg.Git.RetryBackoff == "" {
		cfg.Git.RetryBackoff = string(retry.BackoffLinear)
	}
	if cfg.Git.RetryDelay <= 0 {
		cfg.Git.RetryDelay = time.Second
	}
	if cfg.Git.RetryMaxDelay <= 0 {
		cfg.Git.RetryMaxDelay = 30 * time.Second
	}
}

// WatchDefaultApplier handles rebuild loop defaults.
type WatchDefaultApplier struct{}

func (WatchDefaultApplier) Domain() string { return "watch" }

func (WatchDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.Interval <= 0 {
		cfg.Watch.Interval = 5 * time.Minute
	}
}

var defaultAppliers = []DefaultApplier{
	DocumentDefaultApplier{},
	ToolchainDefaultApplier{},
	GitDefaultApplier{},
	WatchDefaultApplier{},
}

func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
