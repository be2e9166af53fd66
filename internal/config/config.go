package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
)

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "arxivbuilder.yaml"

// Config represents the application configuration.
type Config struct {
	// RootDocument is the file that anchors the LaTeX project.
	RootDocument string `yaml:"root_document"`
	// IgnoreImages lists figure file names (with extension) that stay where they are.
	IgnoreImages []string `yaml:"ignore_images,omitempty"`
	// CleanPatterns are base-name globs of build artifacts removed after copying.
	CleanPatterns []string        `yaml:"clean_patterns,omitempty"`
	Toolchain     ToolchainConfig `yaml:"toolchain"`
	Git           GitConfig       `yaml:"git"`
	Watch         WatchConfig     `yaml:"watch"`
}

// ToolchainConfig drives the external compiler and archive collector.
type ToolchainConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Steps   []Step `yaml:"steps,omitempty"`
	// CollectorArchive is the file the last step leaves behind. It is renamed
	// after the destination directory.
	CollectorArchive string        `yaml:"collector_archive"`
	FailOnError      bool          `yaml:"fail_on_error"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

// Step is one external command run inside the destination directory.
// Args may reference {root} (root document file name) and {stem} (without extension).
type Step struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// GitConfig applies when the source is a remote repository.
type GitConfig struct {
	Ref      string `yaml:"ref,omitempty"`
	Depth    int    `yaml:"depth"`
	TokenEnv string `yaml:"token_env"`
	Username string `yaml:"username,omitempty"`

	// Retries re-attempts a clone that failed for a transient reason.
	Retries       int           `yaml:"retries"`
	RetryBackoff  string        `yaml:"retry_backoff,omitempty"` // fixed|linear|exponential
	RetryDelay    time.Duration `yaml:"retry_delay,omitempty"`
	RetryMaxDelay time.Duration `yaml:"retry_max_delay,omitempty"`
}

// WatchConfig tunes the rebuild loop.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval"`
}

// IsEnabled reports whether the toolchain should run. Unset means enabled.
func (t ToolchainConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// Load reads, expands and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, aerrors.ConfigError("configuration file not found").WithCause(err).WithPath(configPath).Build()
		}
		return nil, aerrors.ConfigError("failed to read config file").WithCause(err).WithPath(configPath).Build()
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns the defaults when configPath does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		loadEnvFile()
		return Default(), nil
	}
	return Load(configPath)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Parse decodes YAML after expanding ${VAR} references, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, aerrors.ConfigError("failed to unmarshal config").WithCause(err).Build()
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return aerrors.AlreadyExists("configuration file already exists (use --force to overwrite)").
			WithPath(configPath).
			Build()
	}

	example := Default()
	example.IgnoreImages = []string{"logo.png"}
	example.Git.Retries = 2

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return aerrors.FileSystemError("failed to write config file").WithCause(err).WithPath(configPath).Build()
	}
	return nil
}
