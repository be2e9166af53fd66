package config

import (
	"path/filepath"
	"strings"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/retry"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	v := &configurationValidator{config: c}
	return v.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateDocument(); err != nil {
		return err
	}
	if err := cv.validateToolchain(); err != nil {
		return err
	}
	return cv.validateGit()
}

func (cv *configurationValidator) validateDocument() error {
	root := cv.config.RootDocument
	if root == "" {
		return invalid("root_document", "must not be empty")
	}
	if filepath.Base(root) != root {
		return invalid("root_document", "must be a file name without directories")
	}
	for _, name := range cv.config.IgnoreImages {
		if strings.ContainsAny(name, `/\`) {
			return invalid("ignore_images", "entries are file names, not paths: "+name)
		}
	}
	for _, p := range cv.config.CleanPatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return invalid("clean_patterns", "malformed pattern: "+p)
		}
		if ok, _ := filepath.Match(p, root); ok {
			return invalid("clean_patterns", "pattern would delete the root document: "+p)
		}
	}
	return nil
}

func (cv *configurationValidator) validateToolchain() error {
	tc := cv.config.Toolchain
	for i, s := range tc.Steps {
		if strings.TrimSpace(s.Command) == "" {
			return invalid("toolchain.steps", "step has no command").WithContext("index", i)
		}
	}
	if filepath.Base(tc.CollectorArchive) != tc.CollectorArchive {
		return invalid("toolchain.collector_archive", "must be a file name without directories")
	}
	if tc.Timeout < 0 {
		return invalid("toolchain.timeout", "must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateGit() error {
	gc := cv.config.Git
	if gc.Retries < 0 {
		return invalid("git.retries", "must not be negative")
	}
	if gc.RetryBackoff != "" && !retry.Backoff(gc.RetryBackoff).Valid() {
		return invalid("git.retry_backoff", "must be fixed, linear or exponential")
	}
	return nil
}

func invalid(field, reason string) *aerrors.ClassifiedError {
	return aerrors.ValidationError("invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}
