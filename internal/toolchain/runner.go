package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/arxivbuilder/internal/config"
	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// ArchiveExt is appended to the destination base name to form the archive name.
const ArchiveExt = ".tar.gz"

// Runner performs the external document build inside dir, where root is the
// root document file name relative to dir.
//
// Errors are reported to the build as warnings unless the caller opts into
// treating them as fatal.
type Runner interface {
	Run(ctx context.Context, dir, root string) error
}

// ArchivePath is where a successful run leaves the archive for dir.
func ArchivePath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	return filepath.Join(dir, filepath.Base(abs)+ArchiveExt)
}

// BinaryRunner executes the configured steps in order, stopping at the first
// step that fails.
type BinaryRunner struct {
	cfg      config.ToolchainConfig
	lookPath func(string) (string, error)
}

// NewBinaryRunner creates a runner for cfg.
func NewBinaryRunner(cfg config.ToolchainConfig) *BinaryRunner {
	return &BinaryRunner{cfg: cfg, lookPath: exec.LookPath}
}

func (b *BinaryRunner) Run(ctx context.Context, dir, root string) error {
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return aerrors.ToolchainError("build directory not found").
			WithCause(ErrDirectoryAbsent).WithPath(dir).Build()
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	stem := strings.TrimSuffix(root, filepath.Ext(root))
	for i, step := range b.cfg.Steps {
		args := expandArgs(step.Args, root, stem)
		if err := b.runStep(ctx, dir, step.Command, args); err != nil {
			return aerrors.ToolchainError("toolchain step failed").
				WithCause(err).
				WithContext("step", i).
				WithContext("command", step.Command).
				Build()
		}
	}
	return b.collectArchive(dir)
}

func (b *BinaryRunner) runStep(ctx context.Context, dir, name string, args []string) error {
	if _, err := b.lookPath(name); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBinaryNotFound, name, err)
	}

	// #nosec G204 -- commands come from the user's own configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	command := strings.TrimSpace(name + " " + strings.Join(args, " "))
	slog.Debug("Running toolchain step", logfields.Command(command), logfields.Path(dir))
	err := cmd.Run()

	if out := stdout.String(); out != "" {
		slog.Debug("toolchain stdout", logfields.Command(name), slog.String("output", out))
	}
	if errOut := stderr.String(); errOut != "" {
		slog.Warn("toolchain stderr", logfields.Command(name), slog.String("error_output", errOut))
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrStepFailed, command, ctxErr)
		}
		if tail := lastLines(stdout.String()+stderr.String(), 5); tail != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrStepFailed, command, err, tail)
		}
		return fmt.Errorf("%w: %s: %w", ErrStepFailed, command, err)
	}
	return nil
}

// collectArchive renames the collector's output after the build directory.
func (b *BinaryRunner) collectArchive(dir string) error {
	if b.cfg.CollectorArchive == "" {
		return nil
	}
	src := filepath.Join(dir, b.cfg.CollectorArchive)
	dst := ArchivePath(dir)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return aerrors.ToolchainError("collector archive not produced").
			WithCause(ErrArchiveMissing).WithContext("file", src).Build()
	}
	if src == dst {
		return nil
	}
	if err := os.Rename(src, dst); err != nil {
		return aerrors.FileSystemError("failed to rename archive").
			WithCause(err).WithContext("file", src).WithPath(dst).Build()
	}
	slog.Info("Archive ready", logfields.File(dst))
	return nil
}

func expandArgs(args []string, root, stem string) []string {
	out := make([]string, len(args))
	r := strings.NewReplacer("{root}", root, "{stem}", stem)
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NoopRunner performs no external build.
type NoopRunner struct{}

func (NoopRunner) Run(_ context.Context, dir, _ string) error {
	slog.Debug("NoopRunner skipping toolchain", logfields.Path(dir))
	return nil
}

// SkipEnv disables the external toolchain when set to "1".
const SkipEnv = "ARXIVBUILDER_SKIP_TOOLCHAIN"

// New picks the runner for cfg, honoring SkipEnv and toolchain.enabled.
func New(cfg config.ToolchainConfig) Runner {
	if os.Getenv(SkipEnv) == "1" || !cfg.IsEnabled() {
		return NoopRunner{}
	}
	return NewBinaryRunner(cfg)
}
