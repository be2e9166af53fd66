package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if classified, ok := AsClassified(err); ok {
		return classified.Category().ExitCode()
	}

	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return err.Error()
	}

	switch classified.Category() {
	case CategoryConfig, CategoryValidation, CategoryAuth:
		return classified.Message()
	case CategoryNotFound, CategoryAlreadyExists:
		if p := classified.Path(); p != "" {
			return fmt.Sprintf("%s: %s: %s", classified.Category(), classified.Message(), p)
		}
		return fmt.Sprintf("%s: %s", classified.Category(), classified.Message())
	default:
		if classified.Cause() != nil {
			return fmt.Sprintf("%s: %s: %v", classified.Category(), classified.Message(), classified.Cause())
		}
		return fmt.Sprintf("%s: %s", classified.Category(), classified.Message())
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.IsFatal()
	}
	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for _, f := range classified.Fields() {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	if classified.Cause() != nil {
		attrs = append(attrs, slog.String("cause", classified.Cause().Error()))
	}
	a.logger.LogAttrs(context.Background(), a.slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
}

// slogLevelFromSeverity converts ClassifiedError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
