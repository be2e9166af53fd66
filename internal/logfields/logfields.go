package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySource     = "source"
	KeyDest       = "destination"
	KeyFile       = "file"
	KeyFigure     = "figure"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyCommit     = "commit"
	KeyCommand    = "command"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Dest(p string) slog.Attr         { return slog.String(KeyDest, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Figure(f string) slog.Attr       { return slog.String(KeyFigure, f) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }

// Duration reports d in milliseconds under the canonical key.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
