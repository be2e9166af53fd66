package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Stage", KeyStage, "fuse_inputs", Stage("fuse_inputs")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Source", KeySource, "paper", Source("paper")},
		{"Dest", KeyDest, "out", Dest("out")},
		{"File", KeyFile, "sec.tex", File("sec.tex")},
		{"Figure", KeyFigure, "my_fig.png", Figure("my_fig.png")},
		{"URL", KeyURL, "https://example", URL("https://example")},
		{"Commit", KeyCommit, "abc123", Commit("abc123")},
		{"Command", KeyCommand, "pdflatex", Command("pdflatex")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected count attr: %v", a)
	}
	if a := Duration(1500 * time.Microsecond); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr: %v", a)
	}
}
