package texsplice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFusionProperties checks include fusion over generated documents.
func TestFusionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	base := t.TempDir()

	// Property: N references are replaced, in order, by their file contents plus a blank line.
	properties.Property("fusion inlines every reference in order", prop.ForAll(
		func(contents []string, filler []string) bool {
			dir, err := os.MkdirTemp(base, "fuse")
			if err != nil {
				return false
			}

			var doc, want strings.Builder
			for i, c := range contents {
				name := fmt.Sprintf("part%d", i)
				if err := os.WriteFile(filepath.Join(dir, name+".tex"), []byte(c), 0o600); err != nil {
					return false
				}
				line := filler[i%len(filler)]
				doc.WriteString(line + "\n\\input{" + name + "}\n")
				want.WriteString(line + "\n" + c + "\n\n\n")
			}

			out, res, err := FuseInputs(dir, doc.String())
			if err != nil || out != want.String() || len(res.Inlined) != len(contents) {
				return false
			}
			for i := range contents {
				if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("part%d.tex", i))); !os.IsNotExist(err) {
					return false
				}
			}
			return !strings.Contains(out, "\\input{part")
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOfN(3, gen.AlphaString()).SuchThat(func(v []string) bool { return len(v) > 0 }),
	))

	// Property: text without references passes through untouched.
	properties.Property("fusion without references is a no-op", prop.ForAll(
		func(text string) bool {
			out, res, err := FuseInputs(base, text)
			return err == nil && out == text && len(res.Removed) == 0
		},
		gen.AnyString().SuchThat(func(s string) bool { return !strings.Contains(s, `\input{`) }),
	))

	properties.TestingRun(t)
}

// TestStripCommentsProperties checks the comment filter over generated lines.
func TestStripCommentsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("no stripped line starts with the marker", prop.ForAll(
		func(lines []string) bool {
			out := StripComments(strings.Join(lines, "\n"))
			for _, l := range strings.Split(out, "\n") {
				if strings.HasPrefix(l, CommentMarker) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.AlphaString().Map(func(s string) string { return "%" + s }))),
	))

	properties.Property("uncommented lines survive in order", prop.ForAll(
		func(lines []string) bool {
			var kept []string
			for _, l := range lines {
				if !strings.HasPrefix(l, CommentMarker) {
					kept = append(kept, l)
				}
			}
			return StripComments(strings.Join(lines, "\n")) == strings.Join(kept, "\n")
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.AlphaString().Map(func(s string) string { return "%" + s }))),
	))

	properties.TestingRun(t)
}

// TestReplaceSpanProperties checks the offset primitive against slicing.
func TestReplaceSpanProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("replacement keeps prefix and suffix", prop.ForAll(
		func(s, repl string, a, b int) bool {
			if len(s) == 0 {
				a, b = 0, 0
			} else {
				a, b = a%(len(s)+1), b%(len(s)+1)
			}
			if a > b {
				a, b = b, a
			}
			out, err := ReplaceSpan(s, a, b, repl)
			return err == nil &&
				strings.HasPrefix(out, s[:a]) &&
				strings.HasSuffix(out, s[b:]) &&
				len(out) == len(s)-(b-a)+len(repl)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
