package texsplice

import (
	"fmt"
	"regexp"
)

// Match is one regex match handed to a ReplaceFunc.
type Match struct {
	// Start and End delimit the span that a replacement overwrites.
	Start int
	End   int
	// Full is the text of the whole match.
	Full string
	// Groups holds the submatches; Groups[0] == Full.
	Groups []string
}

// ReplaceFunc returns the replacement for m. Returning ok=false leaves the
// match untouched; a non-nil error aborts the rewrite.
type ReplaceFunc func(m Match) (replacement string, ok bool, err error)

// FindMatches returns every non-overlapping match of re in text, in document
// order. The span of each Match is the one of capture group `group`
// (0 for the whole match). Matches where the group did not participate are skipped.
func FindMatches(text string, re *regexp.Regexp, group int) ([]Match, error) {
	if group < 0 || group > re.NumSubexp() {
		return nil, fmt.Errorf("pattern %q has no group %d", re.String(), group)
	}
	var matches []Match
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 {
			continue
		}
		groups := make([]string, re.NumSubexp()+1)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = text[loc[2*g]:loc[2*g+1]]
			}
		}
		matches = append(matches, Match{Start: start, End: end, Full: groups[0], Groups: groups})
	}
	return matches, nil
}

// RewriteMatches folds fn over the matches of re in text from the last match
// to the first, splicing each accepted replacement into the text. It returns
// the rewritten text and the number of replacements made.
func RewriteMatches(text string, re *regexp.Regexp, group int, fn ReplaceFunc) (string, int, error) {
	matches, err := FindMatches(text, re, group)
	if err != nil {
		return "", 0, err
	}
	return rewrite(text, matches, fn)
}

// rewrite asks fn about each match from last to first, then applies the
// accepted replacements as one batch of edits.
func rewrite(text string, matches []Match, fn ReplaceFunc) (string, int, error) {
	edits := make([]Edit, 0, len(matches))
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		repl, ok, err := fn(m)
		if err != nil {
			return "", len(edits), err
		}
		if ok {
			edits = append(edits, Edit{Start: m.Start, End: m.End, Replacement: repl})
		}
	}
	out, err := ApplyEdits(text, edits)
	if err != nil {
		return "", 0, err
	}
	return out, len(edits), nil
}
