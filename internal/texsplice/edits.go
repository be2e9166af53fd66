package texsplice

import (
	"errors"
	"fmt"
	"sort"
)

// Edit represents a targeted byte-range replacement.
//
// Start and End are byte offsets into the original text, with End exclusive.
// Replacement replaces text[Start:End].
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ReplaceSpan returns s with s[start:end] replaced by replacement.
func ReplaceSpan(s string, start, end int, replacement string) (string, error) {
	if start < 0 || end < 0 {
		return "", fmt.Errorf("invalid span [%d,%d): negative offset", start, end)
	}
	if end < start {
		return "", fmt.Errorf("invalid span [%d,%d): end before start", start, end)
	}
	if end > len(s) {
		return "", fmt.Errorf("invalid span [%d,%d): out of bounds for length %d", start, end, len(s))
	}
	return s[:start] + replacement + s[end:], nil
}

// ApplyEdits applies a set of byte-range edits to text and returns the updated content.
//
// Edits must be non-overlapping and refer to offsets in the original text.
// They are applied from the end of the text toward the beginning.
func ApplyEdits(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Start > sorted[j].Start
	})

	for i := 1; i < len(sorted); i++ {
		// Sorted by Start descending: each edit must end at or before the previous one starts.
		if sorted[i].End > sorted[i-1].Start {
			return "", errors.New("invalid edits: overlapping ranges")
		}
	}

	out := text
	for i, e := range sorted {
		var err error
		out, err = ReplaceSpan(out, e.Start, e.End, e.Replacement)
		if err != nil {
			return "", fmt.Errorf("edit[%d]: %w", i, err)
		}
	}
	return out, nil
}
