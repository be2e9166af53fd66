package texsplice

import "strings"

// CommentMarker starts a comment line when it is the first character.
const CommentMarker = "%"

// StripComments drops every line whose first character is CommentMarker.
// Blank lines and lines with a marker past the first column are kept.
func StripComments(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, CommentMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
