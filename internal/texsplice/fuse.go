package texsplice

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// InputPattern matches \input{NAME}. The capture is greedy up to the last
// closing brace on the line.
var InputPattern = regexp.MustCompile(`\\input\{(.*)\}`)

// IncludeExtension is the extension given to every \input name.
const IncludeExtension = ".tex"

// FuseResult describes what FuseInputs inlined.
type FuseResult struct {
	// Inlined lists each fused reference in document order.
	Inlined []Inclusion
	// Removed lists the sub-files deleted from disk, in deletion order.
	Removed []string
}

// Inclusion is one fused \input reference.
type Inclusion struct {
	Name  string // name as written in the reference
	Path  string // resolved file
	Start int    // byte offset of the token in the original text
	Bytes int    // length of the inlined content
}

// IncludePath resolves an \input name against dir, replacing any extension
// on the final component with IncludeExtension.
func IncludePath(dir, name string) string {
	name = filepath.FromSlash(name)
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		name = strings.TrimSuffix(name, ext)
	}
	return filepath.Join(dir, name+IncludeExtension)
}

// FuseInputs replaces every \input{NAME} token in text with the contents of
// NAME.tex from dir followed by a blank line, deleting each sub-file once it
// has been read.
//
// References are processed from the rightmost to the leftmost. Only tokens in
// text are resolved; tokens inside inlined content are kept verbatim. A
// reference repeated in the same document reuses the contents read for its
// first resolution. A missing sub-file aborts with a not_found error; files
// fused before the failure stay deleted. A name that is absolute or climbs out
// of dir fails with a validation error before any file is read or removed.
func FuseInputs(dir, text string) (string, FuseResult, error) {
	var result FuseResult

	matches, err := FindMatches(text, InputPattern, 0)
	if err != nil {
		return "", result, err
	}
	if len(matches) == 0 {
		return text, result, nil
	}
	for _, m := range matches {
		if err := checkLocal(m.Groups[1], "input"); err != nil {
			return "", result, err
		}
	}

	cache := make(map[string]string, len(matches))
	inlined := make([]Inclusion, 0, len(matches))

	fused, _, err := rewrite(text, matches, func(m Match) (string, bool, error) {
		name := m.Groups[1]
		path := IncludePath(dir, name)

		content, seen := cache[path]
		if !seen {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", false, fileError(err, "included file could not be read", path)
			}
			if err := os.Remove(path); err != nil {
				return "", false, fileError(err, "included file could not be removed", path)
			}
			content = string(data)
			cache[path] = content
			result.Removed = append(result.Removed, path)
			slog.Debug("Fused input", logfields.File(name), logfields.Path(path), slog.Int("bytes", len(data)))
		}

		inlined = append(inlined, Inclusion{Name: name, Path: path, Start: m.Start, Bytes: len(content)})
		return content + "\n\n", true, nil
	})
	if err != nil {
		return "", result, err
	}

	for i, j := 0, len(inlined)-1; i < j; i, j = i+1, j-1 {
		inlined[i], inlined[j] = inlined[j], inlined[i]
	}
	result.Inlined = inlined
	return fused, result, nil
}
