package texsplice

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
	"git.home.luguber.info/inful/arxivbuilder/internal/util/sets"
)

// FigurePattern matches \includegraphics[OPTIONS]{PATH}; the capture is PATH.
// The bracketed options are required.
var FigurePattern = regexp.MustCompile(`\\includegraphics\[.*\]\{(.*)\}`)

// GraphicsExtensions are tried, in order, for references written without an extension.
var GraphicsExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".eps"}

// FigureMove is one figure file relocated to the document directory.
type FigureMove struct {
	Reference string // path as first written in the document
	Source    string // file before the move
	Dest      string // file after the move
	FlatName  string // text written back into the references
}

// RelocateResult describes what RelocateFigures changed.
type RelocateResult struct {
	// Moved lists each relocated file once, in document order.
	Moved []FigureMove
	// Rewritten counts rewritten references; a figure referenced twice counts twice.
	Rewritten int
	// Ignored lists references skipped because of the ignore set.
	Ignored []string
}

// FlatName returns the final component of ref with every underscore removed.
func FlatName(ref string) string {
	return strings.ReplaceAll(filepath.Base(filepath.FromSlash(ref)), "_", "")
}

// RelocateFigures strips comment lines from text, then moves every figure
// referenced by \includegraphics into dir under its FlatName and points the
// reference at the new name. Only the path inside the braces is rewritten.
//
// References whose file name is in ignore keep both their text and their
// file. The returned text is the comment-stripped text with the rewrites
// applied.
//
// All references are resolved before any file moves: a missing figure fails
// with not_found, and two different files that flatten to the same name (or
// a flat name already taken by another file) fail with already_exists.
// The same file referenced more than once is moved once. A path that is
// absolute or climbs out of dir fails validation before anything moves.
func RelocateFigures(dir, text string, ignore IgnoreSet) (string, RelocateResult, error) {
	var result RelocateResult

	text = StripComments(text)
	matches, err := FindMatches(text, FigurePattern, 1)
	if err != nil {
		return "", result, err
	}
	if len(matches) == 0 {
		return text, result, nil
	}

	plan, err := planMoves(dir, matches, ignore, &result)
	if err != nil {
		return "", result, err
	}

	moved := sets.New[string]()
	out, n, err := rewrite(text, matches, func(m Match) (string, bool, error) {
		mv, ok := plan[m.Start]
		if !ok {
			return "", false, nil
		}
		if !moved.Has(mv.Source) {
			if err := moveFigure(mv); err != nil {
				return "", false, err
			}
			moved.Add(mv.Source)
		}
		return mv.FlatName, true, nil
	})
	if err != nil {
		return "", result, err
	}
	result.Rewritten = n
	return out, result, nil
}

// planMoves resolves every non-ignored reference. The returned map is keyed
// by the start offset of each reference's path.
func planMoves(dir string, matches []Match, ignore IgnoreSet, result *RelocateResult) (map[int]*FigureMove, error) {
	plan := make(map[int]*FigureMove, len(matches))
	bySource := make(map[string]*FigureMove)
	byDest := make(map[string]*FigureMove)

	for _, m := range matches {
		ref := m.Groups[1]
		if ignore.Contains(ref) {
			result.Ignored = append(result.Ignored, ref)
			continue
		}

		mv, err := resolveFigure(dir, ref)
		if err != nil {
			return nil, err
		}
		if ignore.Contains(mv.Source) {
			result.Ignored = append(result.Ignored, ref)
			continue
		}

		if prev, ok := bySource[mv.Source]; ok {
			plan[m.Start] = prev
			continue
		}
		if other, ok := byDest[mv.Dest]; ok {
			return nil, aerrors.AlreadyExists("figures collide after flattening").
				WithContext("figure", mv.Source).
				WithContext("other", other.Source).
				WithContext("destination", mv.Dest).
				Build()
		}
		if mv.Source != mv.Dest {
			if _, err := os.Lstat(mv.Dest); err == nil {
				return nil, aerrors.AlreadyExists("flattened figure name is taken by another file").
					WithContext("figure", mv.Source).
					WithContext("destination", mv.Dest).
					Build()
			}
		}

		bySource[mv.Source] = mv
		byDest[mv.Dest] = mv
		plan[m.Start] = mv
		result.Moved = append(result.Moved, *mv)
	}
	return plan, nil
}

// resolveFigure locates the file behind ref, trying GraphicsExtensions when
// ref has no extension of its own.
func resolveFigure(dir, ref string) (*FigureMove, error) {
	if err := checkLocal(ref, "figure"); err != nil {
		return nil, err
	}
	rel := filepath.FromSlash(ref)
	src := filepath.Join(dir, rel)

	if _, err := os.Stat(src); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || filepath.Ext(rel) != "" {
			return nil, fileError(err, "figure file could not be found", src)
		}
		found := false
		for _, ext := range GraphicsExtensions {
			if _, serr := os.Stat(src + ext); serr == nil {
				src += ext
				found = true
				break
			}
		}
		if !found {
			return nil, fileError(err, "figure file could not be found", src)
		}
	}

	return &FigureMove{
		Reference: ref,
		Source:    src,
		Dest:      filepath.Join(dir, FlatName(src)),
		FlatName:  FlatName(ref),
	}, nil
}

func moveFigure(mv *FigureMove) error {
	if mv.Source == mv.Dest {
		return nil
	}
	if err := os.Rename(mv.Source, mv.Dest); err != nil {
		return fileError(err, "figure file could not be moved", mv.Source)
	}
	slog.Debug("Relocated figure", logfields.Figure(mv.Reference), logfields.Source(mv.Source), logfields.Dest(mv.Dest))
	return nil
}
