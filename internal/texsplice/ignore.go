package texsplice

import (
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/arxivbuilder/internal/util/sets"
)

// IgnoreSet holds figure file names (final path component with extension)
// that RelocateFigures leaves in place. Lookups are case-insensitive.
// The zero value ignores nothing.
type IgnoreSet struct {
	names sets.Set[string]
}

// NewIgnoreSet builds an IgnoreSet from names.
func NewIgnoreSet(names ...string) IgnoreSet {
	s := IgnoreSet{names: sets.New[string]()}
	for _, n := range names {
		if n == "" {
			continue
		}
		s.names.Add(fold(n))
	}
	return s
}

// Len returns the number of distinct ignored names.
func (s IgnoreSet) Len() int { return len(s.names) }

// Contains reports whether the final component of ref is ignored.
func (s IgnoreSet) Contains(ref string) bool {
	if len(s.names) == 0 {
		return false
	}
	return s.names.Has(fold(filepath.Base(filepath.FromSlash(ref))))
}

// fold lowercases name. A Caser carries state, so one is built per call.
func fold(name string) string {
	return cases.Lower(language.Und).String(name)
}
