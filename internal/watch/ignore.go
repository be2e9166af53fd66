package watch

import (
	"path/filepath"
	"strings"
)

// shouldIgnoreEvent returns true for paths whose changes do not warrant a rebuild.
func shouldIgnoreEvent(path string, artifactPatterns []string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// editor temp and swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}

	// files the compiler writes next to the sources
	for _, p := range artifactPatterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return base == "Thumbs.db"
}
