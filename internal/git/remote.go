package git

import (
	"regexp"
	"strings"
)

var remoteSchemes = []string{"http://", "https://", "ssh://", "git://", "file://"}

// scpLike matches user@host:path, the short form ssh accepts.
var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^/\\]`)

// IsRemote reports whether src names a repository rather than a directory.
func IsRemote(src string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(src, scheme) {
			return true
		}
	}
	return scpLike.MatchString(src)
}

// RepoName derives a directory name from a repository URL.
func RepoName(url string) string {
	u := strings.TrimRight(url, "/")
	u = strings.TrimSuffix(u, ".git")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	if u == "" {
		return "source"
	}
	return u
}
