package location

import (
	"path/filepath"
	"strings"
)

// Filter selects paths by prefix. An empty Include admits everything;
// Exclude always wins.
type Filter struct {
	Include []string
	Exclude []string
}

func (f Filter) Allows(path string) bool {
	p := filepath.ToSlash(filepath.Clean(path))
	for _, prefix := range f.Exclude {
		if hasPathPrefix(p, prefix) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, prefix := range f.Include {
		if hasPathPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(p, prefix string) bool {
	prefix = filepath.ToSlash(prefix)
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(p+"/", prefix)
	}
	return strings.HasPrefix(p, prefix)
}
