package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ShouldExclude reports whether path should be excluded by any of the patterns.
// If patterns is nil or empty, returns false.
// Patterns use doublestar syntax and are unanchored:
//   - Without a '/', a pattern is matched against each path segment, so
//     "node_modules" or "*.log" exclude that entry and everything below it.
//   - With a '/', it is matched against every run of consecutive segments,
//     so "build/**" or "docs/drafts" exclude that directory wherever it sits.
//
// A trailing '/' on a pattern is ignored. Malformed patterns never match.
func ShouldExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, p := range patterns {
		p = strings.TrimRight(p, "/")
		if p == "" {
			continue
		}
		if subPathMatches(segments, p) {
			return true
		}
	}
	return false
}

// subPathMatches reports whether pattern matches any run of consecutive segments.
func subPathMatches(segments []string, pattern string) bool {
	multi := strings.Contains(pattern, "/")
	for i := range segments {
		end := i + 1
		if multi {
			end = len(segments)
		}
		for j := i + 1; j <= end; j++ {
			if ok, _ := doublestar.Match(pattern, strings.Join(segments[i:j], "/")); ok {
				return true
			}
		}
	}
	return false
}

// excludeFS hides excluded entries so a glob walk never lists or descends
// into them. Paths are relative to the wrapped filesystem's root.
type excludeFS struct {
	fs.FS
	patterns []string
}

func (x excludeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(x.FS, name)
	kept := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if !ShouldExclude(path.Join(name, e.Name()), x.patterns) {
			kept = append(kept, e)
		}
	}
	return kept, err
}

func (x excludeFS) Stat(name string) (fs.FileInfo, error) {
	if name != "." && ShouldExclude(name, x.patterns) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return fs.Stat(x.FS, name)
}
