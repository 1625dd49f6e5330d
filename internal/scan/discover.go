package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/eargollo/indexer/internal/indexerr"
)

// patternErrorPrefix prefixes every malformed-pattern message.
const patternErrorPrefix = "Error Discovering Glob: "

// Discoverer expands glob patterns against the filesystem.
// The zero value resolves relative patterns against the working directory,
// returns directories as well as files and excludes nothing.
type Discoverer struct {
	// BaseDir is the directory relative patterns are resolved against.
	// Empty means the process working directory. Returned paths keep the
	// BaseDir prefix.
	BaseDir string
	// FilesOnly drops matches that are directories.
	FilesOnly bool
	// Exclude patterns (see ShouldExclude) are applied to each path below the
	// pattern's literal prefix. Excluded directories are pruned from the walk.
	Exclude []string
}

// Discover expands pattern relative to the working directory.
// See (*Discoverer).Discover.
func Discover(pattern string) ([]string, error) {
	var d Discoverer
	return d.Discover(pattern)
}

// Discover returns every existing path matching pattern, sorted by path.
// Supported syntax is doublestar's: '*' and '?' within a segment, '**' for any
// number of directories, '[...]' classes and '{a,b}' alternatives. A trailing
// '/' restricts matches to directories.
//
// Returned paths keep the pattern's literal prefix as written ("./a/*.md"
// yields "./a/x.md"). Excluded directories are never entered.
//
// No match is not an error: the result is an empty slice. A malformed pattern
// returns an indexerr.KindPattern error. Any filesystem error while expanding
// aborts the whole call with an indexerr.KindTraversal error; partial results
// are never returned.
func (d *Discoverer) Discover(pattern string) ([]string, error) {
	if pattern == "" {
		return []string{}, nil
	}
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	slashed := filepath.ToSlash(pattern)
	dirsOnly := false
	if trimmed := strings.TrimRight(slashed, "/"); trimmed != "" && trimmed != slashed {
		slashed, dirsOnly = trimmed, true
	}

	base, rest := doublestar.SplitPattern(slashed)
	root := filepath.FromSlash(base)
	if base == "." && !strings.HasPrefix(slashed, "./") {
		root = ""
	}
	if d.BaseDir != "" && !filepath.IsAbs(root) {
		root = filepath.Join(d.BaseDir, root)
	}
	walkRoot := root
	if walkRoot == "" {
		walkRoot = "."
	}

	rest = path.Clean(rest)
	if rest == "." || rest == ".." || strings.HasPrefix(rest, "../") {
		return d.literal(filepath.Join(walkRoot, filepath.FromSlash(rest)), dirsOnly)
	}

	var fsys fs.FS = os.DirFS(walkRoot)
	if len(d.Exclude) > 0 {
		fsys = excludeFS{FS: fsys, patterns: d.Exclude}
	}
	opts := []doublestar.GlobOption{doublestar.WithFailOnIOErrors()}
	if d.FilesOnly {
		opts = append(opts, doublestar.WithFilesOnly())
	}

	matches := []string{}
	err := doublestar.GlobWalk(fsys, rest, func(p string, de fs.DirEntry) error {
		if dirsOnly && !isDir(fsys, p, de) {
			return nil
		}
		matches = append(matches, under(root, p))
		return nil
	}, opts...)
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, patternError(pattern, err)
		}
		return nil, traversalError(walkRoot, err)
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}

// ValidatePattern returns an indexerr.KindPattern error when pattern cannot be
// expanded by Discover.
func ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return patternError(pattern, doublestar.ErrBadPattern)
	}
	return nil
}

// literal handles patterns with nothing left to expand (e.g. "/" or "a/..").
func (d *Discoverer) literal(p string, dirsOnly bool) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, traversalError("", err)
	}
	if (d.FilesOnly && info.IsDir()) || (dirsOnly && !info.IsDir()) {
		return []string{}, nil
	}
	return []string{p}, nil
}

// under appends the walked path p to root without cleaning root.
func under(root, p string) string {
	p = filepath.FromSlash(p)
	switch {
	case root == "":
		return p
	case p == ".":
		return root
	case strings.HasSuffix(root, string(filepath.Separator)):
		return root + p
	}
	return root + string(filepath.Separator) + p
}

// isDir follows symlinks.
func isDir(fsys fs.FS, p string, de fs.DirEntry) bool {
	if de != nil && de.Type()&fs.ModeSymlink == 0 {
		return de.IsDir()
	}
	info, err := fs.Stat(fsys, p)
	return err == nil && info.IsDir()
}

func patternError(pattern string, err error) error {
	return indexerr.New(indexerr.KindPattern, pattern, patternErrorPrefix+err.Error(), err)
}

// traversalError names the path that failed. fs.PathError paths from os.DirFS
// are relative to root.
func traversalError(root string, err error) error {
	p := root
	cause := err
	var pe *fs.PathError
	if errors.As(err, &pe) {
		p = filepath.FromSlash(pe.Path)
		if !filepath.IsAbs(p) && root != "" {
			p = filepath.Join(root, p)
		}
		cause = pe.Err
	}
	msg := fmt.Sprintf("attempting to read `%s` resulted in an error: %v", p, cause)
	return indexerr.New(indexerr.KindTraversal, p, msg, err)
}
