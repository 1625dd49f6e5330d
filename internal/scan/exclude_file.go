package scan

import (
	"bufio"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExcludeFileName is the ignore file looked for in the base directory (like .gitignore).
const DefaultExcludeFileName = ".indexignore"

//go:embed default.indexignore
var defaultExcludeContent string

// DefaultExcludePatterns returns the exclude patterns from the embedded default.indexignore.
func DefaultExcludePatterns() []string {
	return parsePatterns(bufio.NewScanner(strings.NewReader(defaultExcludeContent)))
}

// LoadExcludeFile reads path and returns exclude patterns (one per non-empty line).
// Lines starting with # are comments. If the file does not exist, returns nil, nil.
func LoadExcludeFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path from config; operator-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	patterns := parsePatterns(s)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func parsePatterns(s *bufio.Scanner) []string {
	var patterns []string
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// ExcludeFileIn returns the path of the ignore file inside dir (dir/.indexignore).
func ExcludeFileIn(dir string) string {
	return filepath.Join(filepath.Clean(dir), DefaultExcludeFileName)
}

// ExcludePatternsFor returns the default patterns merged with dir/.indexignore
// when that file exists. An empty dir means the working directory.
func ExcludePatternsFor(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	patterns := DefaultExcludePatterns()
	extra, err := LoadExcludeFile(ExcludeFileIn(dir))
	if err != nil {
		return nil, err
	}
	return append(patterns, extra...), nil
}
