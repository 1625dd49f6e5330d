package scan

import (
	"os"
)

// Entry holds metadata for a single discovered file (no content).
type Entry struct {
	Path  string
	Size  int64
	MTime int64
	IsDir bool
}

// Stat describes path. Symlinks are followed, matching what hashing reads.
func Stat(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Path:  path,
		Size:  info.Size(),
		MTime: info.ModTime().Unix(),
		IsDir: info.IsDir(),
	}, nil
}
