package db

import (
	"context"
)

// DuplicateGroup is a set of files in one run sharing a digest.
type DuplicateGroup struct {
	Digest string   `json:"digest" yaml:"digest"`
	Count  int64    `json:"count" yaml:"count"`
	Size   int64    `json:"size" yaml:"size"` // total bytes across the group
	Paths  []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// DuplicateGroups returns groups of two or more entries with the same digest
// in the run, largest total size first, each with its paths.
func (s *Store) DuplicateGroups(ctx context.Context, runID string) ([]DuplicateGroup, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT digest, COUNT(*), COALESCE(SUM(size), 0) FROM entries
		 WHERE run_id = ? AND digest IS NOT NULL
		 GROUP BY digest HAVING COUNT(*) > 1
		 ORDER BY SUM(size) DESC, digest`), runID)
	if err != nil {
		return nil, err
	}
	groups := []DuplicateGroup{}
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.Digest, &g.Count, &g.Size); err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range groups {
		paths, err := s.PathsForDigest(ctx, runID, groups[i].Digest)
		if err != nil {
			return nil, err
		}
		groups[i].Paths = paths
	}
	return groups, nil
}

// PathsForDigest returns the paths in the run whose content has digest, sorted.
func (s *Store) PathsForDigest(ctx context.Context, runID, digest string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT path FROM entries WHERE run_id = ? AND digest = ? ORDER BY path"), runID, digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
