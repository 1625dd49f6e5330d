package index

import (
	"cmp"
	"slices"

	"github.com/eargollo/indexer/internal/db"
)

// Duplicates groups hashed entries sharing a digest. Groups of one are
// dropped. Order matches the catalog: largest total size first, then digest;
// paths within a group are sorted.
func (r *Result) Duplicates() []db.DuplicateGroup {
	byDigest := map[string]*db.DuplicateGroup{}
	var order []string
	for _, e := range r.Entries {
		if e.Failed() || e.Digest == "" {
			continue
		}
		g, ok := byDigest[e.Digest]
		if !ok {
			g = &db.DuplicateGroup{Digest: e.Digest}
			byDigest[e.Digest] = g
			order = append(order, e.Digest)
		}
		g.Count++
		g.Size += e.Size
		g.Paths = append(g.Paths, e.Path)
	}

	groups := []db.DuplicateGroup{}
	for _, d := range order {
		g := byDigest[d]
		if g.Count < 2 {
			continue
		}
		slices.Sort(g.Paths)
		groups = append(groups, *g)
	}
	slices.SortFunc(groups, func(a, b db.DuplicateGroup) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.Digest, b.Digest)
	})
	return groups
}
