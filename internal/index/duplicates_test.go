package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicates_groupsBySizeThenDigest(t *testing.T) {
	res := &Result{Entries: []Entry{
		{Path: "z/small-copy", Size: 1, Digest: "aa"},
		{Path: "a/small", Size: 1, Digest: "aa"},
		{Path: "big1", Size: 50, Digest: "ff"},
		{Path: "big2", Size: 50, Digest: "ff"},
		{Path: "tie1", Size: 1, Digest: "00"},
		{Path: "tie2", Size: 1, Digest: "00"},
		{Path: "lonely", Size: 9, Digest: "99"},
		{Path: "broken", ErrKind: "read", Err: "boom"},
		{Path: "broken2", ErrKind: "read", Err: "boom"},
	}}

	groups := res.Duplicates()
	require.Len(t, groups, 3)
	assert.Equal(t, "ff", groups[0].Digest)
	assert.Equal(t, int64(100), groups[0].Size)
	assert.Equal(t, "00", groups[1].Digest, "equal sizes fall back to digest order")
	assert.Equal(t, "aa", groups[2].Digest)
	assert.Equal(t, []string{"a/small", "z/small-copy"}, groups[2].Paths)
	assert.Equal(t, int64(2), groups[2].Count)
}

func TestDuplicates_noneIsEmptyNotNil(t *testing.T) {
	res := &Result{Entries: []Entry{{Path: "a", Digest: "1"}, {Path: "b", Digest: "2"}}}
	groups := res.Duplicates()
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
