package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromIndexOnLevel(t *testing.T) {
	r := require.New(t)

	r.EqualValues(0, FromIndexOnLevel(0, 0))
	r.EqualValues(6, FromIndexOnLevel(3, 0))
	r.EqualValues(5, FromIndexOnLevel(1, 1))
	r.EqualValues(3, FromIndexOnLevel(0, 2))
	r.EqualValues(55, FromIndexOnLevel(3, 3))
	r.Equal(FromIndexOnLevel(7, 0), FromLeafIndex(7))
}

func TestLevelAndPosition(t *testing.T) {
	r := require.New(t)

	for level := 0; level < 8; level++ {
		for n := uint64(0); n < 16; n++ {
			i := FromIndexOnLevel(n, level)
			r.Equal(level, i.Level())
			r.Equal(n, i.LeafIndexOnLevel())
			r.Equal(level == 0, i.IsLeaf())
			r.Equal(n%2 == 0, i.IsLeftChild())
			r.Equal(n%2 == 1, i.IsRightChild())
		}
	}
}

func TestParentAndSibling(t *testing.T) {
	r := require.New(t)

	for level := 0; level < 8; level++ {
		for n := uint64(0); n < 16; n++ {
			i := FromIndexOnLevel(n, level)

			parent := i.Parent()
			r.Equal(level+1, parent.Level())
			r.Equal(n/2, parent.LeafIndexOnLevel())

			sibling := i.Sibling()
			r.Equal(level, sibling.Level())
			r.Equal(n^1, sibling.LeafIndexOnLevel())
			r.Equal(parent, sibling.Parent())
			r.Equal(i, sibling.Sibling())
		}
	}
}

func TestRootLevelFromLeafIndex(t *testing.T) {
	r := require.New(t)

	// last leaf index -> height of the tree holding it
	cases := map[uint64]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 7: 3, 8: 4, 1023: 10, 1024: 11}
	for last, level := range cases {
		r.Equal(level, RootLevelFromLeafIndex(last), "last leaf %d", last)
	}
}
