package tree

import (
	"math/bits"
)

// ref Libra Position module

// maxLevel for index in uint64
const maxLevel = 63

// InorderIndex represents the inorder traversal index of a binary tree with limited level.
// Leaves sit on even positions, a node on level l has exactly l trailing one bits.
type InorderIndex uint64

// FromIndexOnLevel calculates inorder index from the index of nodes upper certain level
func FromIndexOnLevel(indexOnLevel uint64, level int) InorderIndex {
	return InorderIndex(indexOnLevel<<(level+1) | (1<<level - 1))
}

// FromLeafIndex calculates inorder index from the index of leaves
func FromLeafIndex(leafIndex uint64) InorderIndex {
	return FromIndexOnLevel(leafIndex, 0)
}

// Parent returns the parent
func (i InorderIndex) Parent() InorderIndex {
	return (i | isolateRightMostZeroBit(i)) & ^(isolateRightMostZeroBit(i) << 1)
}

// Sibling returns the sibling
func (i InorderIndex) Sibling() InorderIndex {
	return i ^ (isolateRightMostZeroBit(i) << 1)
}

// Level calculates the level of inorder index
func (i InorderIndex) Level() int {
	return bits.TrailingZeros64(^uint64(i))
}

// LeafIndexOnLevel returns n that i is the n-th node on its level
func (i InorderIndex) LeafIndexOnLevel() uint64 {
	return uint64(i) >> (1 + i.Level())
}

// IsLeaf judges whether the inorder index is a leaf
func (i InorderIndex) IsLeaf() bool {
	return i&1 == 0
}

// IsLeftChild judges whether the inorder index is or can be a left child
func (i InorderIndex) IsLeftChild() bool {
	return i&(isolateRightMostZeroBit(i)<<1) == 0
}

// IsRightChild judges whether the inorder index is or can be a right child
func (i InorderIndex) IsRightChild() bool {
	return !i.IsLeftChild()
}

// RootLevelFromLeafIndex calculates the root level of a binary tree whose last leaf has the given index
func RootLevelFromLeafIndex(leafIndex uint64) int {
	return maxLevel + 1 - bits.LeadingZeros64(leafIndex)
}

func isolateRightMostZeroBit(x InorderIndex) InorderIndex {
	return (^x) & (x + 1)
}
