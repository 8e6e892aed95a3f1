// Package tree builds Merkle trees over leaf digests and emits inclusion
// proofs for them. It mirrors what a stamping server does before it
// anchors a root, and is used to produce proofs locally.
package tree

import (
	"errors"
	"fmt"

	"github.com/frankonly/upstamp/crypto"
	"github.com/frankonly/upstamp/proof"
)

const HashPlaceholder = "merkle placeholder"

var (
	ErrEmpty      = errors.New("empty")
	ErrOutOfRange = errors.New("out of range")
)

// Placeholder is paired with the last node of a level that has no right sibling
var Placeholder = crypto.Hash([]byte(HashPlaceholder))

// Tree keeps every level, levels[0] being the leaves and the last level the root
type Tree struct {
	levels [][]crypto.Digest
}

// Build hashes leaves pairwise up to a single root
func Build(leaves []crypto.Digest) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: no leaves", ErrEmpty)
	}

	current := make([]crypto.Digest, len(leaves))
	copy(current, leaves)
	levels := [][]crypto.Digest{current}

	for len(current) > 1 {
		parents := make([]crypto.Digest, len(current)/2+len(current)%2)
		for i := range parents {
			if 2*i+1 == len(current) {
				parents[i] = crypto.HashNodes(current[2*i], Placeholder)
			} else {
				parents[i] = crypto.HashNodes(current[2*i], current[2*i+1])
			}
		}

		levels = append(levels, parents)
		current = parents
	}

	return &Tree{levels: levels}, nil
}

// Root returns the root digest
func (t *Tree) Root() crypto.Digest {
	return t.levels[len(t.levels)-1][0]
}

// Size returns the number of leaves
func (t *Tree) Size() uint64 {
	return uint64(len(t.levels[0]))
}

// Leaf returns the leaf digest at id
func (t *Tree) Leaf(id uint64) (crypto.Digest, error) {
	if id >= t.Size() {
		return crypto.Digest{}, fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}
	return t.levels[0][id], nil
}

// Proof returns the inclusion proof of the leaf at id
func (t *Tree) Proof(id uint64) (*proof.Proof, error) {
	if id >= t.Size() {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}

	rootLevel := RootLevelFromLeafIndex(t.Size() - 1)
	ops := make([]proof.Operation, 0, rootLevel)

	index := FromLeafIndex(id)
	for index.Level() < rootLevel {
		nodes := t.levels[index.Level()]
		sibling := Placeholder
		if pos := index.Sibling().LeafIndexOnLevel(); pos < uint64(len(nodes)) {
			sibling = nodes[pos]
		}

		if index.IsLeftChild() {
			ops = append(ops, proof.RightOf(sibling))
		} else {
			ops = append(ops, proof.LeftOf(sibling))
		}

		index = index.Parent()
	}

	return proof.New(ops...)
}

// FromPath turns a sibling path without orientation, ordered from the leaf
// upwards, into a proof. The leaf position decides each side.
func FromPath(leafIndex uint64, siblings []crypto.Digest) (*proof.Proof, error) {
	if len(siblings) > maxLevel {
		return nil, fmt.Errorf("%w: path of %d siblings", ErrOutOfRange, len(siblings))
	}
	if leafIndex>>len(siblings) != 0 {
		return nil, fmt.Errorf("%w: leaf %d does not fit a path of %d siblings", ErrOutOfRange, leafIndex, len(siblings))
	}

	ops := make([]proof.Operation, 0, len(siblings))
	index := FromLeafIndex(leafIndex)
	for _, sibling := range siblings {
		if index.IsLeftChild() {
			ops = append(ops, proof.RightOf(sibling))
		} else {
			ops = append(ops, proof.LeftOf(sibling))
		}
		index = index.Parent()
	}

	return proof.New(ops...)
}
