package proof

import (
	"fmt"

	"github.com/frankonly/upstamp/crypto"
)

// Relation tells on which side of the accumulator a sibling sits.
// The values double as the wire tags: Left prepends the sibling,
// Right appends it.
type Relation byte

const (
	Left  Relation = 0xf1
	Right Relation = 0xf0
)

// Valid reports whether r is Left or Right
func (r Relation) Valid() bool {
	return r == Left || r == Right
}

func (r Relation) String() string {
	switch r {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("relation(%#02x)", byte(r))
	}
}

// Operation is one step from a node to its parent
type Operation struct {
	sibling  crypto.Digest
	relation Relation
}

// LeftOf returns the step for a sibling positioned left of the accumulator
func LeftOf(sibling crypto.Digest) Operation {
	return Operation{sibling: sibling, relation: Left}
}

// RightOf returns the step for a sibling positioned right of the accumulator
func RightOf(sibling crypto.Digest) Operation {
	return Operation{sibling: sibling, relation: Right}
}

// NewOperation validates the relation tag
func NewOperation(sibling crypto.Digest, relation Relation) (Operation, error) {
	if !relation.Valid() {
		return Operation{}, fmt.Errorf("%w: %#02x", ErrInvalidRelation, byte(relation))
	}

	return Operation{sibling: sibling, relation: relation}, nil
}

func (op Operation) Sibling() crypto.Digest {
	return op.sibling
}

func (op Operation) Relation() Relation {
	return op.relation
}

// Apply hashes the accumulator together with the sibling, in the order
// given by the relation. An Operation that did not come from one of the
// constructors has no relation and panics.
func (op Operation) Apply(acc crypto.Digest) crypto.Digest {
	switch op.relation {
	case Left:
		return crypto.HashNodes(op.sibling, acc)
	case Right:
		return crypto.HashNodes(acc, op.sibling)
	default:
		panic(fmt.Sprintf("proof: apply with %s", op.relation))
	}
}

func (op Operation) String() string {
	return op.relation.String() + ":" + op.sibling.Hex()
}
