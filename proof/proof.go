// Package proof implements Merkle inclusion proofs: an ordered list of
// sibling digests, each tagged with the side it is hashed on, that
// recomputes a root from a leaf.
package proof

import (
	"fmt"
	"strings"

	"github.com/frankonly/upstamp/crypto"
)

// MaxOperations bounds the length of a decoded proof
const MaxOperations = 256

// Proof is an immutable sequence of operations ordered from leaf to root.
// The zero value and nil are the empty proof.
type Proof struct {
	ops []Operation
}

// New validates ops and copies them into a proof
func New(ops ...Operation) (*Proof, error) {
	if len(ops) > MaxOperations {
		return nil, fmt.Errorf("%w: %d operations exceed the limit of %d", ErrMalformedProof, len(ops), MaxOperations)
	}

	p := &Proof{ops: make([]Operation, len(ops))}
	for i, op := range ops {
		if !op.relation.Valid() {
			return nil, fmt.Errorf("operation %d: %w: %#02x", i, ErrInvalidRelation, byte(op.relation))
		}
		p.ops[i] = op
	}

	return p, nil
}

// Len returns the number of operations
func (p *Proof) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ops)
}

// Operations returns a copy of the operations
func (p *Proof) Operations() []Operation {
	ops := make([]Operation, p.Len())
	if p != nil {
		copy(ops, p.ops)
	}
	return ops
}

// Equal reports whether both proofs hold the same operations in the same order
func (p *Proof) Equal(other *Proof) bool {
	if p.Len() != other.Len() {
		return false
	}

	for i := 0; i < p.Len(); i++ {
		if p.ops[i] != other.ops[i] {
			return false
		}
	}

	return true
}

// Derive folds leaf through the operations and returns the candidate root
func (p *Proof) Derive(leaf crypto.Digest) crypto.Digest {
	acc := leaf
	if p == nil {
		return acc
	}

	for _, op := range p.ops {
		acc = op.Apply(acc)
	}

	return acc
}

func (p *Proof) String() string {
	parts := make([]string, 0, p.Len())
	for _, op := range p.Operations() {
		parts = append(parts, op.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Result is the outcome of checking a proof against an anchored root
type Result struct {
	Included bool
	Root     crypto.Digest
	Expected crypto.Digest
}

// Err converts a negative result into a *MismatchError
func (r Result) Err() error {
	if r.Included {
		return nil
	}
	return &MismatchError{Derived: r.Root, Expected: r.Expected}
}

// Verify derives the root for leaf and compares it with expected.
// A structurally valid proof that misses the expected root is reported
// through Result, never as ErrMalformedProof.
func Verify(leaf crypto.Digest, p *Proof, expected crypto.Digest) Result {
	root := p.Derive(leaf)
	return Result{
		Included: root.Equal(expected),
		Root:     root,
		Expected: expected,
	}
}
