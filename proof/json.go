package proof

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/frankonly/upstamp/crypto"
)

type jsonProof struct {
	Version    *uint64         `json:"version"`
	Count      *uint64         `json:"count"`
	Operations []jsonOperation `json:"operations"`
}

// jsonOperation carries exactly one of its sides
type jsonOperation struct {
	Left  *string `json:"left,omitempty"`
	Right *string `json:"right,omitempty"`
}

// MarshalJSON encodes the proof as served by proof endpoints
func (p *Proof) MarshalJSON() ([]byte, error) {
	ops := p.Operations()
	version := uint64(Version)
	count := uint64(len(ops))

	out := jsonProof{
		Version:    &version,
		Count:      &count,
		Operations: make([]jsonOperation, 0, len(ops)),
	}
	for _, op := range ops {
		sibling := op.sibling.Hex()
		if op.relation == Left {
			out.Operations = append(out.Operations, jsonOperation{Left: &sibling})
		} else {
			out.Operations = append(out.Operations, jsonOperation{Right: &sibling})
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON replaces p with the proof decoded from data
func (p *Proof) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var in jsonProof
	if err := dec.Decode(&in); err != nil {
		return malformed("json: %s", err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return malformed("json: trailing data after proof")
	}

	switch {
	case in.Version == nil:
		return malformed("missing version")
	case *in.Version != Version:
		return malformed("unsupported version %d", *in.Version)
	case in.Count == nil:
		return malformed("missing operation count")
	case *in.Count > MaxOperations:
		return malformed("%d operations exceed the limit of %d", *in.Count, MaxOperations)
	case *in.Count != uint64(len(in.Operations)):
		return malformed("declared %d operations, found %d", *in.Count, len(in.Operations))
	}

	ops := make([]Operation, 0, len(in.Operations))
	for i, o := range in.Operations {
		var hexSibling string
		var relation Relation
		switch {
		case o.Left != nil && o.Right == nil:
			hexSibling, relation = *o.Left, Left
		case o.Right != nil && o.Left == nil:
			hexSibling, relation = *o.Right, Right
		default:
			return malformed("operation %d: want exactly one of left or right", i)
		}

		sibling, err := crypto.FromHex(hexSibling)
		if err != nil {
			return malformed("operation %d: %s", i, err.Error())
		}

		ops = append(ops, Operation{sibling: sibling, relation: relation})
	}

	p.ops = ops
	return nil
}
