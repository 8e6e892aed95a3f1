package proof

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/frankonly/upstamp/crypto"
)

// Version is the only encoding version understood by this package
const Version = 1

// Binary layout, a protobuf wire message with a fixed field order:
//
//	1: varint  version
//	2: varint  operation count
//	3: bytes   operation, repeated count times: relation tag || sibling
const (
	fieldVersion   protowire.Number = 1
	fieldCount     protowire.Number = 2
	fieldOperation protowire.Number = 3

	operationSize = 1 + crypto.DigestSize
)

// MarshalBinary encodes the proof in its canonical binary form
func (p *Proof) MarshalBinary() ([]byte, error) {
	ops := p.Operations()

	b := make([]byte, 0, 8+len(ops)*(operationSize+2))
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, fieldCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(ops)))

	var raw [operationSize]byte
	for _, op := range ops {
		raw[0] = byte(op.relation)
		copy(raw[1:], op.sibling[:])
		b = protowire.AppendTag(b, fieldOperation, protowire.BytesType)
		b = protowire.AppendBytes(b, raw[:])
	}

	return b, nil
}

// UnmarshalBinary replaces p with the proof decoded from data
func (p *Proof) UnmarshalBinary(data []byte) error {
	ops, err := decodeBinary(data)
	if err != nil {
		return err
	}

	p.ops = ops
	return nil
}

// MarshalText encodes the binary form as lowercase hex
func (p *Proof) MarshalText() ([]byte, error) {
	raw, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}

	text := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(text, raw)
	return text, nil
}

// UnmarshalText decodes a hex armoured binary proof
func (p *Proof) UnmarshalText(text []byte) error {
	text = bytes.TrimSpace(text)
	raw := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(raw, text); err != nil {
		return malformed("hex armour: %s", err.Error())
	}

	return p.UnmarshalBinary(raw)
}

// Parse decodes a proof in any supported encoding: JSON, hex armour or binary
func Parse(data []byte) (*Proof, error) {
	trimmed := bytes.TrimSpace(data)

	p := &Proof{}
	var err error
	switch {
	case len(trimmed) == 0:
		return nil, malformed("empty input")
	case trimmed[0] == '{':
		err = p.UnmarshalJSON(data)
	case isHex(trimmed):
		err = p.UnmarshalText(trimmed)
	default:
		err = p.UnmarshalBinary(data)
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

func decodeBinary(data []byte) ([]Operation, error) {
	if len(data) == 0 {
		return nil, malformed("empty input")
	}

	version, b, err := consumeVarint(data, fieldVersion)
	if err != nil {
		return nil, malformed("version: %s", err.Error())
	}
	if version != Version {
		return nil, malformed("unsupported version %d", version)
	}

	count, b, err := consumeVarint(b, fieldCount)
	if err != nil {
		return nil, malformed("operation count: %s", err.Error())
	}
	if count > MaxOperations {
		return nil, malformed("%d operations exceed the limit of %d", count, MaxOperations)
	}

	ops := make([]Operation, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(b) == 0 {
			return nil, malformed("declared %d operations, found %d", count, i)
		}

		var raw []byte
		raw, b, err = consumeBytes(b, fieldOperation)
		if err != nil {
			return nil, malformed("operation %d: %s", i, err.Error())
		}

		op, err := decodeOperation(raw)
		if err != nil {
			return nil, malformed("operation %d: %s", i, err.Error())
		}
		ops = append(ops, op)
	}

	if len(b) != 0 {
		return nil, malformed("%d trailing bytes after %d operations", len(b), count)
	}

	return ops, nil
}

func decodeOperation(raw []byte) (Operation, error) {
	if len(raw) != operationSize {
		return Operation{}, fmt.Errorf("got %d bytes, want %d", len(raw), operationSize)
	}

	sibling, err := crypto.FromBytes(raw[1:])
	if err != nil {
		return Operation{}, err
	}

	return NewOperation(sibling, Relation(raw[0]))
}

func consumeTag(b []byte, num protowire.Number, typ protowire.Type) ([]byte, error) {
	gotNum, gotTyp, n := protowire.ConsumeTag(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	if n != protowire.SizeTag(gotNum) {
		return nil, fmt.Errorf("non-canonical tag")
	}
	if gotNum != num || gotTyp != typ {
		return nil, fmt.Errorf("unexpected field %d with wire type %d, want field %d", gotNum, gotTyp, num)
	}

	return b[n:], nil
}

func consumeVarint(b []byte, num protowire.Number) (uint64, []byte, error) {
	b, err := consumeTag(b, num, protowire.VarintType)
	if err != nil {
		return 0, nil, err
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	if n != protowire.SizeVarint(v) {
		return 0, nil, fmt.Errorf("non-canonical varint")
	}

	return v, b[n:], nil
}

func consumeBytes(b []byte, num protowire.Number) ([]byte, []byte, error) {
	b, err := consumeTag(b, num, protowire.BytesType)
	if err != nil {
		return nil, nil, err
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, nil, protowire.ParseError(n)
	}

	return v, b[n:], nil
}

func isHex(b []byte) bool {
	for _, c := range b {
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}
