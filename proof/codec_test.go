package proof

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankonly/upstamp/crypto"
)

func mustMarshalBinary(t *testing.T, p *Proof) []byte {
	raw, err := p.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func proofOfLength(t *testing.T, n int) *Proof {
	ops := make([]Operation, n)
	for i := range ops {
		sibling := crypto.Hash([]byte{byte(i), byte(i >> 8)})
		if i%3 == 0 {
			ops[i] = LeftOf(sibling)
		} else {
			ops[i] = RightOf(sibling)
		}
	}

	p, err := New(ops...)
	require.NoError(t, err)
	return p
}

func TestBinaryGolden(t *testing.T) {
	r := require.New(t)

	empty, err := New()
	r.NoError(err)
	r.Equal([]byte{0x08, 0x01, 0x10, 0x00}, mustMarshalBinary(t, empty))

	var sibling crypto.Digest
	sibling[0] = 0xaa
	p, err := New(RightOf(sibling), LeftOf(sibling))
	r.NoError(err)

	want := []byte{0x08, 0x01, 0x10, 0x02}
	want = append(want, 0x1a, 0x21, 0xf0)
	want = append(want, sibling[:]...)
	want = append(want, 0x1a, 0x21, 0xf1)
	want = append(want, sibling[:]...)
	r.Equal(want, mustMarshalBinary(t, p))
}

func TestRoundTrip(t *testing.T) {
	r := require.New(t)

	for _, n := range []int{0, 1, 2, 3, 17, 64, 127, 128, 200, MaxOperations} {
		p := proofOfLength(t, n)

		raw := mustMarshalBinary(t, p)
		q, err := Parse(raw)
		r.NoError(err, "binary, %d operations", n)
		r.True(p.Equal(q), "binary, %d operations", n)

		var b Proof
		r.NoError(b.UnmarshalBinary(raw))
		r.True(p.Equal(&b))

		text, err := p.MarshalText()
		r.NoError(err)
		q, err = Parse(text)
		r.NoError(err, "text, %d operations", n)
		r.True(p.Equal(q), "text, %d operations", n)

		data, err := json.Marshal(p)
		r.NoError(err)
		q, err = Parse(data)
		r.NoError(err, "json, %d operations", n)
		r.True(p.Equal(q), "json, %d operations", n)

		r.Equal(p.Derive(crypto.Hash(nil)), q.Derive(crypto.Hash(nil)))
	}
}

func TestParseTolerance(t *testing.T) {
	r := require.New(t)

	p := proofOfLength(t, 5)

	text, err := p.MarshalText()
	r.NoError(err)
	q, err := Parse([]byte("  " + strings.ToUpper(string(text)) + "\n"))
	r.NoError(err)
	r.True(p.Equal(q))

	data, err := json.MarshalIndent(p, "", "  ")
	r.NoError(err)
	q, err = Parse(append(data, '\n'))
	r.NoError(err)
	r.True(p.Equal(q))
}

func TestJSONShape(t *testing.T) {
	r := require.New(t)

	var left, right crypto.Digest
	left[31] = 1
	right[31] = 2
	p, err := New(LeftOf(left), RightOf(right))
	r.NoError(err)

	data, err := json.Marshal(p)
	r.NoError(err)
	r.JSONEq(`{"version":1,"count":2,"operations":[{"left":"`+left.Hex()+`"},{"right":"`+right.Hex()+`"}]}`, string(data))

	empty, err := New()
	r.NoError(err)
	data, err = json.Marshal(empty)
	r.NoError(err)
	r.JSONEq(`{"version":1,"count":0,"operations":[]}`, string(data))
}

func TestTruncationRejected(t *testing.T) {
	r := require.New(t)

	for _, n := range []int{0, 1, 4, 130} {
		raw := mustMarshalBinary(t, proofOfLength(t, n))
		for cut := 0; cut < len(raw); cut++ {
			_, err := Parse(raw[:cut])
			r.Error(err, "%d operations cut at %d", n, cut)
			r.True(errors.Is(err, ErrMalformedProof), "%d operations cut at %d", n, cut)
		}

		text, err := proofOfLength(t, n).MarshalText()
		r.NoError(err)
		_, err = Parse(text[:len(text)-1])
		r.True(errors.Is(err, ErrMalformedProof))

		data, err := json.Marshal(proofOfLength(t, n))
		r.NoError(err)
		_, err = Parse(data[:len(data)-1])
		r.True(errors.Is(err, ErrMalformedProof))
	}
}

func TestMalformedBinary(t *testing.T) {
	sibling := bytes.Repeat([]byte{0x11}, crypto.DigestSize)
	op := func(tag byte, sib []byte) []byte {
		b := []byte{0x1a, byte(1 + len(sib)), tag}
		return append(b, sib...)
	}
	header := func(version, count byte) []byte {
		return []byte{0x08, version, 0x10, count}
	}
	join := func(parts ...[]byte) []byte {
		return bytes.Join(parts, nil)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"unknown version", join(header(2, 0))},
		{"version zero", join(header(0, 0))},
		{"count larger than payload", join(header(1, 2), op(0xf0, sibling))},
		{"count smaller than payload", join(header(1, 1), op(0xf0, sibling), op(0xf1, sibling))},
		{"short sibling", join(header(1, 1), op(0xf0, sibling[:31]))},
		{"long sibling", join(header(1, 1), op(0xf0, append(sibling, 0x00)))},
		{"unknown relation", join(header(1, 1), op(0x08, sibling))},
		{"zero relation", join(header(1, 1), op(0x00, sibling))},
		{"trailing byte", join(header(1, 1), op(0xf1, sibling), []byte{0x00})},
		{"missing version", []byte{0x10, 0x00}},
		{"missing count", []byte{0x08, 0x01, 0x1a, 0x00}},
		{"swapped header", []byte{0x10, 0x00, 0x08, 0x01}},
		{"duplicate version", []byte{0x08, 0x01, 0x08, 0x01, 0x10, 0x00}},
		{"wrong wire type", []byte{0x0a, 0x01, 0x01, 0x10, 0x00}},
		{"non-canonical varint", []byte{0x08, 0x81, 0x00, 0x10, 0x00}},
		{"count over limit", []byte{0x08, 0x01, 0x10, 0x81, 0x02}},
		{"unknown field", join(header(1, 0), []byte{0x20, 0x01})},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := require.New(t)
			_, err := Parse(c.data)
			r.Error(err)
			r.True(errors.Is(err, ErrMalformedProof), err.Error())
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	sib := strings.Repeat("ab", crypto.DigestSize)

	cases := []struct {
		name string
		data string
	}{
		{"missing version", `{"count":0,"operations":[]}`},
		{"unknown version", `{"version":2,"count":0,"operations":[]}`},
		{"missing count", `{"version":1,"operations":[]}`},
		{"count mismatch", `{"version":1,"count":2,"operations":[{"left":"` + sib + `"}]}`},
		{"no side", `{"version":1,"count":1,"operations":[{}]}`},
		{"both sides", `{"version":1,"count":1,"operations":[{"left":"` + sib + `","right":"` + sib + `"}]}`},
		{"short sibling", `{"version":1,"count":1,"operations":[{"left":"abc"}]}`},
		{"non-hex sibling", `{"version":1,"count":1,"operations":[{"right":"` + strings.Repeat("zz", 32) + `"}]}`},
		{"unknown field", `{"version":1,"count":0,"operations":[],"root":"` + sib + `"}`},
		{"unknown side", `{"version":1,"count":1,"operations":[{"up":"` + sib + `"}]}`},
		{"trailing value", `{"version":1,"count":0,"operations":[]} {}`},
		{"trailing brace", `{"version":1,"count":0,"operations":[]}}`},
		{"not an object", `{"version":"1"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := require.New(t)
			_, err := Parse([]byte(c.data))
			r.Error(err)
			r.True(errors.Is(err, ErrMalformedProof), err.Error())
		})
	}
}

func TestMalformedText(t *testing.T) {
	r := require.New(t)

	for _, in := range []string{"", "   ", "0", "08011000ff", "0801100", "zz"} {
		_, err := Parse([]byte(in))
		r.Error(err, "input %q", in)
		r.True(errors.Is(err, ErrMalformedProof), "input %q", in)
	}

	raw := mustMarshalBinary(t, proofOfLength(t, 1))
	_, err := Parse([]byte(hex.EncodeToString(raw) + "00"))
	r.True(errors.Is(err, ErrMalformedProof))
}
