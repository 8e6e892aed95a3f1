package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := require.New(t)

	var zero Digest
	var one Digest
	one[DigestSize-1] = 1
	var twoFiftySix Digest
	twoFiftySix[DigestSize-2] = 1
	var max Digest
	for i := range max {
		max[i] = 0xff
	}

	r.Equal("0", zero.Decimal())
	r.Equal("1", one.Decimal())
	r.Equal("256", twoFiftySix.Decimal())
	r.Equal("115792089237316195423570985008687907853269984665640564039457584007913129639935", max.Decimal())

	r.Equal(strings.Repeat("0", 256), zero.Binary())
	r.Equal(strings.Repeat("0", 255)+"1", one.Binary())
	r.Equal(strings.Repeat("0", 247)+"100000000", twoFiftySix.Binary())
	r.Equal(strings.Repeat("1", 256), max.Binary())

	for _, f := range Formats {
		s, err := Render(one, f)
		r.NoError(err)
		r.NotEmpty(s)
	}

	s, err := Render(one, FormatHex)
	r.NoError(err)
	r.Equal(one.Hex(), s)

	_, err = Render(one, Format("base64"))
	r.True(errors.Is(err, ErrUnknownFormat))
}

func TestParseFormat(t *testing.T) {
	r := require.New(t)

	cases := map[string]Format{
		"hex":         FormatHex,
		"HEX":         FormatHex,
		"hexadecimal": FormatHex,
		"dec":         FormatDecimal,
		"decimal":     FormatDecimal,
		"bin":         FormatBinary,
		"Binary":      FormatBinary,
	}
	for in, want := range cases {
		f, err := ParseFormat(in)
		r.NoError(err)
		r.Equal(want, f)
	}

	_, err := ParseFormat("octal")
	r.True(errors.Is(err, ErrUnknownFormat))
}
