package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Format selects a textual rendering of a digest
type Format string

const (
	FormatHex     Format = "hex"
	FormatDecimal Format = "dec"
	FormatBinary  Format = "bin"
)

var ErrUnknownFormat = errors.New("unknown digest format")

// Formats lists every supported rendering in display order
var Formats = []Format{FormatHex, FormatDecimal, FormatBinary}

// ParseFormat accepts the short and long names of a format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "hex", "hexadecimal":
		return FormatHex, nil
	case "dec", "decimal":
		return FormatDecimal, nil
	case "bin", "binary":
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Decimal renders the digest as a big-endian unsigned 256-bit integer
func (d Digest) Decimal() string {
	return new(uint256.Int).SetBytes32(d[:]).Dec()
}

// Binary renders the digest as 256 binary digits, most significant bit first
func (d Digest) Binary() string {
	var sb strings.Builder
	sb.Grow(DigestSize * 8)
	for _, b := range d {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// Render returns d in the requested format
func Render(d Digest, f Format) (string, error) {
	switch f {
	case FormatHex:
		return d.Hex(), nil
	case FormatDecimal:
		return d.Decimal(), nil
	case FormatBinary:
		return d.Binary(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
