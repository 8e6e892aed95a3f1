package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// DigestSize is the length of a SHA256 digest in bytes
const DigestSize = sha256.Size

var (
	ErrInvalidLength = errors.New("invalid digest length")
	ErrParse         = errors.New("invalid digest encoding")
)

// Digest is a SHA256 digest, compared and copied by value
type Digest [DigestSize]byte

// FromBytes copies raw into a Digest, raw must be exactly DigestSize bytes
func FromBytes(raw []byte) (Digest, error) {
	var d Digest
	if len(raw) != DigestSize {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(raw), DigestSize)
	}

	copy(d[:], raw)
	return d, nil
}

// FromHex parses exactly 2*DigestSize hexadecimal characters
func FromHex(s string) (Digest, error) {
	var d Digest
	if len(s) != 2*DigestSize {
		return d, fmt.Errorf("%w: got %d characters, want %d", ErrParse, len(s), 2*DigestSize)
	}

	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("%w: %s", ErrParse, err.Error())
	}

	return d, nil
}

// Hex returns the lowercase hex form, always 64 characters
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// MarshalText renders the digest as hex, so it reads as a string in JSON
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Bytes returns a copy of the digest
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestSize)
	copy(b, d[:])
	return b
}

// Equal compares two digests in constant time
func (d Digest) Equal(other Digest) bool {
	return subtle.ConstantTimeCompare(d[:], other[:]) == 1
}

// Hash hashes bytes by SHA256
func Hash(value []byte) Digest {
	return sha256.Sum256(value)
}

// HashNodes hashes two nodes into one, left bytes first
func HashNodes(left, right Digest) Digest {
	var buf [2 * DigestSize]byte
	copy(buf[:DigestSize], left[:])
	copy(buf[DigestSize:], right[:])
	return sha256.Sum256(buf[:])
}

// HashReader hashes everything read from r
func HashReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, err
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// HashFile streams the file at path through SHA256
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	d, err := HashReader(f)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return d, nil
}
