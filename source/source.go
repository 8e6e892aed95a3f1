// Package source turns command line arguments into leaves and proofs.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frankonly/upstamp/crypto"
	"github.com/frankonly/upstamp/proof"
)

// ErrUnresolvedLeaf is returned when an argument is neither a digest nor a readable file
var ErrUnresolvedLeaf = errors.New("argument is neither a hex digest nor a readable file")

// Fetcher downloads a serialized proof
type Fetcher interface {
	FetchProof(ctx context.Context, url string) ([]byte, error)
}

// IsURL reports whether arg names a remote proof
func IsURL(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsDigest reports whether arg is written as a hex digest
func IsDigest(arg string) bool {
	_, err := crypto.FromHex(arg)
	return err == nil
}

// Leaf resolves arg to a leaf digest. A 64 character hex string is taken
// as the digest itself, anything else is hashed as a file path.
func Leaf(arg string) (crypto.Digest, error) {
	if d, err := crypto.FromHex(arg); err == nil {
		return d, nil
	}

	d, err := crypto.HashFile(arg)
	if err != nil {
		return crypto.Digest{}, fmt.Errorf("%w: %q: %w", ErrUnresolvedLeaf, arg, err)
	}

	return d, nil
}

// Proof loads and parses the proof named by arg, fetching it when arg is a
// URL. The raw bytes are returned alongside so callers can cache them.
func Proof(ctx context.Context, arg string, fetcher Fetcher) (*proof.Proof, []byte, error) {
	var raw []byte
	var err error
	if IsURL(arg) {
		if fetcher == nil {
			return nil, nil, fmt.Errorf("cannot fetch %s: no proof fetcher configured", arg)
		}
		raw, err = fetcher.FetchProof(ctx, arg)
	} else {
		raw, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, nil, err
	}

	p, err := proof.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", arg, err)
	}

	return p, raw, nil
}
