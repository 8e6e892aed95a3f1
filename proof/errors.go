package proof

import (
	"errors"
	"fmt"

	"github.com/frankonly/upstamp/crypto"
)

var (
	ErrMalformedProof  = errors.New("malformed proof")
	ErrInvalidRelation = errors.New("invalid relation")
	ErrRootMismatch    = errors.New("root mismatch")
)

// MismatchError is returned for a well-formed proof that derives a root
// other than the expected one
type MismatchError struct {
	Derived  crypto.Digest
	Expected crypto.Digest
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: derived %s, expected %s", ErrRootMismatch.Error(), e.Derived.Hex(), e.Expected.Hex())
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrRootMismatch
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedProof, fmt.Sprintf(format, args...))
}
