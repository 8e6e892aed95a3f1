package storage

import (
	"github.com/frankonly/upstamp/crypto"
)

const receiptPrefix = "r"

func receiptKey(d crypto.Digest) []byte {
	return append([]byte(receiptPrefix), d[:]...)
}

func receiptDigest(key []byte) (crypto.Digest, error) {
	return crypto.FromBytes(key[len(receiptPrefix):])
}
