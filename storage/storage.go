package storage

import "fmt"

var (
	ErrNotFound       = fmt.Errorf("not found")
	ErrInvalidReceipt = fmt.Errorf("invalid receipt")
)

type KvStore interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// Iterate calls fn for every key starting with prefix, in key order
	Iterate(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
