package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/frankonly/upstamp/crypto"
)

// Receipt records one submission to a stamping server
type Receipt struct {
	Hash      crypto.Digest `json:"hash"`
	URL       string        `json:"url"`
	Source    string        `json:"source,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	// Proof caches the serialized proof once it has been fetched
	Proof          []byte     `json:"proof,omitempty"`
	ProofFetchedAt *time.Time `json:"proof_fetched_at,omitempty"`
}

// ReceiptStore keeps receipts keyed by the stamped digest
type ReceiptStore struct {
	db KvStore
}

func NewReceiptStore(db KvStore) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// OpenReceiptStore opens or creates a LevelDB backed store at path
func OpenReceiptStore(path string) (*ReceiptStore, error) {
	db, err := NewLevelDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt store at %s: %w", path, err)
	}

	return NewReceiptStore(db), nil
}

// Put inserts or replaces the receipt for r.Hash
func (s *ReceiptStore) Put(r *Receipt) error {
	if r.URL == "" {
		return fmt.Errorf("%w: %s has no proof url", ErrInvalidReceipt, r.Hash.Hex())
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Put(receiptKey(r.Hash), value)
}

// Get returns the receipt of d, or ErrNotFound
func (s *ReceiptStore) Get(d crypto.Digest) (*Receipt, error) {
	value, err := s.db.Get(receiptKey(d))
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", d.Hex(), err)
	}

	return decodeReceipt(d, value)
}

// AttachProof caches a fetched proof on an existing receipt
func (s *ReceiptStore) AttachProof(d crypto.Digest, raw []byte) error {
	r, err := s.Get(d)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	r.Proof = append([]byte(nil), raw...)
	r.ProofFetchedAt = &now
	return s.Put(r)
}

// List returns every receipt, oldest first
func (s *ReceiptStore) List() ([]*Receipt, error) {
	var receipts []*Receipt
	err := s.db.Iterate([]byte(receiptPrefix), func(key, value []byte) error {
		d, err := receiptDigest(key)
		if err != nil {
			return fmt.Errorf("%w: key %x: %s", ErrInvalidReceipt, key, err.Error())
		}

		r, err := decodeReceipt(d, value)
		if err != nil {
			return err
		}

		receipts = append(receipts, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(receipts, func(i, j int) bool {
		if !receipts[i].CreatedAt.Equal(receipts[j].CreatedAt) {
			return receipts[i].CreatedAt.Before(receipts[j].CreatedAt)
		}
		return bytes.Compare(receipts[i].Hash[:], receipts[j].Hash[:]) < 0
	})

	return receipts, nil
}

func (s *ReceiptStore) Delete(d crypto.Digest) error {
	return s.db.Delete(receiptKey(d))
}

func (s *ReceiptStore) Close() error {
	return s.db.Close()
}

func decodeReceipt(d crypto.Digest, value []byte) (*Receipt, error) {
	r := &Receipt{}
	if err := json.Unmarshal(value, r); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidReceipt, d.Hex(), err.Error())
	}
	if r.Hash != d {
		return nil, fmt.Errorf("%w: %s stored under %s", ErrInvalidReceipt, r.Hash.Hex(), d.Hex())
	}

	return r, nil
}
