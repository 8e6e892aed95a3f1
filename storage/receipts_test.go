package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frankonly/upstamp/crypto"
)

func TestReceiptStore(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), testDB)
	store, err := OpenReceiptStore(path)
	r.NoError(err)

	d := crypto.Hash([]byte("content"))
	_, err = store.Get(d)
	r.True(errors.Is(err, ErrNotFound))

	receipt := &Receipt{Hash: d, URL: "http://localhost:10000/proof/1", Source: "content.txt"}
	r.NoError(store.Put(receipt))
	r.False(receipt.CreatedAt.IsZero())

	got, err := store.Get(d)
	r.NoError(err)
	r.Equal(d, got.Hash)
	r.Equal(receipt.URL, got.URL)
	r.Equal("content.txt", got.Source)
	r.True(receipt.CreatedAt.Equal(got.CreatedAt))
	r.Nil(got.Proof)
	r.Nil(got.ProofFetchedAt)

	raw := []byte{0x08, 0x01, 0x10, 0x00}
	r.NoError(store.AttachProof(d, raw))
	got, err = store.Get(d)
	r.NoError(err)
	r.Equal(raw, got.Proof)
	r.NotNil(got.ProofFetchedAt)

	err = store.AttachProof(crypto.Hash([]byte("unknown")), raw)
	r.True(errors.Is(err, ErrNotFound))

	r.NoError(store.Delete(d))
	_, err = store.Get(d)
	r.True(errors.Is(err, ErrNotFound))

	r.NoError(store.Close())
}

func TestReceiptStoreRejectsMissingURL(t *testing.T) {
	r := require.New(t)

	store, err := OpenReceiptStore(filepath.Join(t.TempDir(), testDB))
	r.NoError(err)
	defer store.Close()

	err = store.Put(&Receipt{Hash: crypto.Hash([]byte("x"))})
	r.True(errors.Is(err, ErrInvalidReceipt))
}

func TestReceiptStoreListAndReopen(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), testDB)
	store, err := OpenReceiptStore(path)
	r.NoError(err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	digests := []crypto.Digest{
		crypto.Hash([]byte("third")),
		crypto.Hash([]byte("first")),
		crypto.Hash([]byte("second")),
	}
	offsets := []time.Duration{2 * time.Minute, 0, time.Minute}
	for i, d := range digests {
		r.NoError(store.Put(&Receipt{Hash: d, URL: "http://proofs/" + d.Hex(), CreatedAt: base.Add(offsets[i])}))
	}

	// a foreign key outside the receipt prefix is ignored
	r.NoError(store.db.Put([]byte("zzz"), []byte("not a receipt")))
	r.NoError(store.Close())

	store, err = OpenReceiptStore(path)
	r.NoError(err)
	defer store.Close()

	list, err := store.List()
	r.NoError(err)
	r.Len(list, 3)

	r.Equal(digests[1], list[0].Hash)
	r.Equal(digests[2], list[1].Hash)
	r.Equal(digests[0], list[2].Hash)
	r.True(list[0].CreatedAt.Equal(base))
	for _, receipt := range list {
		r.Equal("http://proofs/"+receipt.Hash.Hex(), receipt.URL)
	}
}

func TestReceiptStoreCorruptValue(t *testing.T) {
	r := require.New(t)

	store, err := OpenReceiptStore(filepath.Join(t.TempDir(), testDB))
	r.NoError(err)
	defer store.Close()

	d := crypto.Hash([]byte("corrupt"))
	r.NoError(store.db.Put(receiptKey(d), []byte("{")))

	_, err = store.Get(d)
	r.True(errors.Is(err, ErrInvalidReceipt))

	_, err = store.List()
	r.True(errors.Is(err, ErrInvalidReceipt))

	other := crypto.Hash([]byte("other"))
	r.NoError(store.Put(&Receipt{Hash: other, URL: "http://x"}))
	value, err := store.db.Get(receiptKey(other))
	r.NoError(err)
	r.NoError(store.db.Put(receiptKey(d), value))
	_, err = store.Get(d)
	r.True(errors.Is(err, ErrInvalidReceipt))
}
