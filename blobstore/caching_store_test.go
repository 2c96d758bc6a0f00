package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilematch/resource"
)

// countingStore counts ranged reads that reach the wrapped store.
type countingStore struct {
	BlobStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	b.reads.Add(1)
	return b.Blob.ReadRange(ctx, off, length)
}

func readAll(t *testing.T, s BlobStore, name string) []byte {
	t.Helper()
	b, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer b.Close()
	data, err := ReadAll(context.Background(), b)
	require.NoError(t, err)
	return data
}

func TestCachingStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		testStore(t, NewCachingStore(NewMemoryStore(), NewMemoryCache(1<<20, nil)))
	})

	t.Run("Disk", func(t *testing.T) {
		c, err := NewDiskCache(t.TempDir(), 1<<20)
		require.NoError(t, err)
		testStore(t, NewCachingStore(NewMemoryStore(), c))
	})
}

func TestCachingStore_ServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{BlobStore: NewMemoryStore()}
	s := NewCachingStore(inner, NewMemoryCache(1<<20, nil))
	defer s.Close()

	require.NoError(t, s.Put(ctx, "libraries/ascii.tml", []byte("0123456789")))

	// Header probes before the first full read go to the inner store.
	b, err := s.Open(ctx, "libraries/ascii.tml")
	require.NoError(t, err)
	rc, err := b.ReadRange(ctx, 0, 4)
	require.NoError(t, err)
	head, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))
	require.NoError(t, b.Close())
	assert.Equal(t, int64(1), inner.reads.Load())

	assert.Equal(t, "0123456789", string(readAll(t, s, "libraries/ascii.tml")))
	assert.Equal(t, "0123456789", string(readAll(t, s, "libraries/ascii.tml")))
	assert.Equal(t, int64(2), inner.reads.Load())
	hits, misses := s.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)

	// Ranged reads of a cached blob never reach the inner store.
	b, err = s.Open(ctx, "libraries/ascii.tml")
	require.NoError(t, err)
	rc, err = b.ReadRange(ctx, 6, 100)
	require.NoError(t, err)
	tail, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, "6789", string(tail))
	assert.Equal(t, int64(2), inner.reads.Load())
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	s := NewCachingStore(inner, NewMemoryCache(1<<20, nil))

	require.NoError(t, s.Put(ctx, "a.tml", []byte("aaaa")))
	assert.Equal(t, "aaaa", string(readAll(t, s, "a.tml")))

	// Same size, new content.
	require.NoError(t, s.Put(ctx, "a.tml", []byte("bbbb")))
	assert.Equal(t, "bbbb", string(readAll(t, s, "a.tml")))

	// Replaced behind the cache's back with a different size.
	require.NoError(t, inner.Put(ctx, "a.tml", []byte("cc")))
	assert.Equal(t, "cc", string(readAll(t, s, "a.tml")))

	require.NoError(t, s.Delete(ctx, "a.tml"))
	_, err := s.Open(ctx, "a.tml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_MemoryBudget(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})
	inner := &countingStore{BlobStore: NewMemoryStore()}
	s := NewCachingStore(inner, NewMemoryCache(1<<20, rc))

	require.NoError(t, inner.Put(ctx, "big.tml", []byte("0123456789")))
	readAll(t, s, "big.tml")
	readAll(t, s, "big.tml")

	// Over budget: every read goes through.
	assert.Equal(t, int64(2), inner.reads.Load())
	assert.Zero(t, rc.MemoryUsage())
}
