package blobstore

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/tilematch/internal/cache"
	"github.com/hupe1980/tilematch/resource"
)

// Cache holds whole blobs read through a CachingStore.
type Cache = cache.Cache

// NewMemoryCache returns an LRU cache of at most capacity bytes. Entries are
// charged to rc's memory budget when rc is not nil.
func NewMemoryCache(capacity int64, rc *resource.Controller) Cache {
	return cache.NewLRU(capacity, rc)
}

// NewDiskCache returns a cache that keeps up to maxBytes of blobs under dir
// and survives process restarts.
func NewDiskCache(dir string, maxBytes int64) (Cache, error) {
	return cache.NewDisk(cache.DiskConfig{RootDir: dir, MaxSizeBytes: maxBytes})
}

// CachingStore wraps a BlobStore, typically a remote one, and serves
// repeated whole-blob reads from a Cache.
//
// Only reads covering the entire blob populate the cache. Smaller ranges,
// such as header probes, are served from the cache when the blob is
// already there and go to the inner store otherwise.
type CachingStore struct {
	inner BlobStore
	cache Cache
}

// NewCachingStore creates a new CachingStore.
func NewCachingStore(inner BlobStore, c Cache) *CachingStore {
	return &CachingStore{inner: inner, cache: c}
}

// Open opens the blob in the inner store. The cache key includes the blob
// size, so a replaced blob of a different size is never served stale.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner: b,
		cache: s.cache,
		key:   cache.Key{Path: name, Size: b.Size()},
	}, nil
}

// Put writes through to the inner store and drops cached copies of name.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete deletes from the inner store and drops cached copies of name.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// Close closes the cache.
func (s *CachingStore) Close() error {
	return s.cache.Close()
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(k cache.Key) bool { return k.Path == name })
}

type cachingBlob struct {
	inner Blob
	cache Cache
	key   cache.Key
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.key.Size
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if data, ok := b.cache.Get(ctx, b.key); ok {
		return sliceReader(data, off, length), nil
	}
	if off != 0 || length < b.key.Size {
		return b.inner.ReadRange(ctx, off, length)
	}

	data, err := ReadAll(ctx, b.inner)
	if err != nil {
		return nil, err
	}
	b.cache.Set(ctx, b.key, data)
	return sliceReader(data, off, length), nil
}

func sliceReader(data []byte, off, length int64) io.ReadCloser {
	if off >= int64(len(data)) {
		return io.NopCloser(bytes.NewReader(nil))
	}
	end := min(off+length, int64(len(data)))
	return io.NopCloser(bytes.NewReader(data[off:end]))
}
