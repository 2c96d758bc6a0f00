package cache

import "context"

// Key identifies a cached blob. A blob is treated as immutable for a given
// (Path, Size); a replacement of a different size is a miss.
type Key struct {
	Path string
	Size int64
}

// Cache is a byte cache for whole blobs.
// Returned slices must be treated as read-only.
type Cache interface {
	// Get returns a cached blob. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a blob. Implementations may retain b; the caller must not mutate it.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns hit and miss counts.
	Stats() (hits, misses int64)
	Close() error
}
