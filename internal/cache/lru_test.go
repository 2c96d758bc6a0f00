package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilematch/resource"
)

func TestLRU(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(10, nil)

	k1 := Key{Path: "a", Size: 4}
	k2 := Key{Path: "b", Size: 4}
	k3 := Key{Path: "c", Size: 4}

	c.Set(ctx, k1, []byte("aaaa"))
	c.Set(ctx, k2, []byte("bbbb"))

	got, ok := c.Get(ctx, k1)
	require.True(t, ok)
	assert.Equal(t, "aaaa", string(got))

	// k2 is now least recently used.
	c.Set(ctx, k3, []byte("cccc"))
	_, ok = c.Get(ctx, k2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, k1)
	assert.True(t, ok)
	assert.Equal(t, int64(8), c.Size())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("TooLarge", func(t *testing.T) {
		c := NewLRU(3, nil)
		c.Set(ctx, Key{Path: "a", Size: 4}, []byte("aaaa"))
		assert.Zero(t, c.Size())
	})

	t.Run("Replace", func(t *testing.T) {
		c := NewLRU(10, nil)
		k := Key{Path: "a", Size: 2}
		c.Set(ctx, k, []byte("xx"))
		c.Set(ctx, k, []byte("yy"))
		got, ok := c.Get(ctx, k)
		require.True(t, ok)
		assert.Equal(t, "yy", string(got))
		assert.Equal(t, int64(2), c.Size())
	})
}

func TestLRU_MemoryBudget(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 6})
	c := NewLRU(100, rc)

	c.Set(ctx, Key{Path: "a", Size: 4}, []byte("aaaa"))
	assert.Equal(t, int64(4), rc.MemoryUsage())

	// Over budget: skipped, not an error.
	c.Set(ctx, Key{Path: "b", Size: 4}, []byte("bbbb"))
	_, ok := c.Get(ctx, Key{Path: "b", Size: 4})
	assert.False(t, ok)
	assert.Equal(t, int64(4), rc.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Zero(t, rc.MemoryUsage())
	assert.Zero(t, c.Size())
}

func TestLRU_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(100, nil)
	c.Set(ctx, Key{Path: "libraries/a.tml", Size: 1}, []byte("a"))
	c.Set(ctx, Key{Path: "libraries/a.tml", Size: 2}, []byte("aa"))
	c.Set(ctx, Key{Path: "libraries/b.tml", Size: 1}, []byte("b"))

	c.Invalidate(func(k Key) bool { return k.Path == "libraries/a.tml" })

	_, ok := c.Get(ctx, Key{Path: "libraries/a.tml", Size: 1})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Path: "libraries/b.tml", Size: 1})
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Size())
}
