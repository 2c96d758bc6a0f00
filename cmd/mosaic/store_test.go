package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilematch/blobstore"
	tmminio "github.com/hupe1980/tilematch/blobstore/minio"
	tms3 "github.com/hupe1980/tilematch/blobstore/s3"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Local", func(t *testing.T) {
		root := t.TempDir()
		s, err := openStore(ctx, StoreConfig{Kind: "local", Root: root})
		require.NoError(t, err)
		local, ok := s.(*blobstore.LocalStore)
		require.True(t, ok)
		assert.Equal(t, root, local.Root())
	})

	t.Run("MinIO", func(t *testing.T) {
		s, err := openStore(ctx, StoreConfig{Kind: "minio", Endpoint: "localhost:9000", Bucket: "tiles"})
		require.NoError(t, err)
		assert.IsType(t, &tmminio.Store{}, s)
	})

	t.Run("S3", func(t *testing.T) {
		s, err := openStore(ctx, StoreConfig{
			Kind:      "s3",
			Bucket:    "tiles",
			Region:    "us-east-1",
			Endpoint:  "http://localhost:4566",
			AccessKey: "test",
			SecretKey: "test",
		})
		require.NoError(t, err)
		assert.IsType(t, &tms3.Store{}, s)
	})

	t.Run("Cached", func(t *testing.T) {
		cacheDir := t.TempDir()
		s, err := openStore(ctx, StoreConfig{
			Kind:     "minio",
			Endpoint: "localhost:9000",
			Bucket:   "tiles",
			CacheDir: cacheDir,
		})
		require.NoError(t, err)
		assert.IsType(t, &blobstore.CachingStore{}, s)

		// The local store is never cached.
		s, err = openStore(ctx, StoreConfig{Kind: "local", Root: t.TempDir(), CacheDir: cacheDir})
		require.NoError(t, err)
		assert.IsType(t, &blobstore.LocalStore{}, s)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := openStore(ctx, StoreConfig{Kind: "ftp"})
		assert.ErrorIs(t, err, ErrInvalidStoreKind)
	})
}
