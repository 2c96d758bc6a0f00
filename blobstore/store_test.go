package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobfs "github.com/hupe1980/tilematch/internal/fs"
)

func testStore(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Open(ctx, "libraries/missing.tml")
	assert.ErrorIs(t, err, ErrNotFound)

	data := []byte("hello tiles")
	require.NoError(t, s.Put(ctx, "libraries/ascii.tml", data))
	require.NoError(t, s.Put(ctx, "libraries/photos.tml", []byte("x")))
	require.NoError(t, s.Put(ctx, "other.txt", []byte("y")))

	b, err := s.Open(ctx, "libraries/ascii.tml")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(len(data)), b.Size())

	got, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	rc, err := b.ReadRange(ctx, 6, 100)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("tiles"), part)

	rc, err = b.ReadRange(ctx, 100, 5)
	require.NoError(t, err)
	part, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, part)

	names, err := s.List(ctx, "libraries/")
	require.NoError(t, err)
	assert.Equal(t, []string{"libraries/ascii.tml", "libraries/photos.tml"}, names)

	// Overwrite.
	require.NoError(t, s.Put(ctx, "libraries/photos.tml", []byte("xyz")))
	b2, err := s.Open(ctx, "libraries/photos.tml")
	require.NoError(t, err)
	got, err = ReadAll(ctx, b2)
	require.NoError(t, err)
	require.NoError(t, b2.Close())
	assert.Equal(t, []byte("xyz"), got)

	require.NoError(t, s.Delete(ctx, "libraries/photos.tml"))
	require.NoError(t, s.Delete(ctx, "libraries/photos.tml"), "delete is idempotent")
	names, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"libraries/ascii.tml", "other.txt"}, names)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	testStore(t, s)
}

func TestLocalStore_MissingRoot(t *testing.T) {
	s := NewLocalStore(t.TempDir() + "/does-not-exist")
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "a", data))
	data[0] = 'z'

	b, err := s.Open(ctx, "a")
	require.NoError(t, err)
	got, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestLocalStore_FailedPutLeavesNoBlob(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "libraries/ascii.tml", []byte("v1")))

	ffs := blobfs.NewFaultyFS(nil)
	s.fs = ffs

	tests := []struct {
		name  string
		fault blobfs.Fault
	}{
		{"Write", blobfs.Fault{FailAfterBytes: 0}},
		{"Sync", blobfs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"Close", blobfs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"Rename", blobfs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := ".tmp-"
			if tt.fault.FailOnRename {
				pattern = "ascii.tml"
			}
			ffs.AddRule(pattern, tt.fault)
			t.Cleanup(func() { ffs.AddRule(pattern, blobfs.Fault{FailAfterBytes: -1}) })

			err := s.Put(ctx, "libraries/ascii.tml", []byte("version two"))
			assert.ErrorIs(t, err, blobfs.ErrInjected)

			names, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"libraries/ascii.tml"}, names, "no temp file is left behind")

			b, err := s.Open(ctx, "libraries/ascii.tml")
			require.NoError(t, err)
			defer b.Close()
			data, err := ReadAll(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, "v1", string(data), "the previous blob stays intact")
		})
	}
}
