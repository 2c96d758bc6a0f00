package cache

import (
	"container/list"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	blobfs "github.com/hupe1980/tilematch/internal/fs"
)

// DiskConfig holds configuration for the disk cache.
type DiskConfig struct {
	// RootDir is the directory where cache files are stored.
	RootDir string
	// MaxSizeBytes is the maximum size of the cache in bytes.
	MaxSizeBytes int64
	// FS is used for writes. Defaults to the local file system.
	FS blobfs.FileSystem
}

// Disk is a Cache backed by the local file system. It keeps an in-memory
// LRU index of the files on disk.
//
// Entries are stored as <RootDir>/<Path>/<Size>.blob and written through a
// temporary file, so a crashed write never leaves a partial entry.
type Disk struct {
	mu          sync.Mutex
	rootDir     string
	maxSize     int64
	currentSize int64
	fs          blobfs.FileSystem

	items map[Key]*list.Element
	order *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type diskEntry struct {
	key      Key
	filePath string
}

// NewDisk creates a disk cache and indexes the files already present in RootDir.
func NewDisk(cfg DiskConfig) (*Disk, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("cache: empty root dir")
	}
	if cfg.FS == nil {
		cfg.FS = blobfs.Default
	}
	if err := cfg.FS.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, err
	}

	c := &Disk{
		rootDir: cfg.RootDir,
		maxSize: cfg.MaxSizeBytes,
		fs:      cfg.FS,
		items:   make(map[Key]*list.Element),
		order:   list.New(),
	}
	if err := c.scan(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.evictLocked(0)
	c.mu.Unlock()
	return c, nil
}

func (c *Disk) scan() error {
	return filepath.WalkDir(c.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".tmp-") {
			// Leftover of an interrupted write.
			_ = c.fs.Remove(path)
			return nil
		}
		key, ok := c.parsePath(path)
		if !ok {
			return nil
		}
		c.items[key] = c.order.PushBack(&diskEntry{key: key, filePath: path})
		c.currentSize += key.Size
		return nil
	})
}

func (c *Disk) filePath(key Key) (string, bool) {
	rel := filepath.FromSlash(key.Path)
	if key.Path == "" || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(c.rootDir, rel, fmt.Sprintf("%d.blob", key.Size)), true
}

func (c *Disk) parsePath(absPath string) (Key, bool) {
	rel, err := filepath.Rel(c.rootDir, absPath)
	if err != nil {
		return Key{}, false
	}
	dir, file := filepath.Split(rel)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" {
		return Key{}, false
	}

	var size int64
	if n, err := fmt.Sscanf(file, "%d.blob", &size); err != nil || n != 1 {
		return Key{}, false
	}
	if fmt.Sprintf("%d.blob", size) != file {
		return Key{}, false
	}
	return Key{Path: filepath.ToSlash(dir), Size: size}, true
}

// Get reads a cached blob from disk.
func (c *Disk) Get(_ context.Context, key Key) ([]byte, bool) {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(elem)
	path := elem.Value.(*diskEntry).filePath
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil || int64(len(data)) != key.Size {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur == elem {
			c.removeLocked(elem)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set writes a blob to disk. Blobs whose length differs from key.Size, or
// that exceed the cache size, are not cached.
func (c *Disk) Set(_ context.Context, key Key, b []byte) {
	if int64(len(b)) != key.Size || key.Size > c.maxSize {
		return
	}
	path, ok := c.filePath(key)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return
	}
	c.evictLocked(key.Size)

	if err := c.write(path, b); err != nil {
		return
	}
	c.items[key] = c.order.PushFront(&diskEntry{key: key, filePath: path})
	c.currentSize += key.Size
}

func (c *Disk) write(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := c.fs.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer c.fs.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return c.fs.Rename(tmp.Name(), path)
}

// evictLocked removes least recently used entries until incoming bytes fit.
func (c *Disk) evictLocked(incoming int64) {
	for c.currentSize+incoming > c.maxSize {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeLocked(elem)
	}
}

func (c *Disk) removeLocked(elem *list.Element) {
	e := elem.Value.(*diskEntry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.currentSize -= e.key.Size
	_ = c.fs.Remove(e.filePath)
}

// Invalidate removes entries matching the predicate, deleting their files.
func (c *Disk) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		if predicate(key) {
			c.removeLocked(elem)
		}
	}
}

func (c *Disk) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the bytes currently held on disk.
func (c *Disk) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Close keeps the files on disk for the next process.
func (c *Disk) Close() error {
	return nil
}
