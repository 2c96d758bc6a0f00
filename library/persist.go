package library

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/tilematch/blobstore"
	"github.com/hupe1980/tilematch/codec"
	"github.com/hupe1980/tilematch/internal/conv"
	"github.com/hupe1980/tilematch/internal/hash"
	"github.com/hupe1980/tilematch/resource"
)

// File layout:
//
//	magic "TMLB" | version u8 | compression u8 | codec name length u16le | codec name | payload | crc32c u32le
//
// The payload is the codec encoding of Library, compressed as recorded. The
// trailing CRC32-C covers every byte before it.
const (
	magic = "TMLB"

	// FormatVersion is the current on-disk version.
	FormatVersion uint8 = 1

	fixedHeaderSize = 8
	trailerSize     = 4
)

var (
	// ErrCorrupt is returned for files that are not tile libraries.
	ErrCorrupt = errors.New("library: corrupt library file")

	// ErrUnsupportedVersion is returned for files written by a newer format.
	ErrUnsupportedVersion = errors.New("library: unsupported format version")

	// ErrUnknownCodec is returned when the recorded codec is not built in.
	ErrUnknownCodec = errors.New("library: unknown codec")
)

// Header describes a persisted library without decoding it.
type Header struct {
	Version     uint8
	Compression codec.Compression
	Codec       string
	// Size is the total file size in bytes.
	Size int64
	// Checksum is the stored CRC32-C of the file.
	Checksum uint32
}

// Encode serializes lib with c and compresses the payload with comp.
func Encode(lib *Library, c codec.Codec, comp codec.Compression) ([]byte, error) {
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	nameLen, err := conv.IntToUint16(len(name))
	if err != nil {
		return nil, fmt.Errorf("%w: codec name: %w", ErrUnknownCodec, err)
	}

	raw, err := c.Marshal(lib)
	if err != nil {
		return nil, fmt.Errorf("marshal library: %w", err)
	}
	payload, err := codec.Compress(comp, raw)
	if err != nil {
		return nil, fmt.Errorf("compress library: %w", err)
	}

	out := make([]byte, 0, fixedHeaderSize+len(name)+len(payload)+trailerSize)
	out = append(out, magic...)
	out = append(out, FormatVersion, byte(comp))
	out = binary.LittleEndian.AppendUint16(out, nameLen)
	out = append(out, name...)
	out = append(out, payload...)
	out = binary.LittleEndian.AppendUint32(out, hash.CRC32C(out))
	return out, nil
}

// Decode parses a file produced by Encode.
func Decode(data []byte) (*Library, Header, error) {
	h, n, err := parseHeader(data)
	if err != nil {
		return nil, Header{}, err
	}
	h.Size = int64(len(data))

	if len(data) < n+trailerSize {
		return nil, h, ErrCorrupt
	}
	body := data[:len(data)-trailerSize]
	h.Checksum = binary.LittleEndian.Uint32(data[len(body):])
	if got := hash.CRC32C(body); got != h.Checksum {
		return nil, h, fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, got, h.Checksum)
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}
	raw, err := codec.Decompress(h.Compression, body[n:])
	if err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var lib Library
	if err := c.Unmarshal(raw, &lib); err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := lib.Validate(); err != nil {
		return nil, h, err
	}
	return &lib, h, nil
}

// parseHeader returns the header and the offset of the payload.
func parseHeader(data []byte) (Header, int, error) {
	if len(data) < fixedHeaderSize || string(data[:4]) != magic {
		return Header{}, 0, ErrCorrupt
	}
	h := Header{
		Version:     data[4],
		Compression: codec.Compression(data[5]),
	}
	if h.Version == 0 || h.Version > FormatVersion {
		return h, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	nameLen := int(binary.LittleEndian.Uint16(data[6:8]))
	if len(data) < fixedHeaderSize+nameLen {
		return h, 0, ErrCorrupt
	}
	h.Codec = string(data[fixedHeaderSize : fixedHeaderSize+nameLen])
	return h, fixedHeaderSize + nameLen, nil
}

// Save encodes lib and writes it to store under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, lib *Library, c codec.Codec, comp codec.Compression) error {
	data, err := Encode(lib, c, comp)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("save library %s: %w", name, err)
	}
	return nil
}

// Load reads and decodes the library stored under name. With a controller,
// the read is charged against its IO rate and the file size against its
// memory budget while decoding.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Library, Header, error) {
	o := applyOptions(optFns)

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, Header{}, fmt.Errorf("open library %s: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()
	if err := o.controller.AcquireMemory(size); err != nil {
		return nil, Header{}, fmt.Errorf("load library %s: %w", name, err)
	}
	defer o.controller.ReleaseMemory(size)

	rc, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, Header{}, fmt.Errorf("read library %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, rc, o.controller))
	if err != nil {
		return nil, Header{}, fmt.Errorf("read library %s: %w", name, err)
	}

	lib, h, err := Decode(data)
	if err != nil {
		return nil, h, fmt.Errorf("decode library %s: %w", name, err)
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "loaded tile library",
		slog.String("name", name),
		slog.Int("tiles", lib.Len()),
		slog.Int64("bytes", size),
		slog.String("codec", h.Codec),
		slog.String("compression", h.Compression.String()),
	)
	return lib, h, nil
}

// Stat reads only the header and checksum of the library stored under name.
// It does not verify the checksum.
func Stat(ctx context.Context, store blobstore.BlobStore, name string) (Header, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("open library %s: %w", name, err)
	}
	defer blob.Close()

	read := func(off, n int64) ([]byte, error) {
		rc, err := blob.ReadRange(ctx, off, n)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	fixed, err := read(0, fixedHeaderSize)
	if err != nil {
		return Header{}, err
	}
	if len(fixed) < fixedHeaderSize {
		return Header{}, ErrCorrupt
	}
	nameLen := int64(binary.LittleEndian.Uint16(fixed[6:8]))
	rest, err := read(fixedHeaderSize, nameLen)
	if err != nil {
		return Header{}, err
	}

	h, n, err := parseHeader(append(fixed, rest...))
	if err != nil {
		return h, err
	}
	h.Size = blob.Size()
	if h.Size < int64(n+trailerSize) {
		return h, ErrCorrupt
	}
	sum, err := read(h.Size-trailerSize, trailerSize)
	if err != nil {
		return h, err
	}
	if len(sum) != trailerSize {
		return h, ErrCorrupt
	}
	h.Checksum = binary.LittleEndian.Uint32(sum)
	return h, nil
}
