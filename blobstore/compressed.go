package blobstore

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/pakgo/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a whole-blob codec used by CompressedStore.
// Implementations must be safe for concurrent use.
type Compression interface {
	// Name identifies the codec, e.g. "zstd".
	Name() string

	// Compress returns the compressed form of src.
	Compress(src []byte) ([]byte, error)

	// Decompress returns the original bytes for a payload produced by Compress.
	Decompress(src []byte) ([]byte, error)
}

// NewZstdCompression returns a zstd Compression backed by shared
// encoder/decoder instances.
func NewZstdCompression() Compression {
	// Static default options cannot fail.
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &zstdCompression{enc: enc, dec: dec}
}

type zstdCompression struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (c *zstdCompression) Name() string { return "zstd" }

func (c *zstdCompression) Compress(src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, nil), nil
}

func (c *zstdCompression) Decompress(src []byte) ([]byte, error) {
	return c.dec.DecodeAll(src, nil)
}

// NewLZ4Compression returns an lz4 Compression using the frame format.
func NewLZ4Compression() Compression {
	return lz4Compression{}
}

type lz4Compression struct{}

func (lz4Compression) Name() string { return "lz4" }

func (lz4Compression) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Compression) Decompress(src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

// CompressedStore wraps a Store and compresses blobs transparently.
// Put compresses before writing; Open decompresses into memory.
type CompressedStore struct {
	inner Store
	comp  Compression
	rc    *resource.Controller
}

// NewCompressedStore creates a new CompressedStore.
// rc accounts for the memory held by decompressed blobs and may be nil.
func NewCompressedStore(inner Store, comp Compression, rc *resource.Controller) *CompressedStore {
	return &CompressedStore{
		inner: inner,
		comp:  comp,
		rc:    rc,
	}
}

// Open opens a blob and decompresses it into an in-memory Blob.
func (s *CompressedStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	compressed, err := Bytes(b)
	if err != nil {
		return nil, err
	}

	raw, err := s.comp.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	size := int64(len(raw))
	if err := s.rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	return NewBytesBlob(raw, func() { s.rc.ReleaseMemory(size) }), nil
}

// Put compresses data and writes it to the inner store.
func (s *CompressedStore) Put(ctx context.Context, name string, data []byte) error {
	compressed, err := s.comp.Compress(data)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, name, compressed)
}

// Delete removes a blob.
func (s *CompressedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *CompressedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
