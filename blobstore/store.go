package blobstore

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/hupe1980/pakgo/resource"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for storing and retrieving immutable data blobs
// (pak artifacts). Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Put writes a blob atomically. A blob never becomes visible half-written.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose contents are addressable
// as a single byte slice.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// Bytes returns the full contents of b. Zero-copy if b implements Mappable,
// otherwise the blob is read into a fresh slice.
func Bytes(b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}

	data := make([]byte, b.Size())
	if len(data) == 0 {
		return data, nil
	}
	if _, err := b.ReadAt(data, 0); err != nil {
		return nil, err
	}
	return data, nil
}

// BytesBlob is a Blob backed by an in-memory byte slice.
type BytesBlob struct {
	data    []byte
	release func()
	closed  atomic.Bool
}

// NewBytesBlob wraps data in a Blob. release, if non-nil, runs exactly once
// when the blob is closed.
func NewBytesBlob(data []byte, release func()) *BytesBlob {
	return &BytesBlob{data: data, release: release}
}

func (b *BytesBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *BytesBlob) Close() error {
	if b.closed.CompareAndSwap(false, true) && b.release != nil {
		b.release()
	}
	return nil
}

func (b *BytesBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *BytesBlob) Bytes() ([]byte, error) {
	return b.data, nil
}

// FetchAll reads exactly size bytes from r into a BytesBlob, reserving the
// memory with rc first and releasing it when the blob is closed. The read is
// throttled by rc's IO limit. A nil rc disables both.
func FetchAll(ctx context.Context, r io.Reader, size int64, rc *resource.Controller) (*BytesBlob, error) {
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, r, rc), data); err != nil {
		rc.ReleaseMemory(size)
		return nil, err
	}

	return NewBytesBlob(data, func() { rc.ReleaseMemory(size) }), nil
}
