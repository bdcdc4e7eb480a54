package pakgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pakgo/blobstore"
	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/format"
	"github.com/hupe1980/pakgo/index"
	"github.com/hupe1980/pakgo/internal/mmap"
	"github.com/hupe1980/pakgo/query"
	"golang.org/x/sync/singleflight"
)

// Reader provides access to a finalized artifact. It is immutable and safe
// for arbitrary concurrent use; a single Reader can serve queries and gets
// from any number of goroutines.
//
// The directory loads eagerly at open. Per-key index runs parse lazily on
// first touch (deduplicated across goroutines) and stay cached, unless
// WithEagerIndexes moves that work to open time.
type Reader struct {
	data   []byte
	closer io.Closer
	source string

	footer format.Footer
	dir    []format.DirectoryEntry

	indexes sync.Map // key -> *index.Index
	group   singleflight.Group

	opts   options
	closed atomic.Bool
}

// OpenFile opens an artifact from the local filesystem, memory-mapped.
func OpenFile(path string, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)
	r, err := openFile(path, o)
	if err != nil {
		o.logger.LogOpen(path, 0, err)
		return nil, err
	}
	o.logger.LogOpen(path, r.footer.RecordCount, nil)
	return r, nil
}

func openFile(path string, o options) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(m.Bytes(), m, path, o)
	if err != nil {
		m.Close()
		return nil, err
	}
	return r, nil
}

// OpenBytes opens an artifact held in memory. The bytes are not copied; the
// caller must not mutate them while the Reader is in use.
func OpenBytes(data []byte, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)
	r, err := newReader(data, nil, "memory", o)
	if err != nil {
		o.logger.LogOpen("memory", 0, err)
		return nil, err
	}
	o.logger.LogOpen("memory", r.footer.RecordCount, nil)
	return r, nil
}

// Open opens an artifact from a blob. Open takes ownership of the blob: it
// is closed either immediately (when its bytes had to be copied) or later by
// Reader.Close.
//
// Mappable blobs (local mmap, in-memory stores) are read zero-copy. Anything
// else is copied into memory, with the copy accounted against the configured
// resource controller for the Reader's lifetime.
func Open(ctx context.Context, blob blobstore.Blob, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)
	r, err := openBlob(ctx, blob, "blob", o)
	if err != nil {
		o.logger.LogOpen("blob", 0, err)
		return nil, err
	}
	o.logger.LogOpen("blob", r.footer.RecordCount, nil)
	return r, nil
}

// OpenStore opens the named artifact from a blob store.
func OpenStore(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)
	blob, err := store.Open(ctx, name)
	if err != nil {
		o.logger.LogOpen(name, 0, err)
		return nil, err
	}
	r, err := openBlob(ctx, blob, name, o)
	if err != nil {
		o.logger.LogOpen(name, 0, err)
		return nil, err
	}
	o.logger.LogOpen(name, r.footer.RecordCount, nil)
	return r, nil
}

func openBlob(ctx context.Context, blob blobstore.Blob, source string, o options) (*Reader, error) {
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			blob.Close()
			return nil, err
		}
		r, err := newReader(data, blob, source, o)
		if err != nil {
			blob.Close()
			return nil, err
		}
		return r, nil
	}

	bb, err := blobstore.FetchAll(ctx, io.NewSectionReader(blob, 0, blob.Size()), blob.Size(), o.rc)
	blob.Close()
	if err != nil {
		return nil, err
	}
	data, err := bb.Bytes()
	if err != nil {
		bb.Close()
		return nil, err
	}
	r, err := newReader(data, bb, source, o)
	if err != nil {
		bb.Close()
		return nil, err
	}
	return r, nil
}

// newReader validates the artifact head to tail before anything is served:
// header magic and version, footer arithmetic against the real size, then
// the directory. A Reader never exists over an inconsistent artifact.
func newReader(data []byte, closer io.Closer, source string, o options) (*Reader, error) {
	size := int64(len(data))
	br := bytes.NewReader(data)

	if _, err := format.ReadHeader(br, size); err != nil {
		return nil, translateError(err)
	}
	footer, err := format.ReadFooter(br, size)
	if err != nil {
		return nil, translateError(err)
	}

	dirData := data[footer.DirectoryOffset : size-format.FooterSize]
	dir, err := format.ParseDirectory(dirData, footer.DirectoryOffset-footer.IndexSegmentOffset)
	if err != nil {
		return nil, translateError(err)
	}

	r := &Reader{
		data:   data,
		closer: closer,
		source: source,
		footer: footer,
		dir:    dir,
		opts:   o,
	}

	if o.eagerIndexes {
		for _, e := range dir {
			if _, _, err := r.Index(e.Key); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Index returns the parsed index for key, or ok=false when the artifact has
// no index under that name. It implements query.Source, so a Reader can be
// passed directly to query.Query.Evaluate.
func (r *Reader) Index(key string) (*index.Index, bool, error) {
	if r.closed.Load() {
		return nil, false, ErrReaderClosed
	}
	if v, ok := r.indexes.Load(key); ok {
		return v.(*index.Index), true, nil
	}

	e, ok := format.FindDirectoryEntry(r.dir, key)
	if !ok {
		return nil, false, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if v, ok := r.indexes.Load(key); ok {
			return v, nil
		}
		runStart := r.footer.IndexSegmentOffset + e.IndexOffset
		run := r.data[runStart : runStart+e.IndexLength]
		ix, err := index.Parse(key, run, e.EntryCount)
		if err != nil {
			return nil, translateError(err)
		}
		r.indexes.Store(key, ix)
		return ix, nil
	})
	if err != nil {
		return nil, true, err
	}
	return v.(*index.Index), true, nil
}

// Query evaluates a predicate tree against the artifact's indices and
// returns the matching pointers, ordered by (offset, length, type tag) and
// free of duplicates. Predicates on keys the artifact never indexed match
// nothing.
func (r *Reader) Query(q query.Query) ([]core.Pointer, error) {
	start := time.Now()
	ptrs, err := r.doQuery(q)
	duration := time.Since(start)
	err = translateError(err)
	r.opts.metrics.RecordQuery(duration, len(ptrs), err)
	r.opts.logger.LogQuery(q.String(), len(ptrs), err)
	return ptrs, err
}

func (r *Reader) doQuery(q query.Query) ([]core.Pointer, error) {
	if r.closed.Load() {
		return nil, ErrReaderClosed
	}
	return q.Evaluate(r)
}

// Keys returns the artifact's index key names in ascending order, excluding
// library-owned keys.
func (r *Reader) Keys() []string {
	keys := make([]string, 0, len(r.dir))
	for _, e := range r.dir {
		if strings.HasPrefix(e.Key, reservedKeyPrefix) {
			continue
		}
		keys = append(keys, e.Key)
	}
	return keys
}

// Count returns the number of records packed by the producer, excluding
// library-owned records such as the meta record.
func (r *Reader) Count() uint64 {
	n := r.footer.RecordCount
	if _, ok := format.FindDirectoryEntry(r.dir, metaKey); ok {
		n--
	}
	return n
}

// Meta returns the artifact metadata. Artifacts built without SetMeta fail
// with ErrNotFound.
func (r *Reader) Meta() (Meta, error) {
	var meta Meta
	ix, ok, err := r.Index(metaKey)
	if err != nil {
		return meta, err
	}
	if !ok {
		return meta, ErrNotFound
	}
	ptrs, err := ix.LookupEq(metaMarker)
	if err != nil {
		return meta, translateError(err)
	}
	if len(ptrs) == 0 {
		return meta, ErrNotFound
	}
	return Get[Meta](r, ptrs[0])
}

// Size returns the artifact size in bytes.
func (r *Reader) Size() int64 { return int64(len(r.data)) }

// Source returns where the artifact was opened from: a file path, a store
// name, "memory" or "blob".
func (r *Reader) Source() string { return r.source }

// Close releases the backing storage. Releasing invalidates every borrowed
// view of the artifact, which is why Get always returns owned values.
// Close is idempotent.
func (r *Reader) Close() error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// recordBytes copies the pointed-at record range out of the data segment.
func (r *Reader) recordBytes(ptr core.Pointer) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrReaderClosed
	}
	end := ptr.Offset + ptr.Length
	if end < ptr.Offset || end > r.footer.DataLength {
		return nil, &FormatError{cause: fmt.Errorf("pointer %v outside data segment of %d bytes", ptr, r.footer.DataLength)}
	}
	start := r.footer.DataOffset + ptr.Offset
	out := make([]byte, ptr.Length)
	copy(out, r.data[start:start+ptr.Length])
	return out, nil
}

var _ query.Source = (*Reader)(nil)
