package pakgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/pakgo/blobstore"
	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/format"
	"github.com/hupe1980/pakgo/index"
	"github.com/hupe1980/pakgo/internal/mmap"
	"github.com/hupe1980/pakgo/value"
)

// Builder accumulates records and their index attributes, then serializes
// everything into a single artifact. A Builder is single-owner, not safe for
// concurrent use, and consumed by finalize: any later call fails with
// ErrBuilderFinalized.
//
// Identical call sequences produce byte-identical artifacts.
type Builder struct {
	opts      options
	data      []byte
	indexes   map[string]*index.Builder
	count     uint64
	meta      *Meta
	finalized bool
}

// NewBuilder creates an empty Builder.
func NewBuilder(optFns ...Option) *Builder {
	return &Builder{
		opts:    applyOptions(optFns),
		indexes: make(map[string]*index.Builder),
	}
}

// Len returns the number of records packed so far.
func (b *Builder) Len() int { return int(b.count) }

// SetMeta attaches artifact metadata. It is written as the final record at
// finalize and resolved by Reader.Meta.
func (b *Builder) SetMeta(m Meta) error {
	if b.finalized {
		return &BuildError{Op: "set_meta", cause: ErrBuilderFinalized}
	}
	b.meta = &m
	return nil
}

// Pak encodes a record, appends it to the data segment and returns its
// Pointer. If the record implements Searchable, its attributes are fanned
// into the per-key indices.
//
// A failed call leaves the Builder unchanged.
func (b *Builder) Pak(record any) (core.Pointer, error) {
	return b.pak(record, true)
}

// PakNoSearch is Pak without index extraction: the record is retrievable by
// Pointer but invisible to queries.
func (b *Builder) PakNoSearch(record any) (core.Pointer, error) {
	return b.pak(record, false)
}

func (b *Builder) pak(record any, search bool) (core.Pointer, error) {
	start := time.Now()
	ptr, err := b.doPak(record, search)
	duration := time.Since(start)
	b.opts.metrics.RecordPak(duration, err)
	b.opts.logger.LogPak(ptr, err)
	return ptr, err
}

func (b *Builder) doPak(record any, search bool) (core.Pointer, error) {
	if b.finalized {
		return core.Pointer{}, &BuildError{Op: "pak", cause: ErrBuilderFinalized}
	}
	if record == nil {
		return core.Pointer{}, &BuildError{Op: "pak", cause: errors.New("nil record")}
	}

	encoded, err := encodeRecord(record, b.opts.codec)
	if err != nil {
		return core.Pointer{}, &BuildError{Op: "pak", cause: &EncodeError{Type: fmt.Sprintf("%T", record), cause: err}}
	}

	ptr := core.Pointer{
		Offset:  uint64(len(b.data)),
		Length:  uint64(len(encoded)),
		TypeTag: typeTagOf(record),
	}

	var attrs []Attribute
	if search {
		if s, ok := record.(Searchable); ok {
			attrs = s.PakIndices()
		}
	}

	// Validate every attribute before touching builder state, so a rejected
	// record leaves no partial data or index entries behind.
	if len(attrs) > 0 {
		seen := make(map[string]value.Kind, len(attrs))
		for _, attr := range attrs {
			if err := b.checkAttribute(attr); err != nil {
				return core.Pointer{}, err
			}
			if kind, ok := seen[attr.Key]; ok && kind != attr.Value.Kind {
				return core.Pointer{}, &BuildError{Op: "pak", cause: &TypeMismatchError{
					Key:  attr.Key,
					Want: kind.String(),
					Got:  attr.Value.Kind.String(),
				}}
			}
			seen[attr.Key] = attr.Value.Kind
		}
	}

	b.data = append(b.data, encoded...)
	b.count++
	for _, attr := range attrs {
		ib := b.indexes[attr.Key]
		if ib == nil {
			ib = index.NewBuilder(attr.Key)
			b.indexes[attr.Key] = ib
		}
		if err := ib.Add(attr.Value, ptr); err != nil {
			// Unreachable: checkAttribute vetted key and kind.
			return core.Pointer{}, &BuildError{Op: "pak", cause: err}
		}
	}
	return ptr, nil
}

func (b *Builder) checkAttribute(attr Attribute) error {
	if attr.Key == "" {
		return &BuildError{Op: "pak", cause: errors.New("empty index key")}
	}
	if strings.HasPrefix(attr.Key, reservedKeyPrefix) {
		return &BuildError{Op: "pak", cause: fmt.Errorf("index key %q uses the reserved prefix", attr.Key)}
	}
	if attr.Value.Kind == value.KindInvalid {
		return &BuildError{Op: "pak", cause: fmt.Errorf("attribute %q has an invalid value kind", attr.Key)}
	}
	if ib := b.indexes[attr.Key]; ib != nil && attr.Value.Kind != ib.Kind() {
		return &BuildError{Op: "pak", cause: &TypeMismatchError{
			Key:  attr.Key,
			Want: ib.Kind().String(),
			Got:  attr.Value.Kind.String(),
		}}
	}
	return nil
}

// FinalizeToFile serializes the artifact and publishes it atomically at
// path: the bytes are staged in a temp file, synced and renamed, so no
// partial artifact is ever visible. The returned Reader is mmap-backed and
// inherits the Builder's options.
//
// The Builder is consumed, even when finalize fails.
func (b *Builder) FinalizeToFile(path string) (*Reader, error) {
	start := time.Now()
	r, err := b.finalizeToFile(path)
	duration := time.Since(start)

	var size int64
	var records uint64
	if r != nil {
		size = r.Size()
		records = r.footer.RecordCount
	}
	b.opts.metrics.RecordFinalize(duration, size, err)
	b.opts.logger.LogFinalize(path, size, records, err)
	return r, err
}

func (b *Builder) finalizeToFile(path string) (*Reader, error) {
	artifact, err := b.finalize()
	if err != nil {
		return nil, err
	}
	if err := format.SaveToFile(path, func(w io.Writer) error {
		_, err := w.Write(artifact)
		return err
	}); err != nil {
		return nil, &BuildError{Op: "finalize", cause: err}
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, &BuildError{Op: "finalize", cause: err}
	}
	r, err := newReader(m.Bytes(), m, path, b.opts)
	if err != nil {
		m.Close()
		return nil, err
	}
	return r, nil
}

// FinalizeToMemory serializes the artifact and returns a Reader over the
// in-memory bytes. The bytes are identical to what FinalizeToFile writes.
//
// The Builder is consumed, even when finalize fails.
func (b *Builder) FinalizeToMemory() (*Reader, error) {
	start := time.Now()
	r, err := b.finalizeToMemory()
	duration := time.Since(start)

	var size int64
	var records uint64
	if r != nil {
		size = r.Size()
		records = r.footer.RecordCount
	}
	b.opts.metrics.RecordFinalize(duration, size, err)
	b.opts.logger.LogFinalize("memory", size, records, err)
	return r, err
}

func (b *Builder) finalizeToMemory() (*Reader, error) {
	artifact, err := b.finalize()
	if err != nil {
		return nil, err
	}
	return newReader(artifact, nil, "memory", b.opts)
}

// FinalizeToStore serializes the artifact and uploads it to store under name.
// The returned Reader serves the just-built in-memory bytes; use OpenStore to
// read back through the store.
//
// The Builder is consumed, even when finalize fails.
func (b *Builder) FinalizeToStore(ctx context.Context, store blobstore.Store, name string) (*Reader, error) {
	start := time.Now()
	r, err := b.finalizeToStore(ctx, store, name)
	duration := time.Since(start)

	var size int64
	var records uint64
	if r != nil {
		size = r.Size()
		records = r.footer.RecordCount
	}
	b.opts.metrics.RecordFinalize(duration, size, err)
	b.opts.logger.LogFinalize(name, size, records, err)
	return r, err
}

func (b *Builder) finalizeToStore(ctx context.Context, store blobstore.Store, name string) (*Reader, error) {
	artifact, err := b.finalize()
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, name, artifact); err != nil {
		return nil, &BuildError{Op: "finalize", cause: err}
	}
	return newReader(artifact, nil, name, b.opts)
}

// finalize assembles the artifact: header, data segment, index runs in
// ascending key order, directory, footer.
func (b *Builder) finalize() ([]byte, error) {
	if b.finalized {
		return nil, &BuildError{Op: "finalize", cause: ErrBuilderFinalized}
	}
	b.finalized = true

	if b.meta != nil {
		encoded, err := b.meta.EncodePak()
		if err != nil {
			return nil, &BuildError{Op: "finalize", cause: &EncodeError{Type: fmt.Sprintf("%T", *b.meta), cause: err}}
		}
		ptr := core.Pointer{
			Offset:  uint64(len(b.data)),
			Length:  uint64(len(encoded)),
			TypeTag: TypeTagFor[Meta](),
		}
		b.data = append(b.data, encoded...)
		b.count++

		ib := index.NewBuilder(metaKey)
		if err := ib.Add(metaMarker, ptr); err != nil {
			return nil, &BuildError{Op: "finalize", cause: err}
		}
		b.indexes[metaKey] = ib
	}

	keys := make([]string, 0, len(b.indexes))
	for k := range b.indexes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := format.AppendHeader(make([]byte, 0, format.MinFileSize+len(b.data)))
	buf = append(buf, b.data...)

	indexSegmentOffset := uint64(len(buf))
	entries := make([]format.DirectoryEntry, 0, len(keys))
	for _, k := range keys {
		ix := b.indexes[k].Finish()
		off := uint64(len(buf)) - indexSegmentOffset
		buf = ix.AppendEncoded(buf)
		entries = append(entries, format.DirectoryEntry{
			Key:         k,
			IndexOffset: off,
			IndexLength: uint64(len(buf)) - indexSegmentOffset - off,
			EntryCount:  uint64(ix.Len()),
		})
	}

	directoryOffset := uint64(len(buf))
	for _, e := range entries {
		buf = format.AppendDirectoryEntry(buf, e)
	}

	buf = format.AppendFooter(buf, format.Footer{
		DataOffset:         format.HeaderSize,
		DataLength:         uint64(len(b.data)),
		IndexSegmentOffset: indexSegmentOffset,
		DirectoryOffset:    directoryOffset,
		RecordCount:        b.count,
		Version:            format.Version,
	})
	return buf, nil
}
