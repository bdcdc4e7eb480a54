package index

import (
	"fmt"
	"sort"

	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/value"
)

// Builder accumulates the entries of one key during a build.
//
// The first value pins the key's kind; later values of another kind are
// rejected so a single index never mixes incomparable encodings. A Builder
// is single-owner and not safe for concurrent use.
type Builder struct {
	key     string
	kind    value.Kind
	entries []Entry
}

// NewBuilder creates an index builder for key.
func NewBuilder(key string) *Builder {
	return &Builder{key: key}
}

// Key returns the key name.
func (b *Builder) Key() string { return b.key }

// Kind returns the pinned kind, or KindInvalid before the first Add.
func (b *Builder) Kind() value.Kind { return b.kind }

// Len returns the number of accumulated entries.
func (b *Builder) Len() int { return len(b.entries) }

// Add records that the record at ptr carries v under the builder's key.
func (b *Builder) Add(v value.Value, ptr core.Pointer) error {
	if v.Kind == value.KindInvalid {
		return fmt.Errorf("%w: invalid value for key %q", ErrKindMismatch, b.key)
	}
	if b.kind == value.KindInvalid {
		b.kind = v.Kind
	} else if v.Kind != b.kind {
		return fmt.Errorf("%w: key %q holds %s, got %s", ErrKindMismatch, b.key, b.kind, v.Kind)
	}

	encoded, err := v.Encode()
	if err != nil {
		return err
	}
	b.entries = append(b.entries, Entry{Encoded: encoded, Ptr: ptr})
	return nil
}

// Finish sorts the accumulated entries and returns the immutable Index.
//
// The sort is stable: entries sharing encoded value and offset keep their
// insertion order, so identical build sequences serialize identically.
func (b *Builder) Finish() *Index {
	sort.SliceStable(b.entries, func(i, j int) bool {
		return compareEntries(b.entries[i], b.entries[j]) < 0
	})
	ix := &Index{key: b.key, kind: b.kind, entries: b.entries}
	b.entries = nil
	return ix
}
