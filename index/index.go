// Package index implements the per-key sorted indices of a pak artifact.
//
// During a build, a Builder accumulates (value, pointer) pairs for one key and
// pins the key to the kind of the first value it receives. Finish sorts the
// entries by their canonical encoding, ties by pointer offset, which makes
// the serialized run binary-searchable and the build deterministic.
//
// On the read side, Parse reconstructs an Index from a serialized run and
// Lookup answers point and range questions in O(log n + k).
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/value"
)

var (
	// ErrKindMismatch is returned when a value's kind differs from the kind
	// the index was built with.
	ErrKindMismatch = errors.New("index: kind mismatch")
	// ErrInvalidRun is returned when a serialized entry run cannot be parsed.
	ErrInvalidRun = errors.New("index: invalid entry run")
)

// Operator represents a comparison operator for index lookups.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessOrEqual represents the less than or equal operator.
	OpLessOrEqual Operator = "lte"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterOrEqual represents the greater than or equal operator.
	OpGreaterOrEqual Operator = "gte"
)

// Valid reports whether op is one of the five supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return true
	default:
		return false
	}
}

// Entry is one indexed value and the record it points at. Encoded is the
// value's canonical order-preserving encoding, kind byte included.
type Entry struct {
	Encoded []byte
	Ptr     core.Pointer
}

// Index is an immutable sorted entry run for one key.
type Index struct {
	key     string
	kind    value.Kind
	entries []Entry
}

// Key returns the key name the index was built for.
func (ix *Index) Key() string { return ix.key }

// Kind returns the canonical kind of every value in the index.
func (ix *Index) Kind() value.Kind { return ix.kind }

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// At returns the i-th entry in sorted order.
func (ix *Index) At(i int) Entry { return ix.entries[i] }

// LookupEq returns the pointers of all entries whose value equals v, in
// stored order.
func (ix *Index) LookupEq(v value.Value) ([]core.Pointer, error) {
	return ix.Lookup(OpEqual, v)
}

// Lookup returns the pointers of all entries matching op relative to v, in
// stored order: ascending by encoded value, ties ascending by offset.
//
// The lookup value must have the index's kind; anything else fails with
// ErrKindMismatch because the comparison would be meaningless.
func (ix *Index) Lookup(op Operator, v value.Value) ([]core.Pointer, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("index: unknown operator %q", op)
	}
	if v.Kind != ix.kind {
		return nil, fmt.Errorf("%w: index %q holds %s, lookup value is %s",
			ErrKindMismatch, ix.key, ix.kind, v.Kind)
	}
	target, err := v.Encode()
	if err != nil {
		return nil, err
	}

	// lo is the first entry >= target, hi the first entry > target.
	lo := sort.Search(len(ix.entries), func(i int) bool {
		return bytes.Compare(ix.entries[i].Encoded, target) >= 0
	})
	hi := sort.Search(len(ix.entries), func(i int) bool {
		return bytes.Compare(ix.entries[i].Encoded, target) > 0
	})

	var from, to int
	switch op {
	case OpEqual:
		from, to = lo, hi
	case OpLessThan:
		from, to = 0, lo
	case OpLessOrEqual:
		from, to = 0, hi
	case OpGreaterThan:
		from, to = hi, len(ix.entries)
	case OpGreaterOrEqual:
		from, to = lo, len(ix.entries)
	}
	if from >= to {
		return nil, nil
	}

	out := make([]core.Pointer, 0, to-from)
	for _, e := range ix.entries[from:to] {
		out = append(out, e.Ptr)
	}
	return out, nil
}

// AppendEncoded appends the serialized entry run: per entry, a uvarint value
// length, the encoded value and the 24-byte pointer.
func (ix *Index) AppendEncoded(buf []byte) []byte {
	for _, e := range ix.entries {
		buf = binary.AppendUvarint(buf, uint64(len(e.Encoded)))
		buf = append(buf, e.Encoded...)
		buf = e.Ptr.AppendBinary(buf)
	}
	return buf
}

// EncodedSize returns the serialized size of the entry run in bytes.
func (ix *Index) EncodedSize() int {
	n := 0
	var tmp [binary.MaxVarintLen64]byte
	for _, e := range ix.entries {
		n += binary.PutUvarint(tmp[:], uint64(len(e.Encoded)))
		n += len(e.Encoded) + core.PointerSize
	}
	return n
}

// Parse reconstructs an Index from a serialized entry run. The run must hold
// exactly entryCount entries, all of one kind, sorted by encoded value with
// ties sorted by pointer offset.
func Parse(key string, data []byte, entryCount uint64) (*Index, error) {
	ix := &Index{key: key}
	if entryCount > 0 {
		ix.entries = make([]Entry, 0, entryCount)
	}

	for range entryCount {
		vLen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: invalid value length in %q", ErrInvalidRun, key)
		}
		data = data[n:]
		if vLen == 0 || uint64(len(data)) < vLen+core.PointerSize {
			return nil, fmt.Errorf("%w: short entry in %q", ErrInvalidRun, key)
		}
		encoded := data[:vLen:vLen]
		ptr, err := core.ParsePointer(data[vLen:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRun, err)
		}
		data = data[vLen+core.PointerSize:]

		kind := value.KindOf(encoded)
		if kind == value.KindInvalid {
			return nil, fmt.Errorf("%w: invalid value kind in %q", ErrInvalidRun, key)
		}
		if len(ix.entries) == 0 {
			ix.kind = kind
		} else {
			if kind != ix.kind {
				return nil, fmt.Errorf("%w: mixed kinds in %q", ErrInvalidRun, key)
			}
			if compareEntries(ix.entries[len(ix.entries)-1], Entry{Encoded: encoded, Ptr: ptr}) > 0 {
				return nil, fmt.Errorf("%w: entries out of order in %q", ErrInvalidRun, key)
			}
		}
		ix.entries = append(ix.entries, Entry{Encoded: encoded, Ptr: ptr})
	}

	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in %q", ErrInvalidRun, len(data), key)
	}
	return ix, nil
}

// compareEntries orders by encoded value, then by pointer offset.
func compareEntries(a, b Entry) int {
	if c := bytes.Compare(a.Encoded, b.Encoded); c != 0 {
		return c
	}
	switch {
	case a.Ptr.Offset < b.Ptr.Offset:
		return -1
	case a.Ptr.Offset > b.Ptr.Offset:
		return 1
	default:
		return 0
	}
}
