package pakgo

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/hupe1980/pakgo/codec"
	"github.com/hupe1980/pakgo/value"
)

// Reserved index keys. Keys starting with the prefix belong to the library;
// user attributes must not use it.
const (
	reservedKeyPrefix = "\x00"

	// metaKey indexes the artifact's Meta record.
	metaKey = "\x00pak.meta"
)

// metaMarker is the index value the Meta record is stored under.
var metaMarker = value.String("meta")

// Serializable is implemented by record types that control their own byte
// encoding. Types without it are serialized with the configured codec.
type Serializable interface {
	EncodePak() ([]byte, error)
}

// Deserializable is the decode side of Serializable. Implement it on a
// pointer receiver so DecodePak can populate the value.
type Deserializable interface {
	DecodePak(data []byte) error
}

// Searchable is implemented by record types that expose secondary-index
// attributes. Builder.Pak extracts them at insert time; PakNoSearch skips
// the extraction.
type Searchable interface {
	PakIndices() []Attribute
}

// TypeTagger overrides the type tag stored in a record's Pointer. Implement
// it on the value receiver and derive the tag from the type alone, never
// from receiver fields: the library probes it on a zero value.
type TypeTagger interface {
	PakTypeTag() uint64
}

// Attribute is one (key, value) pair extracted from a Searchable record. The
// first value stored under a key fixes the key's kind for the whole build.
type Attribute struct {
	Key   string
	Value value.Value
}

// TypeTagFor returns the type tag recorded in pointers for records of type
// T. Pointer types tag the same as their element type.
//
// By default the tag is the 64-bit FNV-1a hash of the fully qualified type
// name. Types that need a tag that survives renames implement TypeTagger.
func TypeTagFor[T any]() uint64 {
	return typeTagForType(reflect.TypeFor[T]())
}

func typeTagOf(record any) uint64 {
	return typeTagForType(reflect.TypeOf(record))
}

func typeTagForType(t reflect.Type) uint64 {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if tagger, ok := reflect.New(t).Elem().Interface().(TypeTagger); ok {
		return tagger.PakTypeTag()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.String()))
	return h.Sum64()
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// encodeRecord serializes a record, preferring its own Serializable impl
// over the codec.
func encodeRecord(record any, c codec.Codec) ([]byte, error) {
	if s, ok := record.(Serializable); ok {
		return s.EncodePak()
	}
	return c.Marshal(record)
}

// decodeRecord deserializes into out, which must be a pointer.
func decodeRecord(data []byte, out any, c codec.Codec) error {
	if d, ok := out.(Deserializable); ok {
		return d.DecodePak(data)
	}
	return c.Unmarshal(data, out)
}

// Meta carries optional artifact-level metadata. When set on a Builder it is
// written as the final record of the artifact and resolved by Reader.Meta.
type Meta struct {
	Name        string
	Version     string
	Description string
	Author      string
}

// EncodePak implements Serializable. Meta uses its own length-prefixed
// encoding so artifacts stay byte-identical under any configured codec.
func (m Meta) EncodePak() ([]byte, error) {
	fields := []string{m.Name, m.Version, m.Description, m.Author}

	size := 0
	for _, s := range fields {
		size += binary.MaxVarintLen64 + len(s)
	}
	buf := make([]byte, 0, size)
	for _, s := range fields {
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	return buf, nil
}

// DecodePak implements Deserializable.
func (m *Meta) DecodePak(data []byte) error {
	for _, field := range []*string{&m.Name, &m.Version, &m.Description, &m.Author} {
		n, sz := binary.Uvarint(data)
		if sz <= 0 || n > uint64(len(data)-sz) {
			return fmt.Errorf("meta: short buffer")
		}
		*field = string(data[sz : sz+int(n)])
		data = data[sz+int(n):]
	}
	if len(data) != 0 {
		return fmt.Errorf("meta: %d trailing bytes", len(data))
	}
	return nil
}
