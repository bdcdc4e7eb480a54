// Package core holds the primitive types shared by every layer of a pak
// artifact.
package core

import (
	"encoding/binary"
	"fmt"
)

// PointerSize is the wire size of a Pointer: three little-endian uint64s.
const PointerSize = 24

// Pointer identifies one record inside a pak artifact: an exact byte range in
// the data segment plus the type tag the record was stored under.
//
// Offset is relative to the start of the data segment, so Offset+Length never
// exceeds the segment length. The tag is validated on every typed dereference;
// tag 0 is reserved and never assigned to a type.
type Pointer struct {
	Offset  uint64
	Length  uint64
	TypeTag uint64
}

// Compare orders pointers by offset, then length, then type tag. This is the
// order query results use, which makes merge-style set algebra possible.
func (p Pointer) Compare(other Pointer) int {
	switch {
	case p.Offset != other.Offset:
		return cmpUint64(p.Offset, other.Offset)
	case p.Length != other.Length:
		return cmpUint64(p.Length, other.Length)
	default:
		return cmpUint64(p.TypeTag, other.TypeTag)
	}
}

// Less reports whether p orders before other.
func (p Pointer) Less(other Pointer) bool { return p.Compare(other) < 0 }

// String returns a compact representation for logs and error messages.
func (p Pointer) String() string {
	return fmt.Sprintf("ptr(%d+%d tag=%#x)", p.Offset, p.Length, p.TypeTag)
}

// AppendBinary appends the 24-byte wire form of p.
func (p Pointer) AppendBinary(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, p.Offset)
	buf = binary.LittleEndian.AppendUint64(buf, p.Length)
	buf = binary.LittleEndian.AppendUint64(buf, p.TypeTag)
	return buf
}

// ParsePointer reads a Pointer from the first PointerSize bytes of data.
func ParsePointer(data []byte) (Pointer, error) {
	if len(data) < PointerSize {
		return Pointer{}, fmt.Errorf("core: short buffer for pointer: %d bytes", len(data))
	}
	return Pointer{
		Offset:  binary.LittleEndian.Uint64(data),
		Length:  binary.LittleEndian.Uint64(data[8:]),
		TypeTag: binary.LittleEndian.Uint64(data[16:]),
	}, nil
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
