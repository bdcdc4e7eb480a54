package value

import (
	"encoding/binary"
	"errors"
	"math"
)

// Encoding errors.
var (
	// ErrInvalidKind is returned when encoding a Value whose kind is not a
	// legal index kind.
	ErrInvalidKind = errors.New("value: invalid kind")
	// ErrShortBuffer is returned when decoding a truncated encoding.
	ErrShortBuffer = errors.New("value: short buffer")
	// ErrTrailingBytes is returned when an encoding carries bytes past its
	// payload.
	ErrTrailingBytes = errors.New("value: trailing bytes")
)

const signBit = uint64(1) << 63

// AppendEncoded appends the canonical order-preserving encoding of v to buf.
//
// The encoding is one kind byte followed by a payload whose byte order equals
// the value order of the kind:
//
//	string: raw bytes (lexicographic)
//	int:    8 bytes big-endian, sign bit flipped
//	uint:   8 bytes big-endian
//	float:  8 bytes big-endian of the IEEE-754 bits, fully flipped for
//	        negatives, sign-flipped for non-negatives
//	bool:   1 byte, false < true
//
// Because every value of one kind shares the same leading byte, comparing two
// same-kind encodings with bytes.Compare matches the kind's total order. The
// float order is the IEEE bit-pattern order: -NaN < -Inf < ... < +Inf < +NaN,
// and -0 sorts before +0.
func (v Value) AppendEncoded(buf []byte) ([]byte, error) {
	switch v.Kind {
	case KindString:
		buf = append(buf, byte(KindString))
		buf = append(buf, v.S...)
	case KindInt:
		buf = append(buf, byte(KindInt))
		buf = binary.BigEndian.AppendUint64(buf, uint64(v.I64)^signBit)
	case KindUint:
		buf = append(buf, byte(KindUint))
		buf = binary.BigEndian.AppendUint64(buf, v.U64)
	case KindFloat:
		buf = append(buf, byte(KindFloat))
		buf = binary.BigEndian.AppendUint64(buf, floatToOrdered(v.F64))
	case KindBool:
		buf = append(buf, byte(KindBool))
		if v.B {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	default:
		return nil, ErrInvalidKind
	}
	return buf, nil
}

// Encode returns the canonical order-preserving encoding of v.
func (v Value) Encode() ([]byte, error) {
	return v.AppendEncoded(make([]byte, 0, 9))
}

// Decode parses a complete canonical encoding back into a Value.
//
// The buffer must hold exactly one encoding; index entries store encodings
// length-prefixed, so their boundaries are known.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, ErrShortBuffer
	}
	kind := Kind(data[0])
	payload := data[1:]

	switch kind {
	case KindString:
		return String(string(payload)), nil
	case KindInt:
		if len(payload) != 8 {
			return Value{}, payloadErr(payload, 8)
		}
		return Int(int64(binary.BigEndian.Uint64(payload) ^ signBit)), nil
	case KindUint:
		if len(payload) != 8 {
			return Value{}, payloadErr(payload, 8)
		}
		return Uint(binary.BigEndian.Uint64(payload)), nil
	case KindFloat:
		if len(payload) != 8 {
			return Value{}, payloadErr(payload, 8)
		}
		return Float(orderedToFloat(binary.BigEndian.Uint64(payload))), nil
	case KindBool:
		if len(payload) != 1 {
			return Value{}, payloadErr(payload, 1)
		}
		return Bool(payload[0] != 0), nil
	default:
		return Value{}, ErrInvalidKind
	}
}

// KindOf returns the kind byte of a canonical encoding without decoding it.
func KindOf(encoded []byte) Kind {
	if len(encoded) == 0 {
		return KindInvalid
	}
	k := Kind(encoded[0])
	if k > KindBool {
		return KindInvalid
	}
	return k
}

func payloadErr(payload []byte, want int) error {
	if len(payload) < want {
		return ErrShortBuffer
	}
	return ErrTrailingBytes
}

// floatToOrdered maps float bits onto uint64 such that unsigned integer order
// equals the IEEE bit-pattern total order.
func floatToOrdered(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&signBit != 0 {
		return ^bits
	}
	return bits ^ signBit
}

func orderedToFloat(u uint64) float64 {
	if u&signBit != 0 {
		return math.Float64frombits(u ^ signBit)
	}
	return math.Float64frombits(^u)
}
