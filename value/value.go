// Package value defines the typed values that can be indexed inside a pak
// artifact, together with their canonical order-preserving byte encoding.
//
// A Value is a small tagged union; no reflection and no fmt-based
// stringification on hot paths. The canonical encoding (see encoding.go) is
// what index entries store and what query evaluation compares, so it must
// remain stable across versions.
package value

import (
	"math"
	"strconv"
)

// Kind identifies the concrete type stored in a Value.
//
// Kind values are persisted as the leading byte of every canonical encoding;
// keep them stable.
type Kind uint8

const (
	// KindInvalid represents an invalid kind. It is the zero value and is
	// never legal inside an index.
	KindInvalid Kind = iota
	// KindString represents a string value.
	KindString
	// KindInt represents a signed integer value.
	KindInt
	// KindUint represents an unsigned integer value.
	KindUint
	// KindFloat represents a float value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a small typed value attached to an index key.
//
// Values of different kinds never compare against each other: one index key
// holds exactly one kind, fixed by the first value it receives.
type Value struct {
	Kind Kind
	I64  int64
	U64  uint64
	F64  float64
	S    string
	B    bool
}

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Int returns a signed integer Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Uint returns an unsigned integer Value.
func Uint(v uint64) Value { return Value{Kind: KindUint, U64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsUint64 returns the uint64 value if Kind is KindUint.
func (v Value) AsUint64() (uint64, bool) {
	if v.Kind != KindUint {
		return 0, false
	}
	return v.U64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// Equal reports whether two values have the same kind and payload.
//
// Floats compare by bit pattern, matching the canonical encoding: NaN equals
// NaN, and -0 does not equal +0.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.S == other.S
	case KindInt:
		return v.I64 == other.I64
	case KindUint:
		return v.U64 == other.U64
	case KindFloat:
		return math.Float64bits(v.F64) == math.Float64bits(other.F64)
	case KindBool:
		return v.B == other.B
	default:
		return true
	}
}

// GoString returns a readable representation for error messages and logs.
func (v Value) GoString() string {
	switch v.Kind {
	case KindString:
		return "string(" + strconv.Quote(v.S) + ")"
	case KindInt:
		return "int(" + strconv.FormatInt(v.I64, 10) + ")"
	case KindUint:
		return "uint(" + strconv.FormatUint(v.U64, 10) + ")"
	case KindFloat:
		return "float(" + strconv.FormatFloat(v.F64, 'g', -1, 64) + ")"
	case KindBool:
		return "bool(" + strconv.FormatBool(v.B) + ")"
	default:
		return "invalid"
	}
}
