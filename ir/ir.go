package ir

import "fmt"

// Kind is the element kind of a Type.
type Kind uint8

const (
	Int Kind = iota
	UInt
	Float
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is the (Kind, Bits, Lanes) triple carried by every expression.
// Bool is represented as UInt width 1. Equality is componentwise.
type Type struct {
	Kind  Kind
	Bits  uint8
	Lanes uint32
}

// Bool is the canonical representation of a scalar boolean.
var Bool = Type{Kind: UInt, Bits: 1, Lanes: 1}

// Int32, UInt32 and Float32 are the most common scalar types, kept as
// package-level values so construction call sites stay short.
var (
	Int32   = Type{Kind: Int, Bits: 32, Lanes: 1}
	UInt32  = Type{Kind: UInt, Bits: 32, Lanes: 1}
	Float32 = Type{Kind: Float, Bits: 32, Lanes: 1}
	Float64 = Type{Kind: Float, Bits: 64, Lanes: 1}
)

// IsBool reports whether t is the canonical bool representation.
func (t Type) IsBool() bool {
	return t.Kind == UInt && t.Bits == 1
}

// IsScalar reports whether t has a single lane.
func (t Type) IsScalar() bool {
	return t.Lanes == 1
}

// IsVector reports whether t has more than one lane.
func (t Type) IsVector() bool {
	return t.Lanes > 1
}

// Widen returns a copy of t with Lanes set to n. Widening a type that is
// already a vector of a different width is legal; callers decide whether
// that makes sense in context.
func (t Type) Widen(n uint32) Type {
	t.Lanes = n
	return t
}

// WithLanes is an alias for Widen kept for readability at call sites that
// are narrowing rather than widening (e.g. extracting a lane's scalar type).
func (t Type) WithLanes(n uint32) Type {
	return t.Widen(n)
}

// Scalar returns a copy of t with Lanes set to 1.
func (t Type) Scalar() Type {
	return t.Widen(1)
}

func (t Type) String() string {
	base := t.Kind.String()
	switch {
	case t.IsBool() && t.Lanes == 1:
		return "bool"
	case t.Kind == UInt && t.Bits == 1:
		base = "bool"
	default:
		base = fmt.Sprintf("%s%d", base, t.Bits)
	}
	if t.Lanes > 1 {
		return fmt.Sprintf("%sx%d", base, t.Lanes)
	}
	return base
}

// Signed reports whether values of t should be treated as signed integers
// for the purposes of interval bounds and division/modulo rounding.
func (t Type) Signed() bool {
	return t.Kind == Int
}

// Range returns the representable [min, max] range of a narrow scalar
// integer type, for bounding Load/Call results: uint up to 16 bits is
// [0, 2^bits-1], int up to 16 bits is [-2^(bits-1), 2^(bits-1)-1]. ok is
// false for wider integer types or any floating type, meaning the range is
// unbounded (±∞) and callers should treat both endpoints as undefined.
func (t Type) Range() (min, max int64, ok bool) {
	if t.Kind == Float {
		return 0, 0, false
	}
	if t.Bits > 16 {
		return 0, 0, false
	}
	if t.Kind == UInt {
		return 0, int64(uint64(1)<<t.Bits - 1), true
	}
	half := int64(1) << (t.Bits - 1)
	return -half, half - 1, true
}

// Equal reports componentwise equality.
func (t Type) Equal(o Type) bool {
	return t == o
}
