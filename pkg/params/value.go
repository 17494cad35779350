// Package params implements the parameter bags sent to the search API.
//
// A Bag is an ordered set of unique keys mapped to scalar values. Bags are
// immutable: every modifying method returns a new Bag and leaves the receiver
// untouched, so a bag can be shared between goroutines and reused across
// requests.
//
// Values distinguish an absent value (dropped before transmission) from an
// explicit null (transmitted as the literal string "null"):
//
//	bag := params.New(
//		params.P("q", "coffee"),
//		params.P("gl", params.Absent()),
//		params.P("hl", nil),
//	)
//	bag.Encode() // "q=coffee&hl=null"
package params

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the type of a Value.
type Kind int

const (
	// KindAbsent marks a value that was never set. It is the zero Kind.
	KindAbsent Kind = iota

	// KindNull marks an explicit null.
	KindNull

	// KindString marks a string value.
	KindString

	// KindNumber marks an integer or floating point value.
	KindNumber

	// KindBool marks a boolean value.
	KindBool
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a scalar parameter value. The zero Value is absent.
type Value struct {
	kind Kind
	text string
}

// Absent returns a value that is dropped when the bag is encoded.
func Absent() Value {
	return Value{}
}

// Null returns an explicit null. It encodes as "null".
func Null() Value {
	return Value{kind: KindNull, text: "null"}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b)}
}

// Int returns an integer value.
func Int(n int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(n, 10)}
}

// Uint returns an unsigned integer value.
func Uint(n uint64) Value {
	return Value{kind: KindNumber, text: strconv.FormatUint(n, 10)}
}

// Float returns a floating point value in its shortest decimal form.
func Float(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Value{kind: KindNumber, text: "NaN"}
	case math.IsInf(f, 1):
		return Value{kind: KindNumber, text: "Infinity"}
	case math.IsInf(f, -1):
		return Value{kind: KindNumber, text: "-Infinity"}
	}
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Of converts a Go value into a Value.
//
// nil maps to Null, nil pointers map to Absent, and pointers to scalars are
// dereferenced. Types without a natural scalar form are formatted with fmt.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case *string:
		if x == nil {
			return Absent()
		}
		return String(*x)
	case *bool:
		if x == nil {
			return Absent()
		}
		return Bool(*x)
	case *int:
		if x == nil {
			return Absent()
		}
		return Int(int64(*x))
	case *int64:
		if x == nil {
			return Absent()
		}
		return Int(*x)
	case *float64:
		if x == nil {
			return Absent()
		}
		return Float(*x)
	case fmt.Stringer:
		return String(x.String())
	default:
		return String(fmt.Sprint(x))
	}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the value is absent.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// String returns the wire form of the value. Absent values render as
// "undefined" so they compare unequal to every transmitted value.
func (v Value) String() string {
	if v.kind == KindAbsent {
		return "undefined"
	}
	return v.text
}
