package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
)

// Code is an on-disk record type code.
type Code int32

// Record type codes.
const (
	Double Code = 1
	Single Code = 2
	Int32  Code = 8
	Uint16 Code = 9
	Int16  Code = 10
	Uint8  Code = 11
	Int8   Code = 12
	String Code = 20
)

var (
	// ErrUnknownCode is returned for a type code outside the catalog.
	ErrUnknownCode = errors.New("unknown type code")
	// ErrNoMatch is returned for a Go type with no on-disk representation.
	ErrNoMatch = errors.New("no matching type code")
)

// Element is the set of Go types that can be stored as numeric records.
type Element interface {
	float64 | float32 | int32 | uint16 | int16 | uint8 | int8
}

// Numeric lists the numeric codes in catalog order.
var Numeric = []Code{Double, Single, Int32, Uint16, Int16, Uint8, Int8}

type entry struct {
	size  int
	descr string
	typ   reflect.Type
}

var catalog = map[Code]entry{
	Double: {8, "f8", reflect.TypeOf(float64(0))},
	Single: {4, "f4", reflect.TypeOf(float32(0))},
	Int32:  {4, "i4", reflect.TypeOf(int32(0))},
	Uint16: {2, "u2", reflect.TypeOf(uint16(0))},
	Int16:  {2, "i2", reflect.TypeOf(int16(0))},
	Uint8:  {1, "u1", reflect.TypeOf(uint8(0))},
	Int8:   {1, "i1", reflect.TypeOf(int8(0))},
	String: {1, "string", reflect.TypeOf("")},
}

// Valid reports whether c is in the catalog.
func (c Code) Valid() bool {
	_, ok := catalog[c]
	return ok
}

// IsNumeric reports whether c is one of the seven numeric codes.
func (c Code) IsNumeric() bool {
	return c.Valid() && c != String
}

// Size returns the element width in bytes, or 0 for an unknown code.
func (c Code) Size() int {
	return catalog[c].size
}

// String returns the width-based type string (f8, i2, ...) or "string".
func (c Code) String() string {
	if e, ok := catalog[c]; ok {
		return e.descr
	}
	return fmt.Sprintf("unknown(%d)", int32(c))
}

// Lookup returns the Go element type for a code.
func Lookup(c Code) (reflect.Type, error) {
	e, ok := catalog[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, int32(c))
	}
	return e.typ, nil
}

// Qualified returns the byte-order-qualified descriptor for a numeric code,
// e.g. "<f8" or ">i2".
func Qualified(c Code, order binary.ByteOrder) (string, error) {
	if !c.IsNumeric() {
		return "", fmt.Errorf("%w: %d", ErrUnknownCode, int32(c))
	}
	prefix := "<"
	if order.Uint16([]byte{0, 1}) == 1 {
		prefix = ">"
	}
	return prefix + catalog[c].descr, nil
}

// CodeOf returns the code for a Go value, typed slice or reflect.Type.
// Strings map to String.
func CodeOf(v any) (Code, error) {
	var t reflect.Type
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil", ErrNoMatch)
	case reflect.Type:
		t = x
	default:
		t = reflect.TypeOf(v)
	}
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Float64:
		return Double, nil
	case reflect.Float32:
		return Single, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Uint16:
		return Uint16, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Uint8:
		return Uint8, nil
	case reflect.Int8:
		return Int8, nil
	case reflect.String:
		return String, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrNoMatch, t)
	}
}

// CodeFor returns the code for an element type parameter.
func CodeFor[T Element]() Code {
	var zero T
	c, _ := CodeOf(zero)
	return c
}

// MakeSlice allocates a zeroed typed slice of n elements for a numeric code.
func MakeSlice(c Code, n int) (any, error) {
	switch c {
	case Double:
		return make([]float64, n), nil
	case Single:
		return make([]float32, n), nil
	case Int32:
		return make([]int32, n), nil
	case Uint16:
		return make([]uint16, n), nil
	case Int16:
		return make([]int16, n), nil
	case Uint8:
		return make([]uint8, n), nil
	case Int8:
		return make([]int8, n), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, int32(c))
	}
}

// Len returns the length of a typed element slice, or -1 if s is not one.
func Len(s any) int {
	switch x := s.(type) {
	case []float64:
		return len(x)
	case []float32:
		return len(x)
	case []int32:
		return len(x)
	case []uint16:
		return len(x)
	case []int16:
		return len(x)
	case []uint8:
		return len(x)
	case []int8:
		return len(x)
	default:
		return -1
	}
}
