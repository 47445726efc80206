package dtbin

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/internal/dtype"
)

// Element is the set of Go types that can be stored in a numeric record.
type Element = dtype.Element

// Type is a record type code.
type Type = dtype.Code

// Record type codes.
const (
	Double = dtype.Double
	Single = dtype.Single
	Int32  = dtype.Int32
	Uint16 = dtype.Uint16
	Int16  = dtype.Int16
	Uint8  = dtype.Uint8
	Int8   = dtype.Int8
	Text   = dtype.String
)

// Value is the result of reading a record: *Array, Scalar or String.
type Value interface {
	Type() Type
	isValue()
}

// String is a decoded string record.
type String string

// Type returns Text.
func (String) Type() Type { return Text }
func (String) isValue()   {}

// Scalar is a numeric record with a single element. Every supported element
// type is exactly representable as a float64.
type Scalar struct {
	code dtype.Code
	v    float64
}

// NewScalar returns a scalar of the element type of v.
func NewScalar[T Element](v T) Scalar {
	return Scalar{code: dtype.CodeFor[T](), v: float64(v)}
}

// Type returns the element type.
func (s Scalar) Type() Type { return s.code }
func (Scalar) isValue()     {}

// Float64 returns the value as a float64.
func (s Scalar) Float64() float64 { return s.v }

// Int64 returns the value truncated toward zero.
func (s Scalar) Int64() int64 { return int64(s.v) }

// Interface returns the value as its element type.
func (s Scalar) Interface() any {
	switch s.code {
	case Single:
		return float32(s.v)
	case Int32:
		return int32(s.v)
	case Uint16:
		return uint16(s.v)
	case Int16:
		return int16(s.v)
	case Uint8:
		return uint8(s.v)
	case Int8:
		return int8(s.v)
	default:
		return s.v
	}
}

func (s Scalar) String() string {
	return fmt.Sprintf("%v", s.Interface())
}

func (s Scalar) array() *Array {
	data, _ := convertElements([]float64{s.v}, s.code)
	return &Array{code: s.code, shape: []int{1}, data: data}
}

// scalarOf converts a Go number to a Scalar. Integers wider than the
// catalog are widened to float64 when that is exact.
func scalarOf(v any) (Scalar, bool) {
	switch x := v.(type) {
	case Scalar:
		return x, true
	case float64:
		return NewScalar(x), true
	case float32:
		return NewScalar(x), true
	case int32:
		return NewScalar(x), true
	case uint16:
		return NewScalar(x), true
	case int16:
		return NewScalar(x), true
	case uint8:
		return NewScalar(x), true
	case int8:
		return NewScalar(x), true
	case int:
		return exactDouble(float64(x), int64(x) == int64(float64(x)))
	case int64:
		return exactDouble(float64(x), x == int64(float64(x)))
	case uint32:
		return NewScalar(float64(x)), true
	default:
		return Scalar{}, false
	}
}

func exactDouble(f float64, exact bool) (Scalar, bool) {
	if !exact || math.Abs(f) > 1<<53 {
		return Scalar{}, false
	}
	return NewScalar(f), true
}

// Array is an n-dimensional numeric array in C order: the last axis varies
// fastest.
type Array struct {
	code  dtype.Code
	shape []int
	data  any
}

// NewArray wraps data with the given logical shape. Without a shape the
// array is one-dimensional. The slice is used directly, not copied.
func NewArray[T Element](data []T, shape ...int) (*Array, error) {
	if data == nil {
		data = []T{}
	}
	return newArray(dtype.CodeFor[T](), data, len(data), shape)
}

// MustArray is like NewArray but panics on a shape mismatch.
func MustArray[T Element](data []T, shape ...int) *Array {
	a, err := NewArray(data, shape...)
	if err != nil {
		panic(err)
	}
	return a
}

// ArrayOf wraps a typed slice ([]float64, []int16, ...) as a one-dimensional
// array, or returns an existing *Array unchanged.
func ArrayOf(v any) (*Array, error) {
	switch x := v.(type) {
	case *Array:
		return x, nil
	case Array:
		return &x, nil
	}
	n := dtype.Len(v)
	if n < 0 {
		return nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
	}
	code, err := dtype.CodeOf(v)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
	}
	return newArray(code, v, n, nil)
}

// EmptyArray returns a zero-element array of the given type and shape.
func EmptyArray(code Type, shape ...int) (*Array, error) {
	data, err := dtype.MakeSlice(code, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedType, "type %v", code)
	}
	if len(shape) == 0 {
		shape = []int{0}
	}
	return newArray(code, data, 0, shape)
}

func newArray(code dtype.Code, data any, n int, shape []int) (*Array, error) {
	if shape == nil {
		shape = []int{n}
	}
	prod := 1
	for _, d := range shape {
		if d < 0 {
			return nil, errors.Wrapf(ErrShape, "negative extent in %v", shape)
		}
		prod *= d
	}
	if prod != n {
		return nil, errors.Wrapf(ErrShape, "shape %v holds %d elements, have %d", shape, prod, n)
	}
	return &Array{code: code, shape: append([]int(nil), shape...), data: data}, nil
}

// Type returns the element type.
func (a *Array) Type() Type { return a.code }
func (*Array) isValue()     {}

// Shape returns a copy of the logical shape.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return dtype.Len(a.data) }

// Data returns the backing typed slice ([]float64, []int16, ...).
func (a *Array) Data() any { return a.data }

// Float64s returns the elements widened to float64.
func (a *Array) Float64s() []float64 {
	out, _ := dtype.ToFloat64s(a.data)
	return out
}

// At returns element i of the flat C-order data as a float64.
func (a *Array) At(i int) float64 {
	switch s := a.data.(type) {
	case []float64:
		return s[i]
	case []float32:
		return float64(s[i])
	case []int32:
		return float64(s[i])
	case []uint16:
		return float64(s[i])
	case []int16:
		return float64(s[i])
	case []uint8:
		return float64(s[i])
	case []int8:
		return float64(s[i])
	default:
		panic(fmt.Sprintf("dtbin: array of %T", a.data))
	}
}

// Index returns the flat C-order offset of a multi-dimensional index.
func (a *Array) Index(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("dtbin: %d indices for rank %d array", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("dtbin: index %v out of range for shape %v", idx, a.shape))
		}
		off = off*a.shape[i] + x
	}
	return off
}

// Reshape returns an array sharing the same data with a new shape. An empty
// shape gives a rank 0 array, which cannot be appended.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	if shape == nil {
		shape = []int{}
	}
	return newArray(a.code, a.data, a.Len(), shape)
}

// Squeeze returns an array sharing the same data with every axis of extent 1
// removed. A single element squeezes to rank 1.
func (a *Array) Squeeze() *Array {
	var shape []int
	for _, d := range a.shape {
		if d != 1 {
			shape = append(shape, d)
		}
	}
	if len(shape) == 0 {
		shape = []int{a.Len()}
	}
	return &Array{code: a.code, shape: shape, data: a.data}
}

// Convert returns a copy with elements converted to type code.
func (a *Array) Convert(code Type) (*Array, error) {
	data, err := convertElements(a.data, code)
	if err != nil {
		return nil, err
	}
	return &Array{code: code, shape: a.Shape(), data: data}, nil
}

func (a *Array) String() string {
	return fmt.Sprintf("%v%v", a.code, a.shape)
}

func convertElements(src any, code dtype.Code) (any, error) {
	var (
		out any
		err error
	)
	switch code {
	case Double:
		out, err = dtype.Convert[float64](src)
	case Single:
		out, err = dtype.Convert[float32](src)
	case Int32:
		out, err = dtype.Convert[int32](src)
	case Uint16:
		out, err = dtype.Convert[uint16](src)
	case Int16:
		out, err = dtype.Convert[int16](src)
	case Uint8:
		out, err = dtype.Convert[uint8](src)
	case Int8:
		out, err = dtype.Convert[int8](src)
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "type %v", code)
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedType, err.Error())
	}
	return out, nil
}

// Elements returns the backing slice of a if its element type is T.
func Elements[T Element](a *Array) ([]T, bool) {
	s, ok := a.data.([]T)
	return s, ok
}
