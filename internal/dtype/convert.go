package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
)

// ErrShortData is returned when a payload holds fewer bytes than its shape
// requires.
var ErrShortData = errors.New("payload shorter than shape")

// Encode converts a typed element slice into payload bytes in the given
// byte order and reports the matching code.
func Encode(src any, order binary.ByteOrder) (Code, []byte, error) {
	switch s := src.(type) {
	case []float64:
		return Double, encodeSlice(s, order), nil
	case []float32:
		return Single, encodeSlice(s, order), nil
	case []int32:
		return Int32, encodeSlice(s, order), nil
	case []uint16:
		return Uint16, encodeSlice(s, order), nil
	case []int16:
		return Int16, encodeSlice(s, order), nil
	case []uint8:
		return Uint8, encodeSlice(s, order), nil
	case []int8:
		return Int8, encodeSlice(s, order), nil
	default:
		_, err := CodeOf(src)
		if err == nil {
			err = fmt.Errorf("%w: %T", ErrNoMatch, src)
		}
		return 0, nil, err
	}
}

// Decode converts the first n elements of a payload into a typed slice.
func Decode(c Code, order binary.ByteOrder, data []byte, n int) (any, error) {
	if !c.IsNumeric() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, int32(c))
	}
	if n < 0 || len(data) < n*c.Size() {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortData, n*c.Size(), len(data))
	}
	data = data[:n*c.Size()]

	switch c {
	case Double:
		return decodeSlice[float64](data, order, n), nil
	case Single:
		return decodeSlice[float32](data, order, n), nil
	case Int32:
		return decodeSlice[int32](data, order, n), nil
	case Uint16:
		return decodeSlice[uint16](data, order, n), nil
	case Int16:
		return decodeSlice[int16](data, order, n), nil
	case Uint8:
		return decodeSlice[uint8](data, order, n), nil
	default:
		return decodeSlice[int8](data, order, n), nil
	}
}

func sizeOf[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// directBytes views a slice's backing array as bytes.
func directBytes[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*sizeOf[T]())
}

func encodeSlice[T Element](s []T, order binary.ByteOrder) []byte {
	size := sizeOf[T]()
	out := make([]byte, len(s)*size)
	if size == 1 || ibin.IsNative(order) {
		copy(out, directBytes(s))
		return out
	}
	for i, v := range s {
		putElem(out[i*size:], order, v)
	}
	return out
}

func decodeSlice[T Element](data []byte, order binary.ByteOrder, n int) []T {
	out := make([]T, n)
	size := sizeOf[T]()
	if size == 1 || ibin.IsNative(order) {
		copy(directBytes(out), data)
		return out
	}
	for i := range out {
		out[i] = getElem[T](data[i*size:], order)
	}
	return out
}

func putElem[T Element](b []byte, order binary.ByteOrder, v T) {
	switch x := any(v).(type) {
	case float64:
		order.PutUint64(b, math.Float64bits(x))
	case float32:
		order.PutUint32(b, math.Float32bits(x))
	case int32:
		order.PutUint32(b, uint32(x))
	case uint16:
		order.PutUint16(b, x)
	case int16:
		order.PutUint16(b, uint16(x))
	case uint8:
		b[0] = x
	case int8:
		b[0] = byte(x)
	}
}

func getElem[T Element](b []byte, order binary.ByteOrder) T {
	var v T
	switch p := any(&v).(type) {
	case *float64:
		*p = math.Float64frombits(order.Uint64(b))
	case *float32:
		*p = math.Float32frombits(order.Uint32(b))
	case *int32:
		*p = int32(order.Uint32(b))
	case *uint16:
		*p = order.Uint16(b)
	case *int16:
		*p = int16(order.Uint16(b))
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0])
	}
	return v
}

// Convert copies a typed element slice into a new slice of T, converting
// each element numerically.
func Convert[T Element](src any) ([]T, error) {
	switch s := src.(type) {
	case []T:
		out := make([]T, len(s))
		copy(out, s)
		return out, nil
	case []float64:
		return convertSlice[float64, T](s), nil
	case []float32:
		return convertSlice[float32, T](s), nil
	case []int32:
		return convertSlice[int32, T](s), nil
	case []uint16:
		return convertSlice[uint16, T](s), nil
	case []int16:
		return convertSlice[int16, T](s), nil
	case []uint8:
		return convertSlice[uint8, T](s), nil
	case []int8:
		return convertSlice[int8, T](s), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNoMatch, src)
	}
}

func convertSlice[S, T Element](s []S) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = T(v)
	}
	return out
}

// ToFloat64s widens any typed element slice to float64.
func ToFloat64s(src any) ([]float64, error) {
	return Convert[float64](src)
}
