// Package dtype is the type catalog for DataTank container records.
//
// Every record in a container carries a 32-bit type code. This package maps
// those codes to Go element types and back, and converts between raw payload
// bytes and typed Go slices in either byte order.
//
// # Type Mapping
//
//	Code | Go type  | Width | numpy
//	-----|----------|-------|------
//	1    | float64  | 8     | f8
//	2    | float32  | 4     | f4
//	8    | int32    | 4     | i4
//	9    | uint16   | 2     | u2
//	10   | int16    | 2     | i2
//	11   | uint8    | 1     | u1
//	12   | int8     | 1     | i1
//	20   | string   | 1     | -
//
// Go types without an on-disk representation (int, int64, uint32, uint64,
// bool, complex) are rejected by [CodeOf] with [ErrNoMatch]. They are never
// truncated to a narrower type.
//
// # Reading Data
//
// Use [Decode] to turn a payload into a typed slice:
//
//	values, err := dtype.Decode(dtype.Int16, binary.BigEndian, raw, n)
//	shorts := values.([]int16)
//
// # Writing Data
//
// Use [Encode] to turn a typed slice into payload bytes; the code is
// inferred from the slice type:
//
//	code, raw, err := dtype.Encode([]float32{1, 2, 3}, binary.LittleEndian)
//
// When the requested byte order matches the host, both directions copy
// memory directly instead of converting element by element.
package dtype
