// Package binary provides byte-order aware I/O for DataTank container files.
package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"unsafe"
)

// ErrShortRead is returned when fewer bytes are available than requested.
var ErrShortRead = errors.New("short read")

// Reader reads fixed-width integers and raw byte runs from an io.ReaderAt
// in a configured byte order. Each Reader carries its own position.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// Config holds reader and writer configuration.
type Config struct {
	ByteOrder binary.ByteOrder
}

// NativeOrder returns the byte order of the running machine.
func NativeOrder() binary.ByteOrder {
	var one uint16 = 1
	if *(*byte)(unsafe.Pointer(&one)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// IsNative reports whether order matches the running machine.
func IsNative(order binary.ByteOrder) bool {
	return SameOrder(order, NativeOrder())
}

// SameOrder compares two byte orders by behavior rather than identity.
func SameOrder(a, b binary.ByteOrder) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Uint16([]byte{1, 0}) == b.Uint16([]byte{1, 0})
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = NativeOrder()
	}
	return &Reader{r: r, order: order}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, order: r.order, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
// A partial read at end of file is reported as ErrShortRead.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := r.r.ReadAt(buf, r.pos)
	if got < n {
		if err == nil || err == io.EOF {
			return nil, ErrShortRead
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(buf)), nil
}

// ReadInt64 reads a signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(buf)), nil
}

// ReadCString reads an n-byte field and returns it with trailing NULs removed.
func (r *Reader) ReadCString(n int) (string, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf, "\x00")), nil
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}
