// Package record encodes and decodes DataTank record headers and the
// container signature.
//
// A container is the signature followed by a sequence of records. Each record
// is laid out as:
//
//	int64  block length (header + name field + payload)
//	int32  type code
//	int32  m   (fastest varying axis)
//	int32  n
//	int32  o   (slowest varying axis)
//	int32  name length, including the terminating NUL
//	name bytes, NUL
//	payload
//
// All integers use the container's byte order.
package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
	"github.com/robert-malhotra/go-dtbin/internal/dtype"
)

// HeaderSize is the fixed size of a record header in bytes.
const HeaderSize = 28

var (
	// ErrTruncatedHeader is returned when the file ends inside a header.
	ErrTruncatedHeader = errors.New("truncated record header")
	// ErrInvalidHeader is returned for a header whose fields contradict
	// each other, such as a name longer than its block.
	ErrInvalidHeader = errors.New("invalid record header")
)

// Header is the fixed part of a record.
type Header struct {
	BlockLength int64
	Type        dtype.Code
	M, N, O     int32
	NameLength  int32
}

// NewHeader builds a header for a record called name with the given
// dimensions and payload size.
func NewHeader(name string, code dtype.Code, m, n, o int32, payload int) Header {
	nameLen := int32(len(name) + 1)
	return Header{
		BlockLength: int64(HeaderSize) + int64(nameLen) + int64(payload),
		Type:        code,
		M:           m,
		N:           n,
		O:           o,
		NameLength:  nameLen,
	}
}

// Elements returns m*n*o. It is only meaningful for a header that passed
// Validate; larger products saturate at math.MaxInt64.
func (h Header) Elements() int64 {
	n := int64(1)
	for _, d := range [3]int32{h.M, h.N, h.O} {
		if d == 0 {
			return 0
		}
		if n > math.MaxInt64/int64(d) {
			n = math.MaxInt64
			continue
		}
		n *= int64(d)
	}
	return n
}

// PayloadSize returns the number of payload bytes implied by the block
// length.
func (h Header) PayloadSize() int64 {
	return h.BlockLength - HeaderSize - int64(h.NameLength)
}

// DataSize returns the number of payload bytes implied by the dimensions and
// type, or -1 for an unknown type. Products too large for int64 saturate at
// math.MaxInt64.
func (h Header) DataSize() int64 {
	if !h.Type.Valid() {
		return -1
	}
	n, width := h.Elements(), int64(h.Type.Size())
	if n > math.MaxInt64/width {
		return math.MaxInt64
	}
	return n * width
}

// Validate checks the header for internal consistency. Unknown type codes are
// not an error here; they are reported when the payload is decoded. Dimensions
// that need more data than the block holds are reported as ibin.ErrShortRead.
func (h Header) Validate() error {
	if h.BlockLength < HeaderSize {
		return fmt.Errorf("%w: block length %d", ErrInvalidHeader, h.BlockLength)
	}
	if h.M < 0 || h.N < 0 || h.O < 0 {
		return fmt.Errorf("%w: negative dimension %dx%dx%d", ErrInvalidHeader, h.M, h.N, h.O)
	}
	if h.NameLength < 1 {
		return fmt.Errorf("%w: name length %d", ErrInvalidHeader, h.NameLength)
	}
	if h.PayloadSize() < 0 {
		return fmt.Errorf("%w: name overruns block", ErrInvalidHeader)
	}
	if size := h.DataSize(); size >= 0 && size > h.PayloadSize() {
		return fmt.Errorf("%w: %dx%dx%d elements of type %v need %d bytes, payload holds %d",
			ibin.ErrShortRead, h.M, h.N, h.O, h.Type, size, h.PayloadSize())
	}
	return nil
}

// EncodeHeader serializes h in the given byte order.
func EncodeHeader(order binary.ByteOrder, h Header) []byte {
	buf := make([]byte, HeaderSize)
	order.PutUint64(buf[0:], uint64(h.BlockLength))
	order.PutUint32(buf[8:], uint32(h.Type))
	order.PutUint32(buf[12:], uint32(h.M))
	order.PutUint32(buf[16:], uint32(h.N))
	order.PutUint32(buf[20:], uint32(h.O))
	order.PutUint32(buf[24:], uint32(h.NameLength))
	return buf
}

// DecodeHeader parses a header from the first HeaderSize bytes of b.
func DecodeHeader(order binary.ByteOrder, b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes", ErrTruncatedHeader, len(b))
	}
	return readFields(ibin.NewReader(bytes.NewReader(b), ibin.Config{ByteOrder: order}))
}

// readFields reads the fixed header fields at r's position.
func readFields(r *ibin.Reader) (Header, error) {
	var h Header
	var err error
	if h.BlockLength, err = r.ReadInt64(); err != nil {
		return Header{}, err
	}
	var code int32
	if code, err = r.ReadInt32(); err != nil {
		return Header{}, err
	}
	h.Type = dtype.Code(code)
	for _, p := range []*int32{&h.M, &h.N, &h.O, &h.NameLength} {
		if *p, err = r.ReadInt32(); err != nil {
			return Header{}, err
		}
	}
	return h, nil
}

// ReadHeader reads a header and the record name at the reader's position,
// leaving the reader at the start of the payload. Only the block and name
// lengths are checked; callers decoding the payload should Validate.
func ReadHeader(r *ibin.Reader) (Header, string, error) {
	start := r.Pos()
	h, err := readFields(r)
	if err != nil {
		if errors.Is(err, ibin.ErrShortRead) {
			return Header{}, "", fmt.Errorf("%w at offset %d", ErrTruncatedHeader, start)
		}
		return Header{}, "", err
	}
	if h.BlockLength < HeaderSize {
		return h, "", fmt.Errorf("%w: block length %d", ErrInvalidHeader, h.BlockLength)
	}
	if h.NameLength < 1 || h.PayloadSize() < 0 {
		return h, "", fmt.Errorf("%w: name length %d in a %d byte block", ErrInvalidHeader, h.NameLength, h.BlockLength)
	}
	name, err := r.ReadCString(int(h.NameLength))
	if err != nil {
		return h, "", fmt.Errorf("reading record name: %w", err)
	}
	return h, name, nil
}

// AppendRecord returns header, name field and payload as one buffer ready
// for a single write.
func AppendRecord(order binary.ByteOrder, h Header, name string, payload []byte) []byte {
	out := make([]byte, 0, h.BlockLength)
	out = append(out, EncodeHeader(order, h)...)
	out = append(out, name...)
	out = append(out, 0)
	return append(out, payload...)
}
