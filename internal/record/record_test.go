package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
	"github.com/robert-malhotra/go-dtbin/internal/dtype"
)

type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader("Var", dtype.Int16, 2, 3, 1, 12)
	if h.BlockLength != HeaderSize+4+12 {
		t.Fatalf("expected block length %d, got %d", HeaderSize+4+12, h.BlockLength)
	}

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		raw := EncodeHeader(order, h)
		if len(raw) != HeaderSize {
			t.Fatalf("expected %d bytes, got %d", HeaderSize, len(raw))
		}
		got, err := DecodeHeader(order, raw)
		if err != nil {
			t.Fatalf("DecodeHeader failed: %v", err)
		}
		if got != h {
			t.Errorf("%v: expected %+v, got %+v", order, h, got)
		}
	}
}

func TestHeaderLayout(t *testing.T) {
	raw := EncodeHeader(binary.LittleEndian, Header{BlockLength: 0x33, Type: dtype.String, M: 4, N: 1, O: 1, NameLength: 2})
	want := []byte{
		0x33, 0, 0, 0, 0, 0, 0, 0,
		20, 0, 0, 0,
		4, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
		2, 0, 0, 0,
	}
	if !bytes.Equal(raw, want) {
		t.Errorf("unexpected layout\n got %v\nwant %v", raw, want)
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	_, err := DecodeHeader(binary.LittleEndian, make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("expected ErrTruncatedHeader, got %v", err)
	}
}

func TestHeaderValidate(t *testing.T) {
	tests := []struct {
		name string
		h    Header
		want error
	}{
		{"valid", NewHeader("x", dtype.Double, 2, 1, 1, 16), nil},
		{"empty array", NewHeader("x", dtype.Double, 0, 0, 0, 0), nil},
		{"unknown type", NewHeader("x", dtype.Code(99), 1, 1, 1, 3), nil},
		{"short block", Header{BlockLength: 10, NameLength: 1}, ErrInvalidHeader},
		{"negative dim", NewHeader("x", dtype.Double, -1, 1, 1, 0), ErrInvalidHeader},
		{"no name", Header{BlockLength: HeaderSize, M: 1, N: 1, O: 1}, ErrInvalidHeader},
		{"overrun", NewHeader("x", dtype.Double, 3, 1, 1, 16), ibin.ErrShortRead},
		{"huge dims", NewHeader("x", dtype.Double, 1<<30, 1<<20, 1, 8), ibin.ErrShortRead},
		{"overflowing dims", NewHeader("x", dtype.Double, math.MaxInt32, math.MaxInt32, math.MaxInt32, 8), ibin.ErrShortRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.h.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestHeaderSizesSaturate(t *testing.T) {
	h := Header{Type: dtype.Double, M: math.MaxInt32, N: math.MaxInt32, O: math.MaxInt32}
	if h.Elements() != math.MaxInt64 {
		t.Errorf("expected saturated element count, got %d", h.Elements())
	}
	if h.DataSize() != math.MaxInt64 {
		t.Errorf("expected saturated data size, got %d", h.DataSize())
	}
	h.N = 0
	if h.Elements() != 0 || h.DataSize() != 0 {
		t.Errorf("expected empty record, got %d elements", h.Elements())
	}
}

func TestReadHeader(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	h := NewHeader("abc", dtype.Uint8, 4, 1, 1, len(payload))
	buf := AppendRecord(binary.BigEndian, h, "abc", payload)
	if int64(len(buf)) != h.BlockLength {
		t.Fatalf("expected %d bytes, got %d", h.BlockLength, len(buf))
	}

	r := ibin.NewReader(bytesReaderAt(buf), ibin.Config{ByteOrder: binary.BigEndian})
	got, name, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if name != "abc" || got != h {
		t.Errorf("unexpected header %+v name %q", got, name)
	}
	rest, err := r.ReadBytes(len(payload))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest, payload) {
		t.Errorf("expected payload %v, got %v", payload, rest)
	}
}

func TestReadHeaderTruncated(t *testing.T) {
	r := ibin.NewReader(bytesReaderAt(make([]byte, 10)), ibin.Config{})
	if _, _, err := ReadHeader(r); !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("expected ErrTruncatedHeader, got %v", err)
	}
}

func TestReadHeaderNameOverrun(t *testing.T) {
	h := Header{BlockLength: HeaderSize + 2, Type: dtype.Uint8, M: 1, N: 1, O: 1, NameLength: 50}
	buf := append(EncodeHeader(binary.LittleEndian, h), 'a', 0)
	r := ibin.NewReader(bytesReaderAt(buf), ibin.Config{ByteOrder: binary.LittleEndian})
	if _, _, err := ReadHeader(r); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestSignature(t *testing.T) {
	if SignatureSize != 24 {
		t.Errorf("expected 24 byte signature, got %d", SignatureSize)
	}

	order, err := DetectOrder(Signature(binary.BigEndian))
	if err != nil || !ibin.SameOrder(order, binary.BigEndian) {
		t.Errorf("expected big endian, got %v (%v)", order, err)
	}
	order, err = ReadSignature(bytesReaderAt(append(Signature(binary.LittleEndian), 0xAA)))
	if err != nil || !ibin.SameOrder(order, binary.LittleEndian) {
		t.Errorf("expected little endian, got %v (%v)", order, err)
	}

	for _, bad := range [][]byte{nil, []byte("DataTank"), []byte("DataTank Binary File XX\x00")} {
		if _, err := ReadSignature(bytesReaderAt(bad)); !errors.Is(err, ErrBadSignature) {
			t.Errorf("%q: expected ErrBadSignature, got %v", bad, err)
		}
	}
}
