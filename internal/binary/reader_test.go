package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
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

func TestReaderReadInt32(t *testing.T) {
	data := bytesReaderAt{0x02, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(data, Config{ByteOrder: binary.LittleEndian})

	v, err := r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%x", v)
	}

	v, err = r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v != -1 {
		t.Errorf("expected -1, got %d", v)
	}
}

func TestReaderReadInt64BigEndian(t *testing.T) {
	data := bytesReaderAt{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00}
	r := NewReader(data, Config{ByteOrder: binary.BigEndian})

	v, err := r.ReadInt64()
	if err != nil {
		t.Fatalf("ReadInt64 failed: %v", err)
	}
	if v != 256 {
		t.Errorf("expected 256, got %d", v)
	}
	if r.Pos() != 8 {
		t.Errorf("expected position 8, got %d", r.Pos())
	}
}

func TestReaderShortRead(t *testing.T) {
	data := bytesReaderAt{0x01, 0x02, 0x03}
	r := NewReader(data, Config{})

	_, err := r.ReadInt32()
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("position should not advance on short read, got %d", r.Pos())
	}
}

func TestReaderCString(t *testing.T) {
	data := bytesReaderAt("abc\x00rest")
	r := NewReader(data, Config{})

	s, err := r.ReadCString(4)
	if err != nil {
		t.Fatalf("ReadCString failed: %v", err)
	}
	if s != "abc" {
		t.Errorf("expected %q, got %q", "abc", s)
	}
	if r.Pos() != 4 {
		t.Errorf("expected position 4, got %d", r.Pos())
	}
}

func TestReaderAt(t *testing.T) {
	data := bytesReaderAt{0x00, 0x00, 0x00, 0x00, 0x2A, 0x00, 0x00, 0x00}
	r := NewReader(data, Config{ByteOrder: binary.LittleEndian})

	r2 := r.At(4)
	v, err := r2.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
	// Original reader should be unchanged
	if r.Pos() != 0 {
		t.Errorf("expected original position 0, got %d", r.Pos())
	}
}

func TestSameOrder(t *testing.T) {
	if !SameOrder(binary.LittleEndian, binary.LittleEndian) {
		t.Error("little endian should equal itself")
	}
	if SameOrder(binary.LittleEndian, binary.BigEndian) {
		t.Error("little endian should not equal big endian")
	}
	if !IsNative(NativeOrder()) {
		t.Error("native order should be native")
	}
}
