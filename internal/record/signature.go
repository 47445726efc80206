package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
)

// Container signatures. The final character names the byte order of every
// integer and payload that follows.
const (
	SignatureLE = "DataTank Binary File LE\x00"
	SignatureBE = "DataTank Binary File BE\x00"
)

// SignatureSize is the length of either signature, including its NUL.
const SignatureSize = len(SignatureLE)

// ErrBadSignature is returned when a file does not start with a known
// signature.
var ErrBadSignature = errors.New("bad container signature")

// Signature returns the signature bytes for a byte order.
func Signature(order binary.ByteOrder) []byte {
	if ibin.SameOrder(order, binary.BigEndian) {
		return []byte(SignatureBE)
	}
	return []byte(SignatureLE)
}

// DetectOrder returns the byte order named by a signature.
func DetectOrder(b []byte) (binary.ByteOrder, error) {
	if len(b) < SignatureSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadSignature, len(b))
	}
	switch {
	case bytes.Equal(b[:SignatureSize], []byte(SignatureLE)):
		return binary.LittleEndian, nil
	case bytes.Equal(b[:SignatureSize], []byte(SignatureBE)):
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadSignature, bytes.TrimRight(b[:SignatureSize], "\x00"))
	}
}

// ReadSignature reads and checks the signature at offset 0.
func ReadSignature(r io.ReaderAt) (binary.ByteOrder, error) {
	buf := make([]byte, SignatureSize)
	n, err := r.ReadAt(buf, 0)
	if n < SignatureSize {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("%w: file holds %d bytes", ErrBadSignature, n)
	}
	return DetectOrder(buf)
}
