package dtbin

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"

	"github.com/robert-malhotra/go-dtbin/internal/dtype"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// Object is a compound value that writes itself as several records.
//
// WriteDT must use only the anonymous append methods (AppendString,
// AppendArray, AppendScalar, WriteAnonymous, WriteAlias); exposing the
// top-level name is the caller's job.
type Object interface {
	DTType() string
	WriteDT(f *File, name string) error
}

// AppendString appends a string record. Invalid UTF-8 is rejected.
func (f *File) AppendString(name, text string) error {
	if !utf8.ValidString(text) {
		return errors.Errorf("string for %q is not valid UTF-8", name)
	}
	payload := make([]byte, len(text)+1)
	copy(payload, text)
	h := record.NewHeader(name, dtype.String, int32(len(text)+1), 1, 1, len(payload))
	return f.appendRecord(name, h, payload)
}

// AppendText decodes raw from a legacy character encoding and appends it as
// a UTF-8 string record.
func (f *File) AppendText(name string, raw []byte, enc encoding.Encoding) error {
	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return errors.Wrapf(err, "decoding text for %q", name)
	}
	return f.AppendString(name, string(text))
}

// AppendArray appends a numeric record. The logical shape (d0, d1, d2) is
// stored reversed as m = d[last], n = d[second-last], o = d[first], with
// missing extents set to 1; the C-order element bytes are unchanged.
func (f *File) AppendArray(name string, a *Array) error {
	if a == nil {
		return errors.Wrapf(ErrUnsupportedType, "nil array for %q", name)
	}
	rank := a.Rank()
	if rank < 1 || rank > 3 {
		return errors.Wrapf(ErrRank, "%q has %d dimensions", name, rank)
	}
	dims := [3]int32{1, 1, 1}
	for i := 0; i < rank; i++ {
		dims[i] = int32(a.shape[rank-1-i])
	}

	code, payload, err := dtype.Encode(a.data, f.order)
	if err != nil {
		return errors.Wrapf(ErrUnsupportedType, "%q: %v", name, err)
	}
	h := record.NewHeader(name, code, dims[0], dims[1], dims[2], len(payload))
	return f.appendRecord(name, h, payload)
}

// AppendScalar appends a single-element numeric record.
func (f *File) AppendScalar(name string, v any) error {
	s, ok := scalarOf(v)
	if !ok {
		return errors.Wrapf(ErrUnsupportedType, "%q: %T", name, v)
	}
	return f.AppendArray(name, s.array())
}

// WriteAnonymous appends v without exposing it. Strings, Go numbers,
// Scalar, typed slices, *Array and Object values are accepted.
func (f *File) WriteAnonymous(name string, v any) error {
	switch x := v.(type) {
	case string:
		return f.AppendString(name, x)
	case String:
		return f.AppendString(name, string(x))
	case *Array:
		return f.AppendArray(name, x)
	case Array:
		return f.AppendArray(name, &x)
	case Object:
		return x.WriteDT(f, name)
	}
	if _, ok := scalarOf(v); ok {
		return f.AppendScalar(name, v)
	}
	a, err := ArrayOf(v)
	if err != nil {
		return errors.Wrapf(err, "writing %q", name)
	}
	return f.AppendArray(name, a)
}

// appendRecord writes one complete record at the end of the file and
// updates the index before returning.
func (f *File) appendRecord(name string, h record.Header, payload []byte) error {
	if f.closed {
		return ErrClosed
	}
	if f.writer == nil {
		return ErrReadOnly
	}
	if err := f.refresh(); err != nil {
		return err
	}
	if f.index.Contains(name) {
		return errors.Wrapf(ErrExists, "%q", name)
	}

	if f.allocator.EOF() == 0 {
		sig := record.Signature(f.order)
		off := f.allocator.Alloc(int64(len(sig)), "signature")
		if err := f.writer.At(off).WriteBytes(sig); err != nil {
			f.allocator.Rollback(off)
			return errors.Wrap(err, "writing signature")
		}
	}

	buf := record.AppendRecord(f.order, h, name, payload)
	off := f.allocator.Alloc(int64(len(buf)), name)
	if err := f.writer.At(off).WriteBytes(buf); err != nil {
		f.allocator.Rollback(off)
		if terr := f.file.Truncate(off); terr != nil {
			f.log.WithError(terr).Warn("could not discard partial record")
		}
		return errors.Wrapf(err, "writing %q", name)
	}
	if f.sync {
		if err := f.file.Sync(); err != nil {
			return errors.Wrapf(err, "syncing %q", name)
		}
	}
	f.index.Add(name, off, f.allocator.EOF())

	f.log.WithFields(logrus.Fields{
		"name":   name,
		"type":   h.Type.String(),
		"dims":   fmt.Sprintf("%dx%dx%d", h.M, h.N, h.O),
		"offset": off,
	}).Trace("appended record")
	return nil
}
