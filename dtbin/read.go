package dtbin

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/internal/dtype"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// RecordInfo describes a record without its payload.
type RecordInfo struct {
	Name        string
	Type        Type
	M, N, O     int
	Offset      int64
	BlockLength int64
}

// Shape returns the logical shape (o, n, m) a read would produce.
func (ri RecordInfo) Shape() []int {
	return []int{ri.O, ri.N, ri.M}
}

// Elements returns m*n*o.
func (ri RecordInfo) Elements() int {
	return ri.M * ri.N * ri.O
}

// IsString reports whether the record holds a string.
func (ri RecordInfo) IsString() bool {
	return ri.Type == Text
}

// Names returns every record name in file order.
func (f *File) Names() ([]string, error) {
	if err := f.refresh(); err != nil {
		return nil, err
	}
	return f.index.Names(), nil
}

// Len returns the number of distinct record names.
func (f *File) Len() (int, error) {
	if err := f.refresh(); err != nil {
		return 0, err
	}
	return f.index.Len(), nil
}

// Contains reports whether a record called name exists.
func (f *File) Contains(name string) (bool, error) {
	if err := f.refresh(); err != nil {
		return false, err
	}
	return f.index.Contains(name), nil
}

// Each calls fn for every record in file order, stopping at the first error.
func (f *File) Each(fn func(name string, v Value) error) error {
	names, err := f.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		v, err := f.Read(name)
		if err != nil {
			return err
		}
		if err := fn(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Stat returns the header of a record.
func (f *File) Stat(name string) (RecordInfo, error) {
	ri, ok, err := f.stat(name)
	if err != nil {
		return RecordInfo{}, err
	}
	if !ok {
		return RecordInfo{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return ri, nil
}

func (f *File) stat(name string) (RecordInfo, bool, error) {
	if err := f.refresh(); err != nil {
		return RecordInfo{}, false, err
	}
	off, ok := f.index.Lookup(name)
	if !ok {
		return RecordInfo{}, false, nil
	}
	h, _, err := record.ReadHeader(f.reader.At(off))
	if err != nil {
		return RecordInfo{}, false, errors.Wrapf(err, "reading header of %q", name)
	}
	return RecordInfo{
		Name:        name,
		Type:        h.Type,
		M:           int(h.M),
		N:           int(h.N),
		O:           int(h.O),
		Offset:      off,
		BlockLength: h.BlockLength,
	}, true, nil
}

// Read returns the value of a record: String for string records, Scalar
// when m = n = o = 1, otherwise an *Array of shape (o, n, m). No axis is
// dropped, so a 1-D array written with shape (5) reads back as (1, 1, 5).
func (f *File) Read(name string) (Value, error) {
	v, ok, err := f.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return v, nil
}

// Lookup is Read for optional records: an absent name returns ok == false
// and no error.
func (f *File) Lookup(name string) (Value, bool, error) {
	if err := f.refresh(); err != nil {
		return nil, false, err
	}
	off, ok := f.index.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	v, err := f.readAt(off)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %q", name)
	}
	return v, true, nil
}

func (f *File) readAt(off int64) (Value, error) {
	r := f.reader.At(off)
	h, _, err := record.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		if errors.Is(err, ErrShortRead) {
			return nil, errors.Wrapf(err, "record at offset %d", off)
		}
		return nil, errors.Wrapf(ErrCorrupt, "record at offset %d: %v", off, err)
	}
	if h.BlockLength > f.index.Length()-off {
		return nil, errors.Wrapf(ErrShortRead, "record at offset %d needs %d bytes, file ends at %d",
			off, h.BlockLength, f.index.Length())
	}

	if h.Type == dtype.String {
		raw, err := r.ReadBytes(int(h.PayloadSize()))
		if err != nil {
			return nil, err
		}
		return String(bytes.Trim(raw, "\x00")), nil
	}

	if !h.Type.IsNumeric() {
		return nil, errors.Wrapf(ErrUnhandledType, "type code %d", int32(h.Type))
	}
	n := int(h.Elements())
	raw, err := r.ReadBytes(n * h.Type.Size())
	if err != nil {
		return nil, err
	}
	data, err := dtype.Decode(h.Type, f.order, raw, n)
	if err != nil {
		return nil, err
	}

	if h.M == 1 && h.N == 1 && h.O == 1 {
		s, _ := scalarFromSlice(data)
		return s, nil
	}
	return newArray(h.Type, data, n, []int{int(h.O), int(h.N), int(h.M)})
}

func scalarFromSlice(data any) (Scalar, bool) {
	switch s := data.(type) {
	case []float64:
		return NewScalar(s[0]), true
	case []float32:
		return NewScalar(s[0]), true
	case []int32:
		return NewScalar(s[0]), true
	case []uint16:
		return NewScalar(s[0]), true
	case []int16:
		return NewScalar(s[0]), true
	case []uint8:
		return NewScalar(s[0]), true
	case []int8:
		return NewScalar(s[0]), true
	default:
		return Scalar{}, false
	}
}

// ReadString reads a string record.
func (f *File) ReadString(name string) (string, error) {
	v, err := f.Read(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", errors.Wrapf(ErrWrongKind, "%q holds %v, not a string", name, v.Type())
	}
	return string(s), nil
}

// ReadArray reads a numeric record as an array. Scalars are returned as a
// one-element array of shape (1, 1, 1).
func (f *File) ReadArray(name string) (*Array, error) {
	v, err := f.Read(name)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *Array:
		return x, nil
	case Scalar:
		return x.array().Reshape(1, 1, 1)
	default:
		return nil, errors.Wrapf(ErrWrongKind, "%q holds a string, not an array", name)
	}
}

// ReadFloat64s reads a numeric record as a flat float64 slice.
func (f *File) ReadFloat64s(name string) ([]float64, error) {
	a, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	return a.Float64s(), nil
}

// ReadScalar reads a numeric record that holds exactly one element.
func (f *File) ReadScalar(name string) (Scalar, error) {
	v, err := f.Read(name)
	if err != nil {
		return Scalar{}, err
	}
	s, ok := v.(Scalar)
	if !ok {
		return Scalar{}, errors.Wrapf(ErrWrongKind, "%q is not a scalar", name)
	}
	return s, nil
}
