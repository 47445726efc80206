package dtobj

import (
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const TagMask = "Mask"

// Mask marks a subset of the points of a grid of up to three dimensions.
//
// The points are numbered in C order over the logical shape (o, n, m), so
// m is the fastest axis. The mask is stored as runs along m: an (N, 2)
// int32 array of inclusive (start, end) point numbers, plus "<name>_dim"
// holding (m, n) or (m, n, o).
type Mask struct {
	m, n, o   int
	intervals []int32
}

// NewMask builds a mask from an array of one to three dimensions in which
// every non-zero element is inside the mask.
func NewMask(values *dtbin.Array) (*Mask, error) {
	if values == nil {
		return nil, errors.Wrap(ErrInvalid, "nil mask values")
	}
	shape := values.Shape()
	if len(shape) < 1 || len(shape) > 3 {
		return nil, errors.Wrapf(ErrInvalid, "mask values have %d dimensions", len(shape))
	}
	dims := [3]int{1, 1, 1}
	for i := range shape {
		dims[i] = shape[len(shape)-1-i]
	}
	mk := &Mask{m: dims[0], n: dims[1], o: dims[2]}

	flat := values.Float64s()
	for row := 0; row < mk.n*mk.o; row++ {
		base := row * mk.m
		for i := 0; i < mk.m; {
			for i < mk.m && flat[base+i] == 0 {
				i++
			}
			if i == mk.m {
				break
			}
			start := i
			for i < mk.m && flat[base+i] != 0 {
				i++
			}
			mk.intervals = append(mk.intervals, int32(base+start), int32(base+i-1))
		}
	}
	return mk, nil
}

// Dims returns the extents m, n and o.
func (mk *Mask) Dims() (m, n, o int) { return mk.m, mk.n, mk.o }

// Shape returns the logical shape: (n, m) for a planar mask, otherwise
// (o, n, m).
func (mk *Mask) Shape() []int {
	if mk.o == 1 {
		return []int{mk.n, mk.m}
	}
	return []int{mk.o, mk.n, mk.m}
}

// Intervals returns a copy of the inclusive runs of points inside the mask.
func (mk *Mask) Intervals() [][2]int32 {
	out := make([][2]int32, len(mk.intervals)/2)
	for i := range out {
		out[i] = [2]int32{mk.intervals[2*i], mk.intervals[2*i+1]}
	}
	return out
}

// Count returns the number of points inside the mask.
func (mk *Mask) Count() int {
	total := 0
	for i := 0; i < len(mk.intervals); i += 2 {
		total += int(mk.intervals[i+1]-mk.intervals[i]) + 1
	}
	return total
}

// Values expands the mask to a uint8 array of its logical shape holding 1
// inside and 0 outside.
func (mk *Mask) Values() *dtbin.Array {
	flat := make([]uint8, mk.m*mk.n*mk.o)
	for i := 0; i < len(mk.intervals); i += 2 {
		for j := mk.intervals[i]; j <= mk.intervals[i+1]; j++ {
			flat[j] = 1
		}
	}
	return dtbin.MustArray(flat, mk.Shape()...)
}

// fits reports whether the mask covers a grid of the given logical shape.
func (mk *Mask) fits(shape []int) bool {
	return sameShape(mk.Shape(), shape) || (mk.o == 1 && len(shape) == 3 && shape[0] == 1 && sameShape(mk.Shape(), shape[1:]))
}

func (*Mask) DTType() string { return TagMask }

func (mk *Mask) WriteDT(f *dtbin.File, name string) error {
	dims := []int32{int32(mk.m), int32(mk.n)}
	if mk.o > 1 {
		dims = append(dims, int32(mk.o))
	}
	if err := f.AppendArray(name+"_dim", dtbin.MustArray(dims)); err != nil {
		return err
	}
	if len(mk.intervals) == 0 {
		empty, _ := dtbin.EmptyArray(dtbin.Int32)
		return f.AppendArray(name, empty)
	}
	return f.AppendArray(name, dtbin.MustArray(mk.intervals, len(mk.intervals)/2, 2))
}

// ReadMask reads a mask. It returns nil without error when no interval
// record exists under name, which is how an absent mask is stored.
func ReadMask(f *dtbin.File, name string) (*Mask, error) {
	v, ok, err := f.Lookup(name)
	if err != nil || !ok {
		return nil, err
	}
	if _, isString := v.(dtbin.String); isString {
		return nil, errors.Wrapf(dtbin.ErrWrongKind, "mask %q is a string", name)
	}

	dims, err := f.ReadFloat64s(name + "_dim")
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 && len(dims) != 3 {
		return nil, errors.Wrapf(ErrInvalid, "%q holds %d extents", name+"_dim", len(dims))
	}
	mk := &Mask{m: int(dims[0]), n: int(dims[1]), o: 1}
	if len(dims) == 3 {
		mk.o = int(dims[2])
	}
	if mk.m < 0 || mk.n < 0 || mk.o < 1 {
		return nil, errors.Wrapf(ErrInvalid, "%q: extents %v", name+"_dim", dims)
	}

	a, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	if a.Len()%2 != 0 {
		return nil, errors.Wrapf(ErrInvalid, "%q holds %d values, want pairs", name, a.Len())
	}
	total := int32(mk.m * mk.n * mk.o)
	mk.intervals = convertSlice[int32](a.Float64s())
	for i := 0; i < len(mk.intervals); i += 2 {
		lo, hi := mk.intervals[i], mk.intervals[i+1]
		if lo < 0 || hi < lo || hi >= total {
			return nil, errors.Wrapf(ErrInvalid, "%q: interval [%d, %d] outside %d points", name, lo, hi, total)
		}
	}
	return mk, nil
}
