package dtobj

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

type number interface {
	constraints.Integer | constraints.Float
}

// nanMinMax returns the extremes of vals ignoring NaN. ok is false when no
// value is a number.
func nanMinMax[T constraints.Float](vals []T) (lo, hi T, ok bool) {
	for _, v := range vals {
		if v != v {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

// nanMin2 is min ignoring NaN operands.
func nanMin2[T constraints.Float](a, b T) T {
	switch {
	case a != a:
		return b
	case b != b:
		return a
	}
	return min(a, b)
}

func nanMax2[T constraints.Float](a, b T) T {
	switch {
	case a != a:
		return b
	case b != b:
		return a
	}
	return max(a, b)
}

func convertSlice[D, S number](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

func product[T constraints.Integer](dims []T) T {
	p := T(1)
	for _, d := range dims {
		p *= d
	}
	return p
}

// fitRank reshapes a to the given rank by dropping or adding leading axes
// of extent 1. Arrays read from a container always have shape (o, n, m).
func fitRank(a *dtbin.Array, rank int) (*dtbin.Array, error) {
	shape := a.Shape()
	for len(shape) > rank && shape[0] == 1 {
		shape = shape[1:]
	}
	for len(shape) < rank {
		shape = append([]int{1}, shape...)
	}
	if len(shape) != rank {
		return nil, errors.Wrapf(ErrInvalid, "shape %v is not %d-dimensional", a.Shape(), rank)
	}
	return a.Reshape(shape...)
}

// readArray reads a numeric record as an array of the given rank.
func readArray(f *dtbin.File, name string, rank int) (*dtbin.Array, error) {
	a, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	out, err := fitRank(a, rank)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", name)
	}
	return out, nil
}

// readDoubles reads a numeric record holding exactly n elements.
func readDoubles(f *dtbin.File, name string, n int) ([]float64, error) {
	vals, err := f.ReadFloat64s(name)
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, errors.Wrapf(ErrInvalid, "%q holds %d values, want %d", name, len(vals), n)
	}
	return vals, nil
}

func writeDoubles(f *dtbin.File, name string, vals ...float64) error {
	return f.AppendArray(name, dtbin.MustArray(vals))
}

// pairs interleaves xs and ys into an (N, 2) double array.
func pairs(xs, ys []float64) *dtbin.Array {
	data := make([]float64, 0, 2*len(xs))
	for i := range xs {
		data = append(data, xs[i], ys[i])
	}
	return dtbin.MustArray(data, len(xs), 2)
}

// unpair splits an (N, 2) array back into coordinates.
func unpair(a *dtbin.Array, name string) (xs, ys []float64, err error) {
	a, err = fitRank(a, 2)
	if err != nil {
		return nil, nil, err
	}
	if a.Len() > 0 && a.Shape()[1] != 2 {
		return nil, nil, errors.Wrapf(ErrInvalid, "%q has shape %v, want (N, 2)", name, a.Shape())
	}
	flat := a.Float64s()
	n := len(flat) / 2
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = flat[2*i]
		ys[i] = flat[2*i+1]
	}
	return xs, ys, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isFloat(t dtbin.Type) bool {
	return t == dtbin.Double || t == dtbin.Single
}

var inf = math.Inf(1)
