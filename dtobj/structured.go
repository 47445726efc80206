package dtobj

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const (
	TagStructuredGrid2D = "2D Structured Grid"
	TagStructuredGrid3D = "3D Structured Grid"
)

// coords returns the float32 coordinates of a grid axis array.
func coords(a *dtbin.Array) []float32 {
	v, _ := dtbin.Elements[float32](a)
	return v
}

// toCoords converts a to float32.
func toCoords(a *dtbin.Array) (*dtbin.Array, error) {
	if a == nil {
		return nil, errors.Wrap(ErrInvalid, "missing coordinates")
	}
	if a.Type() == dtbin.Single {
		return a, nil
	}
	return a.Convert(dtbin.Single)
}

// broadcast expands a, whose extents are each 1 or equal to shape, to shape.
func broadcast(a *dtbin.Array, shape []int) *dtbin.Array {
	src, have := coords(a), a.Shape()
	if sameShape(have, shape) {
		return a
	}
	strides := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if have[i] != 1 {
			strides[i] = step
		}
		step *= have[i]
	}

	out := make([]float32, product(shape))
	idx := make([]int, len(shape))
	for i := range out {
		off := 0
		for k, x := range idx {
			off += x * strides[k]
		}
		out[i] = src[off]
		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return dtbin.MustArray(out, shape...)
}

// broadcastable reports whether every extent of have is 1 or equals the
// matching extent of shape.
func broadcastable(have, shape []int) bool {
	if len(have) != len(shape) {
		return false
	}
	for i := range have {
		if have[i] != 1 && have[i] != shape[i] {
			return false
		}
	}
	return true
}

func coordRange(a *dtbin.Array) (lo, hi float64) {
	l, h, ok := nanMinMax(coords(a))
	if !ok {
		return 0, 0
	}
	return float64(l), float64(h)
}

func indexCoords(n int) *dtbin.Array {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i)
	}
	return dtbin.MustArray(v)
}

// StructuredGrid2D is a logically rectangular grid of rows × cols points.
// It is either rectilinear, with x stored as (1, cols) and y as (rows, 1),
// or curvilinear, with full (rows, cols) coordinate arrays.
type StructuredGrid2D struct {
	x, y        *dtbin.Array
	rows, cols  int
	rectilinear bool
	mask        *Mask
}

// NewRectilinearGrid2D returns the grid of every (x[j], y[i]).
func NewRectilinearGrid2D(x, y []float64) *StructuredGrid2D {
	g, _ := NewStructuredGrid2D(dtbin.MustArray(x), dtbin.MustArray(y), nil)
	return g
}

// NewStructuredGrid2D builds a grid from coordinate arrays. One-dimensional
// x and y give a rectilinear grid, as do x of shape (1, cols) with y of
// shape (rows, 1). Otherwise x and y must both have shape (rows, cols). A
// leading axis of extent 1 is ignored. mask may be nil.
func NewStructuredGrid2D(x, y *dtbin.Array, mask *Mask) (*StructuredGrid2D, error) {
	var err error
	if x, err = toCoords(x); err != nil {
		return nil, err
	}
	if y, err = toCoords(y); err != nil {
		return nil, err
	}
	if x.Rank() == 3 {
		if x, err = fitRank(x, 2); err != nil {
			return nil, err
		}
	}
	if y.Rank() == 3 {
		if y, err = fitRank(y, 2); err != nil {
			return nil, err
		}
	}

	xs, ys := x.Shape(), y.Shape()
	g := &StructuredGrid2D{}
	switch {
	case x.Rank() == 1 && (y.Rank() == 1 || (y.Rank() == 2 && ys[1] == 1)):
		g.rows, g.cols = y.Len(), xs[0]
	case x.Rank() == 2 && y.Rank() == 2 && xs[0] == 1 && ys[1] == 1 && !sameShape(xs, ys):
		g.rows, g.cols = ys[0], xs[1]
	case x.Rank() == 2 && sameShape(xs, ys):
		g.rows, g.cols = xs[0], xs[1]
		g.x, g.y = x, y
	default:
		return nil, errors.Wrapf(ErrInvalid, "coordinate shapes %v and %v", xs, ys)
	}
	if g.x == nil {
		g.rectilinear = true
		g.x, _ = x.Reshape(1, g.cols)
		g.y, _ = y.Reshape(g.rows, 1)
	}
	if mask != nil {
		if !mask.fits([]int{g.rows, g.cols}) {
			return nil, errors.Wrapf(ErrInvalid, "mask shape %v does not match grid %dx%d", mask.Shape(), g.rows, g.cols)
		}
		g.mask = mask
	}
	return g, nil
}

// Shape returns the number of rows and columns.
func (g *StructuredGrid2D) Shape() (rows, cols int) { return g.rows, g.cols }

// Rectilinear reports whether the grid stores coordinate vectors.
func (g *StructuredGrid2D) Rectilinear() bool {
	return g.rectilinear
}

// X returns the x coordinates as stored.
func (g *StructuredGrid2D) X() *dtbin.Array { return g.x }

// Y returns the y coordinates as stored.
func (g *StructuredGrid2D) Y() *dtbin.Array { return g.y }

// FullX returns the x coordinate of every point, shape (rows, cols).
func (g *StructuredGrid2D) FullX() *dtbin.Array {
	return broadcast(g.x, []int{g.rows, g.cols})
}

// FullY returns the y coordinate of every point, shape (rows, cols).
func (g *StructuredGrid2D) FullY() *dtbin.Array {
	return broadcast(g.y, []int{g.rows, g.cols})
}

// Mask returns the mask, or nil.
func (g *StructuredGrid2D) Mask() *Mask { return g.mask }

// BoundingBox returns the extent of the coordinates, ignoring NaN.
func (g *StructuredGrid2D) BoundingBox() Region2D {
	var r Region2D
	r.XMin, r.XMax = coordRange(g.x)
	r.YMin, r.YMax = coordRange(g.y)
	return r
}

func (g *StructuredGrid2D) String() string {
	return fmt.Sprintf("%s %dx%d %v", TagStructuredGrid2D, g.rows, g.cols, g.BoundingBox())
}

func (*StructuredGrid2D) DTType() string { return TagStructuredGrid2D }

func (g *StructuredGrid2D) WriteDT(f *dtbin.File, name string) error {
	if err := g.BoundingBox().WriteDT(f, name+"_bbox2D"); err != nil {
		return err
	}
	if err := f.AppendArray(name+"_X", g.x); err != nil {
		return err
	}
	if err := f.AppendArray(name+"_Y", g.y); err != nil {
		return err
	}
	if g.mask != nil {
		if err := g.mask.WriteDT(f, name+"_dom"); err != nil {
			return err
		}
	}
	empty, _ := dtbin.EmptyArray(dtbin.Int32)
	return f.AppendArray(name, empty)
}

// ReadStructuredGrid2D reads a 2D Structured Grid.
func ReadStructuredGrid2D(f *dtbin.File, name string) (*StructuredGrid2D, error) {
	x, err := readArray(f, name+"_X", 2)
	if err != nil {
		return nil, err
	}
	y, err := readArray(f, name+"_Y", 2)
	if err != nil {
		return nil, err
	}
	mask, err := ReadMask(f, name+"_dom")
	if err != nil {
		return nil, err
	}
	g, err := NewStructuredGrid2D(x, y, mask)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", name)
	}
	return g, nil
}

// StructuredGrid3D is a logically box-shaped grid of (nz, ny, nx) points.
// Each coordinate array has that shape or extent 1 along the axes it does
// not vary on; a rectilinear grid stores x as (1, 1, nx), y as (1, ny, 1)
// and z as (nz, 1, 1).
type StructuredGrid3D struct {
	x, y, z *dtbin.Array
	shape   []int
	mask    *Mask
}

// NewRectilinearGrid3D returns the grid of every (x[k], y[j], z[i]).
func NewRectilinearGrid3D(x, y, z []float64) *StructuredGrid3D {
	g, _ := NewStructuredGrid3D(dtbin.MustArray(x), dtbin.MustArray(y), dtbin.MustArray(z), nil)
	return g
}

// NewStructuredGrid3D builds a grid from coordinate arrays, either three
// vectors or three arrays of rank 3. mask may be nil.
func NewStructuredGrid3D(x, y, z *dtbin.Array, mask *Mask) (*StructuredGrid3D, error) {
	var err error
	if x, err = toCoords(x); err != nil {
		return nil, err
	}
	if y, err = toCoords(y); err != nil {
		return nil, err
	}
	if z, err = toCoords(z); err != nil {
		return nil, err
	}

	g := &StructuredGrid3D{}
	switch {
	case x.Rank() == 1 && y.Rank() == 1 && z.Rank() == 1:
		g.shape = []int{z.Len(), y.Len(), x.Len()}
		g.x, _ = x.Reshape(1, 1, x.Len())
		g.y, _ = y.Reshape(1, y.Len(), 1)
		g.z, _ = z.Reshape(z.Len(), 1, 1)
	case x.Rank() == 3 && y.Rank() == 3 && z.Rank() == 3:
		g.shape = []int{z.Shape()[0], y.Shape()[1], x.Shape()[2]}
		for _, a := range []*dtbin.Array{x, y, z} {
			if !broadcastable(a.Shape(), g.shape) {
				return nil, errors.Wrapf(ErrInvalid, "coordinate shape %v does not fit grid %v", a.Shape(), g.shape)
			}
		}
		g.x, g.y, g.z = x, y, z
	default:
		return nil, errors.Wrapf(ErrInvalid, "coordinate ranks %d, %d and %d", x.Rank(), y.Rank(), z.Rank())
	}
	if mask != nil {
		if !mask.fits(g.shape) {
			return nil, errors.Wrapf(ErrInvalid, "mask shape %v does not match grid %v", mask.Shape(), g.shape)
		}
		g.mask = mask
	}
	return g, nil
}

// Shape returns (nz, ny, nx).
func (g *StructuredGrid3D) Shape() []int {
	return append([]int(nil), g.shape...)
}

// X returns the x coordinates as stored.
func (g *StructuredGrid3D) X() *dtbin.Array { return g.x }

// Y returns the y coordinates as stored.
func (g *StructuredGrid3D) Y() *dtbin.Array { return g.y }

// Z returns the z coordinates as stored.
func (g *StructuredGrid3D) Z() *dtbin.Array { return g.z }

// FullX returns the x coordinate of every point.
func (g *StructuredGrid3D) FullX() *dtbin.Array { return broadcast(g.x, g.shape) }

// FullY returns the y coordinate of every point.
func (g *StructuredGrid3D) FullY() *dtbin.Array { return broadcast(g.y, g.shape) }

// FullZ returns the z coordinate of every point.
func (g *StructuredGrid3D) FullZ() *dtbin.Array { return broadcast(g.z, g.shape) }

// Mask returns the mask, or nil.
func (g *StructuredGrid3D) Mask() *Mask { return g.mask }

// BoundingBox returns the extent of the coordinates, ignoring NaN.
func (g *StructuredGrid3D) BoundingBox() Region3D {
	var r Region3D
	r.XMin, r.XMax = coordRange(g.x)
	r.YMin, r.YMax = coordRange(g.y)
	r.ZMin, r.ZMax = coordRange(g.z)
	return r
}

func (g *StructuredGrid3D) checkSlice(axis, i int) error {
	if i < 0 || i >= g.shape[axis] {
		return errors.Wrapf(ErrInvalid, "slice %d outside [0, %d)", i, g.shape[axis])
	}
	return nil
}

// SliceXY returns the horizontal layer k as a 2D grid of (ny, nx) points.
func (g *StructuredGrid3D) SliceXY(k int) (*StructuredGrid2D, error) {
	if err := g.checkSlice(0, k); err != nil {
		return nil, err
	}
	xs, ys := g.x.Shape(), g.y.Shape()
	if xs[0] == 1 && xs[1] == 1 && ys[0] == 1 && ys[2] == 1 {
		x, _ := g.x.Reshape(xs[2])
		y, _ := g.y.Reshape(ys[1])
		return NewStructuredGrid2D(x, y, nil)
	}
	return NewStructuredGrid2D(slab(g.FullX(), 0, k), slab(g.FullY(), 0, k), nil)
}

// SliceXZ returns the layer at y index j as a 2D grid with x along the
// columns and z along the rows.
func (g *StructuredGrid3D) SliceXZ(j int) (*StructuredGrid2D, error) {
	if err := g.checkSlice(1, j); err != nil {
		return nil, err
	}
	return NewStructuredGrid2D(slab(g.FullX(), 1, j), slab(g.FullZ(), 1, j), nil)
}

// SliceYZ returns the layer at x index i as a 2D grid with y along the
// columns and z along the rows.
func (g *StructuredGrid3D) SliceYZ(i int) (*StructuredGrid2D, error) {
	if err := g.checkSlice(2, i); err != nil {
		return nil, err
	}
	return NewStructuredGrid2D(slab(g.FullY(), 2, i), slab(g.FullZ(), 2, i), nil)
}

// slab extracts index i along axis of a full rank 3 array.
func slab(a *dtbin.Array, axis, i int) *dtbin.Array {
	src, s := coords(a), a.Shape()
	var out []float32
	var shape []int
	switch axis {
	case 0:
		shape = []int{s[1], s[2]}
		out = append(out, src[i*s[1]*s[2]:(i+1)*s[1]*s[2]]...)
	case 1:
		shape = []int{s[0], s[2]}
		for k := 0; k < s[0]; k++ {
			row := (k*s[1] + i) * s[2]
			out = append(out, src[row:row+s[2]]...)
		}
	default:
		shape = []int{s[0], s[1]}
		for k := 0; k < s[0]; k++ {
			for j := 0; j < s[1]; j++ {
				out = append(out, src[(k*s[1]+j)*s[2]+i])
			}
		}
	}
	if out == nil {
		out = []float32{}
	}
	return dtbin.MustArray(out, shape...)
}

func (g *StructuredGrid3D) String() string {
	return fmt.Sprintf("%s %v", TagStructuredGrid3D, g.shape)
}

func (*StructuredGrid3D) DTType() string { return TagStructuredGrid3D }

func (g *StructuredGrid3D) WriteDT(f *dtbin.File, name string) error {
	if err := g.BoundingBox().WriteDT(f, name+"_bbox3D"); err != nil {
		return err
	}
	for _, part := range []struct {
		suffix string
		a      *dtbin.Array
	}{{"_X", g.x}, {"_Y", g.y}, {"_Z", g.z}} {
		if err := f.AppendArray(name+part.suffix, part.a); err != nil {
			return err
		}
	}
	if g.mask != nil {
		if err := g.mask.WriteDT(f, name+"_dom"); err != nil {
			return err
		}
	}
	empty, _ := dtbin.EmptyArray(dtbin.Int32)
	return f.AppendArray(name, empty)
}

// ReadStructuredGrid3D reads a 3D Structured Grid.
func ReadStructuredGrid3D(f *dtbin.File, name string) (*StructuredGrid3D, error) {
	var axes [3]*dtbin.Array
	for i, suffix := range []string{"_X", "_Y", "_Z"} {
		a, err := readArray(f, name+suffix, 3)
		if err != nil {
			return nil, err
		}
		axes[i] = a
	}
	mask, err := ReadMask(f, name+"_dom")
	if err != nil {
		return nil, err
	}
	g, err := NewStructuredGrid3D(axes[0], axes[1], axes[2], mask)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", name)
	}
	return g, nil
}
