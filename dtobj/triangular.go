package dtobj

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const (
	TagTriangularGrid2D        = "2D Triangular Grid"
	TagTriangularMesh2D        = "2D Triangular Mesh"
	TagTriangularVectorField2D = "2D Triangular Vector Field"
)

// TriangularGrid2D is a set of points joined into triangles. Triangles
// refer to points by zero-based index.
type TriangularGrid2D struct {
	xs, ys    []float64
	triangles []int32 // three indices per triangle
}

// NewTriangularGrid2D returns a grid over points. Every triangle index must
// name a point.
func NewTriangularGrid2D(triangles [][3]int32, points []Point2D) (*TriangularGrid2D, error) {
	g := &TriangularGrid2D{
		xs:        make([]float64, len(points)),
		ys:        make([]float64, len(points)),
		triangles: make([]int32, 0, 3*len(triangles)),
	}
	for i, p := range points {
		g.xs[i], g.ys[i] = p.X, p.Y
	}
	for _, t := range triangles {
		g.triangles = append(g.triangles, t[0], t[1], t[2])
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *TriangularGrid2D) validate() error {
	n := int32(len(g.xs))
	for i, p := range g.triangles {
		if p < 0 || p >= n {
			return errors.Wrapf(ErrInvalid, "triangle %d refers to point %d of %d", i/3, p, n)
		}
	}
	return nil
}

// NumPoints returns the number of points.
func (g *TriangularGrid2D) NumPoints() int { return len(g.xs) }

// NumTriangles returns the number of triangles.
func (g *TriangularGrid2D) NumTriangles() int { return len(g.triangles) / 3 }

// Point returns point i.
func (g *TriangularGrid2D) Point(i int) Point2D {
	return Point2D{X: g.xs[i], Y: g.ys[i]}
}

// Triangle returns the point indices of triangle i.
func (g *TriangularGrid2D) Triangle(i int) [3]int32 {
	return [3]int32{g.triangles[3*i], g.triangles[3*i+1], g.triangles[3*i+2]}
}

// BoundingBox returns the extent of the points.
func (g *TriangularGrid2D) BoundingBox() Region2D {
	return boundingBox(g.xs, g.ys, Region2D{})
}

func (g *TriangularGrid2D) String() string {
	return fmt.Sprintf("%s: %d points, %d triangles", TagTriangularGrid2D, g.NumPoints(), g.NumTriangles())
}

func (*TriangularGrid2D) DTType() string { return TagTriangularGrid2D }

func (g *TriangularGrid2D) WriteDT(f *dtbin.File, name string) error {
	if err := g.BoundingBox().WriteDT(f, name+"_bbox2D"); err != nil {
		return err
	}
	if err := f.AppendArray(name+"_pts", pairs(g.xs, g.ys)); err != nil {
		return err
	}
	return f.AppendArray(name, dtbin.MustArray(g.triangles, g.NumTriangles(), 3))
}

// ReadTriangularGrid2D reads a 2D Triangular Grid, following an alias
// stored under name.
func ReadTriangularGrid2D(f *dtbin.File, name string) (*TriangularGrid2D, error) {
	name, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	pts, err := f.ReadArray(name + "_pts")
	if err != nil {
		return nil, err
	}
	xs, ys, err := unpair(pts, name+"_pts")
	if err != nil {
		return nil, err
	}
	conns, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	if conns.Len()%3 != 0 {
		return nil, errors.Wrapf(ErrInvalid, "%q holds %d indices, want triples", name, conns.Len())
	}
	tri, err := conns.Convert(dtbin.Int32)
	if err != nil {
		return nil, err
	}
	data, _ := dtbin.Elements[int32](tri)
	g := &TriangularGrid2D{xs: xs, ys: ys, triangles: data}
	if err := g.validate(); err != nil {
		return nil, errors.Wrapf(err, "%q", name)
	}
	return g, nil
}

// pointValues squeezes a per-point array to one dimension.
func pointValues(a *dtbin.Array, n int, what string) (*dtbin.Array, error) {
	if a == nil {
		return nil, errors.Wrapf(ErrInvalid, "missing %s", what)
	}
	a = a.Squeeze()
	if a.Len() != n {
		return nil, errors.Wrapf(ErrInvalid, "%d %s for %d points", a.Len(), what, n)
	}
	return a, nil
}

// TriangularMesh2D is one value at every point of a triangular grid.
type TriangularMesh2D struct {
	gridRef
	grid   *TriangularGrid2D
	values *dtbin.Array
}

// NewTriangularMesh2D returns a mesh of values, one per grid point.
func NewTriangularMesh2D(grid *TriangularGrid2D, values *dtbin.Array) (*TriangularMesh2D, error) {
	if grid == nil {
		return nil, errors.Wrap(ErrInvalid, "missing grid")
	}
	values, err := pointValues(values, grid.NumPoints(), "values")
	if err != nil {
		return nil, err
	}
	return &TriangularMesh2D{grid: grid, values: values}, nil
}

// Grid returns the grid.
func (m *TriangularMesh2D) Grid() *TriangularGrid2D { return m.grid }

// Values returns the values.
func (m *TriangularMesh2D) Values() *dtbin.Array { return m.values }

// BoundingBox returns the extent of the grid.
func (m *TriangularMesh2D) BoundingBox() Region2D { return m.grid.BoundingBox() }

func (*TriangularMesh2D) DTType() string { return TagTriangularMesh2D }

func (m *TriangularMesh2D) WriteDT(f *dtbin.File, name string) error {
	if err := f.AppendArray(name+"_V", m.values); err != nil {
		return err
	}
	return m.writeGrid(f, name, m.grid)
}

// ReadTriangularMesh2D reads a 2D Triangular Mesh.
func ReadTriangularMesh2D(f *dtbin.File, name string) (*TriangularMesh2D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadTriangularGrid2D(f, gname)
	if err != nil {
		return nil, err
	}
	values, err := f.ReadArray(name + "_V")
	if err != nil {
		return nil, err
	}
	m, err := NewTriangularMesh2D(grid, values)
	if err != nil {
		return nil, err
	}
	m.gridRef = ref
	return m, nil
}

// TriangularVectorField2D is a vector (u, v) at every point of a
// triangular grid.
type TriangularVectorField2D struct {
	gridRef
	grid *TriangularGrid2D
	u, v *dtbin.Array
}

// NewTriangularVectorField2D returns a field with one u and one v per grid
// point.
func NewTriangularVectorField2D(grid *TriangularGrid2D, u, v *dtbin.Array) (*TriangularVectorField2D, error) {
	if grid == nil {
		return nil, errors.Wrap(ErrInvalid, "missing grid")
	}
	u, err := pointValues(u, grid.NumPoints(), "u values")
	if err != nil {
		return nil, err
	}
	if v, err = pointValues(v, grid.NumPoints(), "v values"); err != nil {
		return nil, err
	}
	return &TriangularVectorField2D{grid: grid, u: u, v: v}, nil
}

// Grid returns the grid.
func (vf *TriangularVectorField2D) Grid() *TriangularGrid2D { return vf.grid }

// Components returns u and v.
func (vf *TriangularVectorField2D) Components() (u, v *dtbin.Array) { return vf.u, vf.v }

// BoundingBox returns the extent of the grid.
func (vf *TriangularVectorField2D) BoundingBox() Region2D { return vf.grid.BoundingBox() }

func (*TriangularVectorField2D) DTType() string { return TagTriangularVectorField2D }

func (vf *TriangularVectorField2D) WriteDT(f *dtbin.File, name string) error {
	if err := f.AppendArray(name+"_VX", vf.u); err != nil {
		return err
	}
	if err := f.AppendArray(name+"_VY", vf.v); err != nil {
		return err
	}
	return vf.writeGrid(f, name, vf.grid)
}

// WriteWithSharedGrid records the field as the next step of s, which
// should have been created with this type's tag. The grid is written once
// under gridName, if the container does not hold it yet, and each step
// stores only an alias to it.
func (vf *TriangularVectorField2D) WriteWithSharedGrid(s *dtbin.Series, gridName string, t float64) error {
	if err := s.CheckTime(t); err != nil {
		return err
	}
	f := s.File()
	ok, err := f.Contains(gridName)
	if err != nil {
		return err
	}
	if !ok {
		if err := vf.grid.WriteDT(f, gridName); err != nil {
			return errors.Wrapf(err, "writing shared grid %q", gridName)
		}
	}
	if err := s.RecordStep(t); err != nil {
		return err
	}
	step := *vf
	step.ShareGrid(gridName)
	return step.WriteDT(f, s.StepName())
}

// ReadTriangularVectorField2D reads a 2D Triangular Vector Field.
func ReadTriangularVectorField2D(f *dtbin.File, name string) (*TriangularVectorField2D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadTriangularGrid2D(f, gname)
	if err != nil {
		return nil, err
	}
	u, err := f.ReadArray(name + "_VX")
	if err != nil {
		return nil, err
	}
	v, err := f.ReadArray(name + "_VY")
	if err != nil {
		return nil, err
	}
	vf, err := NewTriangularVectorField2D(grid, u, v)
	if err != nil {
		return nil, err
	}
	vf.gridRef = ref
	return vf, nil
}
