package dtobj

import (
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const (
	TagStructuredMesh2D        = "2D Structured Mesh"
	TagStructuredMesh3D        = "3D Structured Mesh"
	TagStructuredVectorField2D = "2D Structured Vector Field"
	TagStructuredVectorField3D = "3D Structured Vector Field"
)

// gridRef records that an object's grid lives in a record of its own. The
// object then stores only the grid's name, as an alias.
type gridRef struct {
	shared string
}

// ShareGrid makes the object refer to a grid already written under name
// instead of writing its own copy.
func (r *gridRef) ShareGrid(name string) { r.shared = name }

// GridName returns the name of the shared grid, or "" if the object owns
// its grid.
func (r *gridRef) GridName() string { return r.shared }

func (r *gridRef) writeGrid(f *dtbin.File, name string, grid dtbin.Object) error {
	if r.shared != "" {
		return f.AppendString(name, r.shared)
	}
	return grid.WriteDT(f, name)
}

// resolveGrid follows an alias stored under name. It returns the name
// holding the grid and whether it differs from name.
func resolveGrid(f *dtbin.File, name string) (string, gridRef, error) {
	target, err := f.Resolve(name)
	if err != nil {
		return "", gridRef{}, err
	}
	if target != name {
		return target, gridRef{shared: target}, nil
	}
	return name, gridRef{}, nil
}

func checkValues(values *dtbin.Array, shape []int, what string) error {
	if values == nil {
		return errors.Wrapf(ErrInvalid, "missing %s", what)
	}
	if !sameShape(values.Shape(), shape) {
		return errors.Wrapf(ErrInvalid, "%s shape %v does not match grid %v", what, values.Shape(), shape)
	}
	return nil
}

// StructuredMesh2D is a 2D array of values on a structured grid.
type StructuredMesh2D struct {
	gridRef
	grid   *StructuredGrid2D
	values *dtbin.Array
}

// NewStructuredMesh2D returns a mesh of values, shape (rows, cols), on
// grid. A nil grid places value (i, j) at (j, i).
func NewStructuredMesh2D(values *dtbin.Array, grid *StructuredGrid2D) (*StructuredMesh2D, error) {
	if values == nil || values.Rank() != 2 {
		return nil, errors.Wrap(ErrInvalid, "mesh values must be two-dimensional")
	}
	if grid == nil {
		s := values.Shape()
		grid, _ = NewStructuredGrid2D(indexCoords(s[1]), indexCoords(s[0]), nil)
	}
	rows, cols := grid.Shape()
	if err := checkValues(values, []int{rows, cols}, "values"); err != nil {
		return nil, err
	}
	return &StructuredMesh2D{grid: grid, values: values}, nil
}

// Grid returns the grid.
func (m *StructuredMesh2D) Grid() *StructuredGrid2D { return m.grid }

// Values returns the values.
func (m *StructuredMesh2D) Values() *dtbin.Array { return m.values }

func (*StructuredMesh2D) DTType() string { return TagStructuredMesh2D }

func (m *StructuredMesh2D) WriteDT(f *dtbin.File, name string) error {
	if err := m.writeGrid(f, name, m.grid); err != nil {
		return err
	}
	return f.AppendArray(name+"_V", m.values)
}

// ReadStructuredMesh2D reads a 2D Structured Mesh.
func ReadStructuredMesh2D(f *dtbin.File, name string) (*StructuredMesh2D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadStructuredGrid2D(f, gname)
	if err != nil {
		return nil, err
	}
	values, err := readArray(f, name+"_V", 2)
	if err != nil {
		return nil, err
	}
	m, err := NewStructuredMesh2D(values, grid)
	if err != nil {
		return nil, err
	}
	m.gridRef = ref
	return m, nil
}

// StructuredMesh3D is a 3D array of values on a structured grid.
type StructuredMesh3D struct {
	gridRef
	grid   *StructuredGrid3D
	values *dtbin.Array
}

// NewStructuredMesh3D returns a mesh of values, shape (nz, ny, nx), on
// grid. A nil grid places value (i, j, k) at (k, j, i).
func NewStructuredMesh3D(values *dtbin.Array, grid *StructuredGrid3D) (*StructuredMesh3D, error) {
	if values == nil || values.Rank() != 3 {
		return nil, errors.Wrap(ErrInvalid, "mesh values must be three-dimensional")
	}
	if grid == nil {
		s := values.Shape()
		grid, _ = NewStructuredGrid3D(indexCoords(s[2]), indexCoords(s[1]), indexCoords(s[0]), nil)
	}
	if err := checkValues(values, grid.Shape(), "values"); err != nil {
		return nil, err
	}
	return &StructuredMesh3D{grid: grid, values: values}, nil
}

// Grid returns the grid.
func (m *StructuredMesh3D) Grid() *StructuredGrid3D { return m.grid }

// Values returns the values.
func (m *StructuredMesh3D) Values() *dtbin.Array { return m.values }

func (*StructuredMesh3D) DTType() string { return TagStructuredMesh3D }

func (m *StructuredMesh3D) WriteDT(f *dtbin.File, name string) error {
	if err := m.writeGrid(f, name, m.grid); err != nil {
		return err
	}
	return f.AppendArray(name+"_V", m.values)
}

// ReadStructuredMesh3D reads a 3D Structured Mesh.
func ReadStructuredMesh3D(f *dtbin.File, name string) (*StructuredMesh3D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadStructuredGrid3D(f, gname)
	if err != nil {
		return nil, err
	}
	values, err := readArray(f, name+"_V", 3)
	if err != nil {
		return nil, err
	}
	m, err := NewStructuredMesh3D(values, grid)
	if err != nil {
		return nil, err
	}
	m.gridRef = ref
	return m, nil
}

// StructuredVectorField2D is a vector (u, v) at every point of a
// structured grid.
type StructuredVectorField2D struct {
	gridRef
	grid *StructuredGrid2D
	u, v *dtbin.Array
}

// NewStructuredVectorField2D returns a field with components u and v, each
// of shape (rows, cols). A nil grid uses the index grid.
func NewStructuredVectorField2D(u, v *dtbin.Array, grid *StructuredGrid2D) (*StructuredVectorField2D, error) {
	if u == nil || u.Rank() != 2 {
		return nil, errors.Wrap(ErrInvalid, "vector components must be two-dimensional")
	}
	if grid == nil {
		s := u.Shape()
		grid, _ = NewStructuredGrid2D(indexCoords(s[1]), indexCoords(s[0]), nil)
	}
	rows, cols := grid.Shape()
	shape := []int{rows, cols}
	if err := checkValues(u, shape, "u"); err != nil {
		return nil, err
	}
	if err := checkValues(v, shape, "v"); err != nil {
		return nil, err
	}
	return &StructuredVectorField2D{grid: grid, u: u, v: v}, nil
}

// Grid returns the grid.
func (vf *StructuredVectorField2D) Grid() *StructuredGrid2D { return vf.grid }

// Components returns u and v.
func (vf *StructuredVectorField2D) Components() (u, v *dtbin.Array) { return vf.u, vf.v }

func (*StructuredVectorField2D) DTType() string { return TagStructuredVectorField2D }

func (vf *StructuredVectorField2D) WriteDT(f *dtbin.File, name string) error {
	if err := f.AppendArray(name+"_VX", vf.u); err != nil {
		return err
	}
	if err := f.AppendArray(name+"_VY", vf.v); err != nil {
		return err
	}
	return vf.writeGrid(f, name, vf.grid)
}

// ReadStructuredVectorField2D reads a 2D Structured Vector Field.
func ReadStructuredVectorField2D(f *dtbin.File, name string) (*StructuredVectorField2D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadStructuredGrid2D(f, gname)
	if err != nil {
		return nil, err
	}
	u, err := readArray(f, name+"_VX", 2)
	if err != nil {
		return nil, err
	}
	v, err := readArray(f, name+"_VY", 2)
	if err != nil {
		return nil, err
	}
	vf, err := NewStructuredVectorField2D(u, v, grid)
	if err != nil {
		return nil, err
	}
	vf.gridRef = ref
	return vf, nil
}

// StructuredVectorField3D is a vector (u, v, w) at every point of a
// structured 3D grid.
type StructuredVectorField3D struct {
	gridRef
	grid    *StructuredGrid3D
	u, v, w *dtbin.Array
}

// NewStructuredVectorField3D returns a field with components u, v and w,
// each of shape (nz, ny, nx). A nil grid uses the index grid.
func NewStructuredVectorField3D(u, v, w *dtbin.Array, grid *StructuredGrid3D) (*StructuredVectorField3D, error) {
	if u == nil || u.Rank() != 3 {
		return nil, errors.Wrap(ErrInvalid, "vector components must be three-dimensional")
	}
	if grid == nil {
		s := u.Shape()
		grid, _ = NewStructuredGrid3D(indexCoords(s[2]), indexCoords(s[1]), indexCoords(s[0]), nil)
	}
	shape := grid.Shape()
	for _, c := range []struct {
		a    *dtbin.Array
		what string
	}{{u, "u"}, {v, "v"}, {w, "w"}} {
		if err := checkValues(c.a, shape, c.what); err != nil {
			return nil, err
		}
	}
	return &StructuredVectorField3D{grid: grid, u: u, v: v, w: w}, nil
}

// Grid returns the grid.
func (vf *StructuredVectorField3D) Grid() *StructuredGrid3D { return vf.grid }

// Components returns u, v and w.
func (vf *StructuredVectorField3D) Components() (u, v, w *dtbin.Array) { return vf.u, vf.v, vf.w }

func (*StructuredVectorField3D) DTType() string { return TagStructuredVectorField3D }

func (vf *StructuredVectorField3D) WriteDT(f *dtbin.File, name string) error {
	for _, c := range []struct {
		suffix string
		a      *dtbin.Array
	}{{"_VX", vf.u}, {"_VY", vf.v}, {"_VZ", vf.w}} {
		if err := f.AppendArray(name+c.suffix, c.a); err != nil {
			return err
		}
	}
	return vf.writeGrid(f, name, vf.grid)
}

// ReadStructuredVectorField3D reads a 3D Structured Vector Field.
func ReadStructuredVectorField3D(f *dtbin.File, name string) (*StructuredVectorField3D, error) {
	gname, ref, err := resolveGrid(f, name)
	if err != nil {
		return nil, err
	}
	grid, err := ReadStructuredGrid3D(f, gname)
	if err != nil {
		return nil, err
	}
	var comps [3]*dtbin.Array
	for i, suffix := range []string{"_VX", "_VY", "_VZ"} {
		if comps[i], err = readArray(f, name+suffix, 3); err != nil {
			return nil, err
		}
	}
	vf, err := NewStructuredVectorField3D(comps[0], comps[1], comps[2], grid)
	if err != nil {
		return nil, err
	}
	vf.gridRef = ref
	return vf, nil
}
