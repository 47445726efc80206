package dtobj

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const TagMesh2D = "2D Mesh"

// Grid is a uniform 2D grid: the origin of the first cell and the cell
// size. It is stored as the doubles (x0, y0, dx, dy).
type Grid struct {
	X0, Y0, DX, DY float64
}

// UnitGrid has its origin at zero and unit cells.
var UnitGrid = Grid{X0: 0, Y0: 0, DX: 1, DY: 1}

func (g Grid) values() []float64 {
	return []float64{g.X0, g.Y0, g.DX, g.DY}
}

// Extent returns the region covered by rows × cols cells.
func (g Grid) Extent(rows, cols int) Region2D {
	return Region2D{
		XMin: g.X0,
		XMax: g.X0 + float64(cols)*g.DX,
		YMin: g.Y0,
		YMax: g.Y0 + float64(rows)*g.DY,
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("origin (%g, %g) cell %g×%g", g.X0, g.Y0, g.DX, g.DY)
}

func readGrid(f *dtbin.File, name string) (Grid, error) {
	v, err := readDoubles(f, name, 4)
	if err != nil {
		return Grid{}, err
	}
	return Grid{X0: v[0], Y0: v[1], DX: v[2], DY: v[3]}, nil
}

// Mesh2D is a 2D array of values on a uniform grid, with an optional mask
// of valid points.
type Mesh2D struct {
	values *dtbin.Array
	grid   Grid
	mask   *Mask
}

// NewMesh2D returns a mesh over values, which must be two-dimensional with
// shape (rows, cols). 8 and 16 bit integer values are stored as float32.
// mask may be nil.
func NewMesh2D(values *dtbin.Array, grid Grid, mask *Mask) (*Mesh2D, error) {
	if values == nil || values.Rank() != 2 {
		return nil, errors.Wrap(ErrInvalid, "mesh values must be two-dimensional")
	}
	switch values.Type() {
	case dtbin.Int8, dtbin.Uint8, dtbin.Int16, dtbin.Uint16:
		var err error
		if values, err = values.Convert(dtbin.Single); err != nil {
			return nil, err
		}
	}
	if mask != nil && !mask.fits(values.Shape()) {
		return nil, errors.Wrapf(ErrInvalid, "mask shape %v does not match values %v", mask.Shape(), values.Shape())
	}
	return &Mesh2D{values: values, grid: grid, mask: mask}, nil
}

// Values returns the values array.
func (m *Mesh2D) Values() *dtbin.Array { return m.values }

// Grid returns the grid.
func (m *Mesh2D) Grid() Grid { return m.grid }

// Mask returns the mask, or nil.
func (m *Mesh2D) Mask() *Mask { return m.mask }

// Size returns the number of rows and columns.
func (m *Mesh2D) Size() (rows, cols int) {
	s := m.values.Shape()
	return s[0], s[1]
}

// BoundingBox returns the region covered by the mesh.
func (m *Mesh2D) BoundingBox() Region2D {
	rows, cols := m.Size()
	return m.grid.Extent(rows, cols)
}

func (*Mesh2D) DTType() string { return TagMesh2D }

func (m *Mesh2D) WriteDT(f *dtbin.File, name string) error {
	if err := m.BoundingBox().WriteDT(f, name+"_bbox2D"); err != nil {
		return err
	}
	if err := writeDoubles(f, name+"_loc", m.grid.values()...); err != nil {
		return err
	}
	if m.mask != nil {
		if err := m.mask.WriteDT(f, name+"_dom"); err != nil {
			return err
		}
	}
	return f.AppendArray(name, m.values)
}

// ReadMesh2D reads a 2D Mesh.
func ReadMesh2D(f *dtbin.File, name string) (*Mesh2D, error) {
	values, err := readArray(f, name, 2)
	if err != nil {
		return nil, err
	}
	grid, err := readGrid(f, name+"_loc")
	if err != nil {
		return nil, err
	}
	mask, err := ReadMask(f, name+"_dom")
	if err != nil {
		return nil, err
	}
	return NewMesh2D(values, grid, mask)
}
