package dtobj

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

// Type tags of the fixed-size kinds and point collections.
const (
	TagPoint2D                = "2D Point"
	TagPointValue2D           = "2D Point Value"
	TagVector2D               = "2D Vector"
	TagRegion2D               = "2D Region"
	TagRegion3D               = "3D Region"
	TagPointCollection2D      = "2D Point Collection"
	TagPointValueCollection2D = "2D Point Value Collection"
)

// Point2D is stored as the doubles (x, y).
type Point2D struct {
	X, Y float64
}

func (Point2D) DTType() string { return TagPoint2D }

func (p Point2D) WriteDT(f *dtbin.File, name string) error {
	return writeDoubles(f, name, p.X, p.Y)
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// ReadPoint2D reads a 2D Point.
func ReadPoint2D(f *dtbin.File, name string) (Point2D, error) {
	v, err := readDoubles(f, name, 2)
	if err != nil {
		return Point2D{}, err
	}
	return Point2D{X: v[0], Y: v[1]}, nil
}

// PointValue2D is stored as the doubles (x, y, v).
type PointValue2D struct {
	X, Y, V float64
}

func (PointValue2D) DTType() string { return TagPointValue2D }

func (p PointValue2D) WriteDT(f *dtbin.File, name string) error {
	return writeDoubles(f, name, p.X, p.Y, p.V)
}

// ReadPointValue2D reads a 2D Point Value.
func ReadPointValue2D(f *dtbin.File, name string) (PointValue2D, error) {
	v, err := readDoubles(f, name, 3)
	if err != nil {
		return PointValue2D{}, err
	}
	return PointValue2D{X: v[0], Y: v[1], V: v[2]}, nil
}

// Vector2D is a vector (u, v) anchored at (x, y), stored as (x, y, u, v).
type Vector2D struct {
	X, Y, U, V float64
}

func (Vector2D) DTType() string { return TagVector2D }

func (p Vector2D) WriteDT(f *dtbin.File, name string) error {
	return writeDoubles(f, name, p.X, p.Y, p.U, p.V)
}

// ReadVector2D reads a 2D Vector.
func ReadVector2D(f *dtbin.File, name string) (Vector2D, error) {
	v, err := readDoubles(f, name, 4)
	if err != nil {
		return Vector2D{}, err
	}
	return Vector2D{X: v[0], Y: v[1], U: v[2], V: v[3]}, nil
}

// Region2D is an axis-aligned rectangle stored as (xmin, xmax, ymin, ymax).
// It is also the layout of every "_bbox2D" record.
type Region2D struct {
	XMin, XMax, YMin, YMax float64
}

func (Region2D) DTType() string { return TagRegion2D }

func (r Region2D) WriteDT(f *dtbin.File, name string) error {
	return writeDoubles(f, name, r.XMin, r.XMax, r.YMin, r.YMax)
}

// Union returns the smallest region holding r and o. NaN bounds are
// ignored.
func (r Region2D) Union(o Region2D) Region2D {
	return Region2D{
		XMin: nanMin2(r.XMin, o.XMin),
		XMax: nanMax2(r.XMax, o.XMax),
		YMin: nanMin2(r.YMin, o.YMin),
		YMax: nanMax2(r.YMax, o.YMax),
	}
}

func (r Region2D) String() string {
	return fmt.Sprintf("x: [%g, %g] y: [%g, %g]", r.XMin, r.XMax, r.YMin, r.YMax)
}

// ReadRegion2D reads a 2D Region.
func ReadRegion2D(f *dtbin.File, name string) (Region2D, error) {
	v, err := readDoubles(f, name, 4)
	if err != nil {
		return Region2D{}, err
	}
	return Region2D{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}, nil
}

// Region3D is an axis-aligned box stored as
// (xmin, xmax, ymin, ymax, zmin, zmax).
type Region3D struct {
	XMin, XMax, YMin, YMax, ZMin, ZMax float64
}

func (Region3D) DTType() string { return TagRegion3D }

func (r Region3D) WriteDT(f *dtbin.File, name string) error {
	return writeDoubles(f, name, r.XMin, r.XMax, r.YMin, r.YMax, r.ZMin, r.ZMax)
}

// ReadRegion3D reads a 3D Region.
func ReadRegion3D(f *dtbin.File, name string) (Region3D, error) {
	v, err := readDoubles(f, name, 6)
	if err != nil {
		return Region3D{}, err
	}
	return Region3D{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3], ZMin: v[4], ZMax: v[5]}, nil
}

// boundingBox returns the NaN-ignoring extent of the points, or empty when
// there are none.
func boundingBox(xs, ys []float64, empty Region2D) Region2D {
	xlo, xhi, okx := nanMinMax(xs)
	ylo, yhi, oky := nanMinMax(ys)
	if !okx || !oky {
		return empty
	}
	return Region2D{XMin: xlo, XMax: xhi, YMin: ylo, YMax: yhi}
}

// emptyCollectionBox is the bounding box of a collection without points.
var emptyCollectionBox = Region2D{XMin: inf, XMax: -inf, YMin: inf, YMax: -inf}

// PointCollection2D is an unordered set of points.
type PointCollection2D struct {
	xs, ys []float64
}

// NewPointCollection2D returns a collection of the points (xs[i], ys[i]).
func NewPointCollection2D(xs, ys []float64) (*PointCollection2D, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrInvalid, "%d x values and %d y values", len(xs), len(ys))
	}
	return &PointCollection2D{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}, nil
}

// Add appends a point.
func (c *PointCollection2D) Add(p Point2D) {
	c.xs = append(c.xs, p.X)
	c.ys = append(c.ys, p.Y)
}

// Len returns the number of points.
func (c *PointCollection2D) Len() int { return len(c.xs) }

// Point returns point i.
func (c *PointCollection2D) Point(i int) Point2D {
	return Point2D{X: c.xs[i], Y: c.ys[i]}
}

// Points returns a copy of every point.
func (c *PointCollection2D) Points() []Point2D {
	out := make([]Point2D, len(c.xs))
	for i := range c.xs {
		out[i] = c.Point(i)
	}
	return out
}

// BoundingBox returns the extent of the points. An empty collection has
// the inverted infinite box.
func (c *PointCollection2D) BoundingBox() Region2D {
	return boundingBox(c.xs, c.ys, emptyCollectionBox)
}

func (*PointCollection2D) DTType() string { return TagPointCollection2D }

func (c *PointCollection2D) WriteDT(f *dtbin.File, name string) error {
	if err := c.BoundingBox().WriteDT(f, name+"_bbox2D"); err != nil {
		return err
	}
	return f.AppendArray(name, pairs(c.xs, c.ys))
}

// ReadPointCollection2D reads a 2D Point Collection.
func ReadPointCollection2D(f *dtbin.File, name string) (*PointCollection2D, error) {
	a, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	xs, ys, err := unpair(a, name)
	if err != nil {
		return nil, err
	}
	return &PointCollection2D{xs: xs, ys: ys}, nil
}

// PointValueCollection2D is a point collection with one value per point.
type PointValueCollection2D struct {
	points *PointCollection2D
	values []float64
}

// NewPointValueCollection2D pairs points with values.
func NewPointValueCollection2D(points *PointCollection2D, values []float64) (*PointValueCollection2D, error) {
	if points == nil {
		points = &PointCollection2D{}
	}
	if points.Len() != len(values) {
		return nil, errors.Wrapf(ErrInvalid, "%d points and %d values", points.Len(), len(values))
	}
	return &PointValueCollection2D{points: points, values: append([]float64(nil), values...)}, nil
}

// Add appends a point and its value.
func (c *PointValueCollection2D) Add(p PointValue2D) {
	c.points.Add(Point2D{X: p.X, Y: p.Y})
	c.values = append(c.values, p.V)
}

// Len returns the number of points.
func (c *PointValueCollection2D) Len() int { return len(c.values) }

// At returns point i with its value.
func (c *PointValueCollection2D) At(i int) PointValue2D {
	p := c.points.Point(i)
	return PointValue2D{X: p.X, Y: p.Y, V: c.values[i]}
}

// Points returns the underlying point collection.
func (c *PointValueCollection2D) Points() *PointCollection2D { return c.points }

// Values returns a copy of the values.
func (c *PointValueCollection2D) Values() []float64 {
	return append([]float64(nil), c.values...)
}

func (c *PointValueCollection2D) BoundingBox() Region2D { return c.points.BoundingBox() }

func (*PointValueCollection2D) DTType() string { return TagPointValueCollection2D }

func (c *PointValueCollection2D) WriteDT(f *dtbin.File, name string) error {
	if err := writeDoubles(f, name+"_V", c.values...); err != nil {
		return err
	}
	return c.points.WriteDT(f, name)
}

// ReadPointValueCollection2D reads a 2D Point Value Collection.
func ReadPointValueCollection2D(f *dtbin.File, name string) (*PointValueCollection2D, error) {
	points, err := ReadPointCollection2D(f, name)
	if err != nil {
		return nil, err
	}
	values, err := f.ReadFloat64s(name + "_V")
	if err != nil {
		return nil, err
	}
	return NewPointValueCollection2D(points, values)
}
