package dtobj

import (
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

const (
	TagPath2D       = "2D Path"
	TagPathValues2D = "2D Path Values"
)

type loop struct {
	xs, ys []float64
}

// Path2D is a set of polylines (loops). On disk the loops are packed into
// one (L, 2) double array where each loop is preceded by the row
// (0, point count).
type Path2D struct {
	loops []loop
	bbox  Region2D
}

// NewPath2D returns a path with one loop through (xs[i], ys[i]). The loop
// must not be empty.
func NewPath2D(xs, ys []float64) (*Path2D, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrInvalid, "%d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, errors.Wrap(ErrInvalid, "path needs at least one point")
	}
	p := &Path2D{}
	p.appendLoop(xs, ys)
	p.bbox = boundingBox(xs, ys, Region2D{})
	return p, nil
}

// AddLoop appends another loop. An empty loop is ignored.
func (p *Path2D) AddLoop(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return errors.Wrapf(ErrInvalid, "%d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil
	}
	p.appendLoop(xs, ys)
	p.bbox = p.bbox.Union(boundingBox(xs, ys, Region2D{}))
	return nil
}

func (p *Path2D) appendLoop(xs, ys []float64) {
	p.loops = append(p.loops, loop{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	})
}

// NumLoops returns the number of loops.
func (p *Path2D) NumLoops() int { return len(p.loops) }

// Len returns the total number of points in every loop.
func (p *Path2D) Len() int {
	n := 0
	for _, l := range p.loops {
		n += len(l.xs)
	}
	return n
}

// Loop returns the points of loop i.
func (p *Path2D) Loop(i int) []Point2D {
	l := p.loops[i]
	out := make([]Point2D, len(l.xs))
	for j := range l.xs {
		out[j] = Point2D{X: l.xs[j], Y: l.ys[j]}
	}
	return out
}

// BoundingBox returns the extent of every loop.
func (p *Path2D) BoundingBox() Region2D { return p.bbox }

func (*Path2D) DTType() string { return TagPath2D }

func (p *Path2D) packed() *dtbin.Array {
	xs := make([]float64, 0, p.Len()+len(p.loops))
	ys := make([]float64, 0, cap(xs))
	for _, l := range p.loops {
		xs = append(append(xs, 0), l.xs...)
		ys = append(append(ys, float64(len(l.ys))), l.ys...)
	}
	return pairs(xs, ys)
}

func (p *Path2D) WriteDT(f *dtbin.File, name string) error {
	if err := p.bbox.WriteDT(f, name+"_bbox2D"); err != nil {
		return err
	}
	return f.AppendArray(name, p.packed())
}

// ReadPath2D reads a 2D Path.
func ReadPath2D(f *dtbin.File, name string) (*Path2D, error) {
	a, err := f.ReadArray(name)
	if err != nil {
		return nil, err
	}
	xs, ys, err := unpair(a, name)
	if err != nil {
		return nil, err
	}

	var p *Path2D
	for i := 0; i < len(xs); {
		count := int(ys[i])
		start, end := i+1, i+1+count
		if count < 0 || float64(count) != ys[i] || end > len(xs) {
			return nil, errors.Wrapf(ErrInvalid, "%q: bad loop header %v at row %d", name, ys[i], i)
		}
		if p == nil {
			if p, err = NewPath2D(xs[start:end], ys[start:end]); err != nil {
				return nil, errors.Wrapf(err, "%q", name)
			}
		} else if err := p.AddLoop(xs[start:end], ys[start:end]); err != nil {
			return nil, err
		}
		i = end
	}
	if p == nil {
		return nil, errors.Wrapf(ErrInvalid, "%q holds no loops", name)
	}
	return p, nil
}

// PathValues2D attaches one value to every point of a path.
type PathValues2D struct {
	path   *Path2D
	values []float64
}

// NewPathValues2D pairs path with values, given in loop order.
func NewPathValues2D(path *Path2D, values []float64) (*PathValues2D, error) {
	if path == nil {
		return nil, errors.Wrap(ErrInvalid, "path values need a path")
	}
	if path.Len() != len(values) {
		return nil, errors.Wrapf(ErrInvalid, "path has %d points, got %d values", path.Len(), len(values))
	}
	return &PathValues2D{path: path, values: append([]float64(nil), values...)}, nil
}

// Path returns the path.
func (pv *PathValues2D) Path() *Path2D { return pv.path }

// Values returns a copy of the values in loop order.
func (pv *PathValues2D) Values() []float64 {
	return append([]float64(nil), pv.values...)
}

// LoopValues returns the values of loop i.
func (pv *PathValues2D) LoopValues(i int) []float64 {
	start := 0
	for _, l := range pv.path.loops[:i] {
		start += len(l.xs)
	}
	n := len(pv.path.loops[i].xs)
	return append([]float64(nil), pv.values[start:start+n]...)
}

func (*PathValues2D) DTType() string { return TagPathValues2D }

// WriteDT writes the path under name and the values under "<name>_V",
// each loop's values preceded by its point count.
func (pv *PathValues2D) WriteDT(f *dtbin.File, name string) error {
	if err := pv.path.WriteDT(f, name); err != nil {
		return err
	}
	packed := make([]float64, 0, len(pv.values)+pv.path.NumLoops())
	start := 0
	for _, l := range pv.path.loops {
		n := len(l.xs)
		packed = append(packed, float64(n))
		packed = append(packed, pv.values[start:start+n]...)
		start += n
	}
	return writeDoubles(f, name+"_V", packed...)
}

// ReadPathValues2D reads a 2D Path Values object.
func ReadPathValues2D(f *dtbin.File, name string) (*PathValues2D, error) {
	path, err := ReadPath2D(f, name)
	if err != nil {
		return nil, err
	}
	packed, err := f.ReadFloat64s(name + "_V")
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, path.Len())
	pos := 0
	for i, l := range path.loops {
		n := len(l.xs)
		if pos >= len(packed) || packed[pos] != float64(n) || pos+1+n > len(packed) {
			return nil, errors.Wrapf(ErrInvalid, "%q: values of loop %d do not match the path", name+"_V", i)
		}
		values = append(values, packed[pos+1:pos+1+n]...)
		pos += 1 + n
	}
	return NewPathValues2D(path, values)
}
