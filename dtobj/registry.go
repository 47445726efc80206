package dtobj

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

var (
	// ErrUnknownCompound is returned by Materialize for a type tag with no
	// registered reader. Callers may fall back to File.Read.
	ErrUnknownCompound = errors.New("unknown compound type")

	// ErrInvalid is returned when an object's parts are inconsistent.
	ErrInvalid = errors.New("invalid object")
)

// Factory rebuilds an object from the records stored under name.
type Factory func(f *dtbin.File, name string) (dtbin.Object, error)

// Registry maps type tags to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for tag.
func (r *Registry) Register(tag string, fn Factory) {
	r.factories[tag] = fn
}

// Lookup returns the factory for tag.
func (r *Registry) Lookup(tag string) (Factory, bool) {
	fn, ok := r.factories[tag]
	return fn, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.factories))
	for t := range r.factories {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Materialize reads the type tag exposing name and rebuilds the object
// with the matching factory. A variable with no exposure record fails with
// dtbin.ErrNotFound.
func (r *Registry) Materialize(f *dtbin.File, name string) (dtbin.Object, error) {
	tag, ok, err := f.ExposedType(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(dtbin.ErrNotFound, "no type tag for %q", name)
	}
	fn, ok := r.factories[tag]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCompound, "%q for %q", tag, name)
	}
	obj, err := fn(f, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %q", tag, name)
	}
	return obj, nil
}

// reader adapts a typed Read function to a Factory.
func reader[T dtbin.Object](read func(*dtbin.File, string) (T, error)) Factory {
	return func(f *dtbin.File, name string) (dtbin.Object, error) {
		obj, err := read(f, name)
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TagMask, func(f *dtbin.File, name string) (dtbin.Object, error) {
		m, err := ReadMask(f, name)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(dtbin.ErrNotFound, "%q", name)
		}
		return m, nil
	})
	r.Register(TagMesh2D, reader(ReadMesh2D))
	r.Register(TagBitmap2D, reader(ReadBitmap2D))
	r.Register(TagPath2D, reader(ReadPath2D))
	r.Register(TagPathValues2D, reader(ReadPathValues2D))
	r.Register(TagPointCollection2D, reader(ReadPointCollection2D))
	r.Register(TagPointValueCollection2D, reader(ReadPointValueCollection2D))
	r.Register(TagPoint2D, reader(ReadPoint2D))
	r.Register(TagPointValue2D, reader(ReadPointValue2D))
	r.Register(TagVector2D, reader(ReadVector2D))
	r.Register(TagRegion2D, reader(ReadRegion2D))
	r.Register(TagRegion3D, reader(ReadRegion3D))
	r.Register(TagStructuredGrid2D, reader(ReadStructuredGrid2D))
	r.Register(TagStructuredGrid3D, reader(ReadStructuredGrid3D))
	r.Register(TagStructuredMesh2D, reader(ReadStructuredMesh2D))
	r.Register(TagStructuredMesh3D, reader(ReadStructuredMesh3D))
	r.Register(TagStructuredVectorField2D, reader(ReadStructuredVectorField2D))
	r.Register(TagStructuredVectorField3D, reader(ReadStructuredVectorField3D))
	r.Register(TagTriangularGrid2D, reader(ReadTriangularGrid2D))
	r.Register(TagTriangularMesh2D, reader(ReadTriangularMesh2D))
	r.Register(TagTriangularVectorField2D, reader(ReadTriangularVectorField2D))
	return r
}

// Default returns the registry of every kind in this package. It is shared;
// use NewRegistry for a private set.
func Default() *Registry {
	return defaultRegistry
}

// Materialize rebuilds name with the default registry.
func Materialize(f *dtbin.File, name string) (dtbin.Object, error) {
	return defaultRegistry.Materialize(f, name)
}
