package dtobj

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

func createFile(t *testing.T) *dtbin.File {
	t.Helper()
	f, err := dtbin.Create(filepath.Join(t.TempDir(), "objects.dtbin"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// reopen returns a read-only handle on the same container.
func reopen(t *testing.T, f *dtbin.File) *dtbin.File {
	t.Helper()
	r, err := dtbin.Open(f.Path())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestDefaultRegistryTags(t *testing.T) {
	tags := Default().Tags()
	assert.Len(t, tags, 21)
	for _, tag := range []string{
		TagMask, TagMesh2D, TagBitmap2D, TagPath2D, TagPathValues2D,
		TagPointCollection2D, TagPointValueCollection2D, TagPoint2D,
		TagPointValue2D, TagVector2D, TagRegion2D, TagRegion3D,
		TagStructuredGrid2D, TagStructuredGrid3D, TagStructuredMesh2D,
		TagStructuredMesh3D, TagStructuredVectorField2D,
		TagStructuredVectorField3D, TagTriangularGrid2D,
		TagTriangularMesh2D, TagTriangularVectorField2D,
	} {
		_, ok := Default().Lookup(tag)
		assert.True(t, ok, tag)
	}
	assert.IsIncreasing(t, tags)
}

func TestMaterializeFixedKinds(t *testing.T) {
	f := createFile(t)
	objects := map[string]dtbin.Object{
		"p":   Point2D{X: 1, Y: -2},
		"pv":  PointValue2D{X: 1, Y: 2, V: 3},
		"vec": Vector2D{X: 0, Y: 1, U: 0.5, V: -0.5},
		"r2":  Region2D{XMin: -1, XMax: 1, YMin: 0, YMax: 10},
		"r3":  Region3D{XMin: 0, XMax: 1, YMin: 2, YMax: 3, ZMin: 4, ZMax: 5},
	}
	for name, obj := range objects {
		require.NoError(t, f.Write(name, obj), name)
	}

	r := reopen(t, f)
	for name, want := range objects {
		got, err := Materialize(r, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	tag, ok, err := r.ExposedType("vec")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TagVector2D, tag)

	raw, err := r.ReadFloat64s("r3")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, raw)
}

func TestMaterializeUnknownAndMissing(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.Write("title", "hello"))
	require.NoError(t, f.AppendScalar("hidden", 1.0))

	_, err := Materialize(f, "title")
	assert.ErrorIs(t, err, ErrUnknownCompound)

	_, err = Materialize(f, "hidden")
	assert.ErrorIs(t, err, dtbin.ErrNotFound)

	v, err := f.Read("title")
	require.NoError(t, err, "raw access still works")
	assert.Equal(t, dtbin.String("hello"), v)
}

func TestMaterializeWrongShape(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.Write("p", []float64{1, 2, 3}, dtbin.WithType(TagPoint2D)))
	_, err := Materialize(f, "p")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCustomRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Tags())

	r.Register("Origin", func(f *dtbin.File, name string) (dtbin.Object, error) {
		return Point2D{}, nil
	})
	assert.Equal(t, []string{"Origin"}, r.Tags())

	f := createFile(t)
	require.NoError(t, f.Write("o", Point2D{X: 3, Y: 4}, dtbin.WithType("Origin")))
	obj, err := r.Materialize(f, "o")
	require.NoError(t, err)
	assert.Equal(t, Point2D{}, obj)

	_, err = r.Materialize(f, "missing")
	assert.ErrorIs(t, err, dtbin.ErrNotFound)
}

func TestRegionUnion(t *testing.T) {
	a := Region2D{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	b := Region2D{XMin: -1, XMax: math.NaN(), YMin: 0.5, YMax: 3}
	assert.Equal(t, Region2D{XMin: -1, XMax: 1, YMin: 0, YMax: 3}, a.Union(b))
}
