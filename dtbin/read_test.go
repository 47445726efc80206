package dtbin

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/robert-malhotra/go-dtbin/internal/dtype"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// storedShape pads a logical shape to the (o, n, m) form a read returns.
func storedShape(shape []int) []int {
	out := []int{1, 1, 1}
	copy(out[3-len(shape):], shape)
	return out
}

func roundTrip[T Element](t *testing.T, order binary.ByteOrder, data []T, shape ...int) {
	t.Helper()
	path := tempPath(t)
	f, err := Create(path, WithByteOrder(order))
	require.NoError(t, err)
	require.NoError(t, f.AppendArray("v", MustArray(data, shape...)))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	a, err := r.ReadArray("v")
	require.NoError(t, err)
	assert.Equal(t, dtype.CodeFor[T](), a.Type())
	assert.Equal(t, storedShape(shape), a.Shape())
	got, ok := Elements[T](a)
	require.True(t, ok)
	assert.Equal(t, data, got)
}

func TestRoundTripAllTypesAndRanks(t *testing.T) {
	orders := map[string]binary.ByteOrder{"LE": binary.LittleEndian, "BE": binary.BigEndian}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			for _, shape := range [][]int{{6}, {2, 3}, {3, 1, 2}} {
				roundTrip(t, order, []float64{0, -1.5, math.MaxFloat64, 3, 4, math.Inf(1)}, shape...)
				roundTrip(t, order, []float32{0, -1.5, 2, 3, 4, 5}, shape...)
				roundTrip(t, order, []int32{math.MinInt32, -1, 0, 1, 2, math.MaxInt32}, shape...)
				roundTrip(t, order, []uint16{0, 1, 2, 3, 4, math.MaxUint16}, shape...)
				roundTrip(t, order, []int16{math.MinInt16, -1, 0, 1, 2, math.MaxInt16}, shape...)
				roundTrip(t, order, []uint8{0, 1, 2, 3, 4, 255}, shape...)
				roundTrip(t, order, []int8{-128, -1, 0, 1, 2, 127}, shape...)
			}
		})
	}
}

func TestScalarRoundTrip(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.AppendScalar("pi", 3.25))
	require.NoError(t, f.AppendScalar("count", 7))
	require.NoError(t, f.AppendScalar("small", int16(-4)))

	v, err := f.Read("pi")
	require.NoError(t, err)
	s, ok := v.(Scalar)
	require.True(t, ok, "expected a bare scalar, got %T", v)
	assert.Equal(t, 3.25, s.Float64())
	assert.Equal(t, Double, s.Type())

	s, err = f.ReadScalar("count")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Int64())

	s, err = f.ReadScalar("small")
	require.NoError(t, err)
	assert.Equal(t, int16(-4), s.Interface())

	a, err := f.ReadArray("pi")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, a.Shape())
}

func TestScalarRejectsInexactInteger(t *testing.T) {
	f := createFile(t)
	err := f.AppendScalar("big", int64(1)<<60+1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	err = f.AppendScalar("u", uint64(1))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestGreekString(t *testing.T) {
	const greek = "Καλημέρα κόσμε"
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.AppendString("greek", greek))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.ReadString("greek")
	require.NoError(t, err)
	assert.Equal(t, greek, got)

	ri, err := r.Stat("greek")
	require.NoError(t, err)
	assert.Equal(t, len(greek)+1, ri.M)
	assert.True(t, ri.IsString())
}

func TestAppendStringRejectsInvalidUTF8(t *testing.T) {
	f := createFile(t)
	assert.Error(t, f.AppendString("bad", "\xff\xfe"))
}

func TestAppendText(t *testing.T) {
	f := createFile(t)
	raw := []byte{'c', 'a', 'f', 0xE9} // "café" in Latin-1
	require.NoError(t, f.AppendText("t", raw, charmap.ISO8859_1))
	got, err := f.ReadString("t")
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestTest0Scenario(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	values := []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.NoError(t, f.AppendArray("Test0", MustArray(values)))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	a, err := r.ReadArray("Test0")
	require.NoError(t, err)
	assert.Equal(t, Int16, a.Type())
	got, ok := Elements[int16](a)
	require.True(t, ok)
	assert.Equal(t, values, got)
	assert.Equal(t, values, a.Squeeze().Data())
}

func TestFiveByTwoScenario(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	data := make([]int32, 10)
	for i := range data {
		data[i] = int32(i)
	}
	require.NoError(t, f.AppendArray("grid", MustArray(data, 5, 2)))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	ri, err := r.Stat("grid")
	require.NoError(t, err)
	assert.Equal(t, 2, ri.M)
	assert.Equal(t, 5, ri.N)
	assert.Equal(t, 1, ri.O)

	a, err := r.ReadArray("grid")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 2}, a.Shape())
	assert.Equal(t, []int{5, 2}, a.Squeeze().Shape())
	assert.Equal(t, float64(7), a.At(a.Index(0, 3, 1)))
	assert.Equal(t, data, a.Data())
}

func TestZeroElementArray(t *testing.T) {
	f := createFile(t)
	empty, err := EmptyArray(Single)
	require.NoError(t, err)
	require.NoError(t, f.AppendArray("e", empty))

	a, err := f.ReadArray("e")
	require.NoError(t, err)
	assert.Equal(t, Single, a.Type())
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, []int{1, 1, 0}, a.Shape())
	assert.Equal(t, []float32{}, a.Data())
}

func TestAppendArrayRank(t *testing.T) {
	f := createFile(t)
	a := MustArray([]float64{1, 2, 3, 4}, 1, 1, 2, 2)
	assert.ErrorIs(t, f.AppendArray("r4", a), ErrRank)

	r0, err := MustArray([]float64{1}).Reshape()
	require.NoError(t, err)
	assert.ErrorIs(t, f.AppendArray("r0", r0), ErrRank)
}

func TestWriteAnonymousRejects(t *testing.T) {
	f := createFile(t)
	assert.ErrorIs(t, f.WriteAnonymous("i64", []int64{1, 2}), ErrUnsupportedType)
	assert.ErrorIs(t, f.WriteAnonymous("b", true), ErrUnsupportedType)
	ok, err := f.Contains("i64")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadMissing(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.AppendString("present", "x"))

	_, err := f.Read("absent")
	assert.ErrorIs(t, err, ErrNotFound)

	v, ok, err := f.Lookup("absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestUnhandledType(t *testing.T) {
	path := tempPath(t)
	order := binary.LittleEndian
	h := record.NewHeader("odd", dtype.Code(3), 1, 1, 1, 8)
	raw := append(record.Signature(order), record.AppendRecord(order, h, "odd", make([]byte, 8))...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Read("odd")
	assert.ErrorIs(t, err, ErrUnhandledType)
}

func TestShortRead(t *testing.T) {
	path := tempPath(t)
	order := binary.LittleEndian
	// header claims 4 doubles but only 2 are present
	h := record.NewHeader("cut", dtype.Double, 4, 1, 1, 32)
	raw := append(record.Signature(order), record.AppendRecord(order, h, "cut", make([]byte, 16))...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Read("cut")
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestHugeDimensions(t *testing.T) {
	order := binary.LittleEndian
	for name, h := range map[string]record.Header{
		"large":    record.NewHeader("x", dtype.Double, 1<<30, 1<<20, 1, 8),
		"overflow": record.NewHeader("x", dtype.Double, math.MaxInt32, math.MaxInt32, math.MaxInt32, 8),
	} {
		t.Run(name, func(t *testing.T) {
			path := tempPath(t)
			raw := append(record.Signature(order), record.AppendRecord(order, h, "x", make([]byte, 8))...)
			require.NoError(t, os.WriteFile(path, raw, 0o644))

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			info, err := r.Stat("x")
			require.NoError(t, err)
			assert.Equal(t, int(h.M), info.M)
			_, err = r.Read("x")
			assert.ErrorIs(t, err, ErrShortRead)
			_, err = r.ReadArray("x")
			assert.ErrorIs(t, err, ErrShortRead)
		})
	}
}

func TestNegativeDimensions(t *testing.T) {
	path := tempPath(t)
	order := binary.LittleEndian
	h := record.NewHeader("neg", dtype.Int16, -2, 1, 1, 4)
	raw := append(record.Signature(order), record.AppendRecord(order, h, "neg", make([]byte, 4))...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Read("neg")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBigEndianReadableEverywhere(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path, WithByteOrder(binary.BigEndian))
	require.NoError(t, err)
	require.NoError(t, f.AppendArray("d", MustArray([]float64{1.5, -2.25})))
	require.NoError(t, f.AppendScalar("s", uint16(0xBEEF)))
	require.NoError(t, f.AppendString("t", "text"))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, binary.BigEndian, r.ByteOrder())

	d, err := r.ReadFloat64s("d")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2.25}, d)
	s, err := r.ReadScalar("s")
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), s.Interface())

	// appending keeps the existing order, whatever the option says
	a, err := OpenAppend(path, WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.AppendScalar("more", int8(-3)))
	m, err := a.ReadScalar("more")
	require.NoError(t, err)
	assert.Equal(t, int8(-3), m.Interface())
}

func TestEach(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.AppendString("a", "x"))
	require.NoError(t, f.AppendScalar("b", 2.0))

	seen := map[string]Type{}
	require.NoError(t, f.Each(func(name string, v Value) error {
		seen[name] = v.Type()
		return nil
	}))
	assert.Equal(t, map[string]Type{"a": Text, "b": Double}, seen)

	n, err := f.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
