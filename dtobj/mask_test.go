package dtobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

func TestNewMaskIntervals(t *testing.T) {
	values := dtbin.MustArray([]uint8{
		0, 1, 1, 0,
		1, 1, 0, 1,
	}, 2, 4)
	mk, err := NewMask(values)
	require.NoError(t, err)

	m, n, o := mk.Dims()
	assert.Equal(t, [3]int{4, 2, 1}, [3]int{m, n, o})
	assert.Equal(t, [][2]int32{{1, 2}, {4, 5}, {7, 7}}, mk.Intervals())
	assert.Equal(t, 5, mk.Count())
	assert.Equal(t, []int{2, 4}, mk.Shape())
	assert.Equal(t, values.Data(), mk.Values().Data())
}

func TestMaskRunsStopAtRowEnd(t *testing.T) {
	mk, err := NewMask(dtbin.MustArray([]float64{
		1, 1,
		1, 1,
	}, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, [][2]int32{{0, 1}, {2, 3}}, mk.Intervals(), "runs do not cross rows")
}

func TestMaskRoundTrip(t *testing.T) {
	f := createFile(t)
	mk, err := NewMask(dtbin.MustArray([]int8{
		1, 0, 1,
		0, 0, 0,
	}, 2, 1, 3))
	require.NoError(t, err)
	require.NoError(t, f.Write("dom", mk))

	dims, err := f.ReadFloat64s("dom_dim")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, dims)

	info, err := f.Stat("dom")
	require.NoError(t, err)
	assert.Equal(t, dtbin.Int32, info.Type)
	assert.Equal(t, 2, info.M)
	assert.Equal(t, 2, info.N)

	got, err := ReadMask(reopen(t, f), "dom")
	require.NoError(t, err)
	assert.Equal(t, mk, got)
	assert.Equal(t, []int{2, 1, 3}, got.Shape())

	obj, err := Materialize(f, "dom")
	require.NoError(t, err)
	assert.Equal(t, mk, obj)
}

func TestEmptyMask(t *testing.T) {
	f := createFile(t)
	mk, err := NewMask(dtbin.MustArray(make([]uint8, 6), 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, mk.Count())
	require.NoError(t, mk.WriteDT(f, "none"))

	info, err := f.Stat("none")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Elements())

	got, err := ReadMask(f, "none")
	require.NoError(t, err)
	require.NotNil(t, got, "an all-outside mask is still a mask")
	assert.Equal(t, 0, got.Count())
	assert.Equal(t, []int{2, 3}, got.Shape())
}

func TestReadMaskAbsent(t *testing.T) {
	f := createFile(t)
	got, err := ReadMask(f, "nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadMaskRejectsBadIntervals(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.AppendArray("bad_dim", dtbin.MustArray([]int32{2, 2})))
	require.NoError(t, f.AppendArray("bad", dtbin.MustArray([]int32{0, 4}, 1, 2)))
	_, err := ReadMask(f, "bad")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewMaskRank(t *testing.T) {
	a := dtbin.MustArray([]uint8{1})
	r, err := a.Reshape()
	require.NoError(t, err)
	_, err = NewMask(r)
	assert.ErrorIs(t, err, ErrInvalid)
}
