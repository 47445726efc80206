package dtbin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.WriteAlias("A", "B"))
	require.NoError(t, f.AppendArray("B", MustArray([]float64{1, 2, 3})))

	target, err := f.Resolve("A")
	require.NoError(t, err)
	assert.Equal(t, "B", target)

	v, err := f.ReadResolved("A")
	require.NoError(t, err)
	a, ok := v.(*Array)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, a.Data())

	target, err = f.Resolve("B")
	require.NoError(t, err)
	assert.Equal(t, "B", target, "non-string records resolve to themselves")

	target, err = f.Resolve("missing")
	require.NoError(t, err)
	assert.Equal(t, "missing", target)
}

func TestResolveChain(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.WriteAlias("a1", "a2"))
	require.NoError(t, f.WriteAlias("a2", "a3"))
	require.NoError(t, f.AppendScalar("a3", 1.0))

	target, err := f.Resolve("a1")
	require.NoError(t, err)
	assert.Equal(t, "a3", target)
}

func TestResolveDanglingAlias(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.WriteAlias("A", "nowhere"))

	target, err := f.Resolve("A")
	require.NoError(t, err)
	assert.Equal(t, "nowhere", target)
}

func TestResolveCycles(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.WriteAlias("self", "self"))
	require.NoError(t, f.WriteAlias("x", "y"))
	require.NoError(t, f.WriteAlias("y", "x"))

	_, err := f.Resolve("self")
	assert.ErrorIs(t, err, ErrCircularAlias)
	_, err = f.Resolve("x")
	assert.ErrorIs(t, err, ErrCircularAlias)
}
