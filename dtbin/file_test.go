package dtbin

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-dtbin/internal/record"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.dtbin")
}

func createFile(t *testing.T, opts ...Option) *File {
	t.Helper()
	f, err := Create(tempPath(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCreateWritesSignatureLazily(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size(), "signature must wait for the first record")

	require.NoError(t, f.AppendString("a", "b"))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, record.Signature(f.ByteOrder()), raw[:record.SignatureSize])
}

func TestStringRecordLayout(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path, WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	require.NoError(t, f.AppendString("Nm", "abc"))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	want := []byte("DataTank Binary File LE\x00")
	want = append(want,
		0x23, 0, 0, 0, 0, 0, 0, 0, // 28 + 3 + 4
		20, 0, 0, 0,
		4, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
		3, 0, 0, 0,
	)
	want = append(want, "Nm\x00abc\x00"...)
	assert.Equal(t, want, raw)
}

func TestArrayRecordLayout(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path, WithByteOrder(binary.BigEndian))
	require.NoError(t, err)
	a := MustArray([]int16{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, f.AppendArray("A", a))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, record.SignatureSize+record.HeaderSize+2+12)

	h, err := record.DecodeHeader(binary.BigEndian, raw[record.SignatureSize:])
	require.NoError(t, err)
	assert.Equal(t, int32(3), h.M)
	assert.Equal(t, int32(2), h.N)
	assert.Equal(t, int32(1), h.O)
	assert.Equal(t, Int16, h.Type)
	assert.Equal(t, []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}, raw[len(raw)-12:])
}

func TestDescriptor(t *testing.T) {
	f, err := Create(tempPath(t), WithByteOrder(binary.BigEndian))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, ">i2", f.Descriptor(Int16))
	assert.Equal(t, "string", f.Descriptor(Text))

	g, err := Create(tempPath(t), WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	defer g.Close()
	assert.Equal(t, "<f8", g.Descriptor(Double))
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("definitely not a DataTank container"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNotContainer)

	_, err = OpenAppend(path)
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.dtbin"))
	assert.Error(t, err)
}

func TestReadOnly(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.AppendString("x", "y"))
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.IsWritable())
	assert.ErrorIs(t, r.AppendString("z", "w"), ErrReadOnly)
}

func TestCloseIdempotent(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err := f.Names()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.AppendString("a", "b"), ErrClosed)
	_, err = f.Read("a")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAppendReopens(t *testing.T) {
	path := tempPath(t)
	f, err := OpenAppend(path)
	require.NoError(t, err)
	require.NoError(t, f.AppendString("first", "1"))
	require.NoError(t, f.Close())

	f, err = OpenAppend(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.AppendString("second", "2"))
	assert.ErrorIs(t, f.AppendString("first", "again"), ErrExists)

	names, err := f.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), f.Size())
}

func TestTruncateDiscards(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.AppendString("old", "x"))
	require.NoError(t, f.Close())

	f, err = Create(path)
	require.NoError(t, err)
	defer f.Close()
	ok, err := f.Contains("old")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), f.Size())
}

func TestRescanIsIdempotent(t *testing.T) {
	path := tempPath(t)
	w, err := Create(path)
	require.NoError(t, err)
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, w.AppendString(n, n))
	}
	assert.Equal(t, 0, w.Scans(), "own appends keep the index current")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Names()
	require.NoError(t, err)
	_, err = r.Names()
	require.NoError(t, err)
	_, err = r.Contains("a")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Scans())

	require.NoError(t, w.AppendString("d", "d"))
	require.NoError(t, w.Close())

	ok, err := r.Contains("d")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, r.Scans())

	_, err = r.Names()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Scans())
}

func TestDuplicateNameKeepsContainerValid(t *testing.T) {
	path := tempPath(t)
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.AppendArray("v", MustArray([]float64{1, 2})))
	before := f.Size()

	err = f.AppendArray("v", MustArray([]float64{3}))
	assert.ErrorIs(t, err, ErrExists)
	assert.Equal(t, before, f.Size())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.ReadFloat64s("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)
}

func TestWithSync(t *testing.T) {
	f := createFile(t, WithSync())
	require.NoError(t, f.AppendScalar("x", 1.5))
	require.NoError(t, f.Flush())
	assert.Equal(t, 2, f.AllocStats().Blocks) // signature and record
}

func TestAllocationsCoverFile(t *testing.T) {
	f := createFile(t)
	require.NoError(t, f.AppendString("s", "abc"))
	require.NoError(t, f.AppendScalar("x", 2.0))

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	stats := f.AllocStats()
	assert.Equal(t, 3, stats.Blocks)
	assert.Equal(t, info.Size(), stats.Bytes, "signature is allocated from offset 0")
	assert.Equal(t, info.Size(), f.Size())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "read", ModeRead.String())
	assert.Equal(t, "append", ModeAppend.String())
	assert.Equal(t, "truncate", ModeTruncate.String())
}
