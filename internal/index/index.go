// Package index caches the name to offset map of a DataTank container.
//
// The cache remembers the file length it was built against. It is stale when
// it is empty while the file is not, or when the file length no longer
// matches; a stale cache is rebuilt by walking every record header from the
// signature to the end of the file.
package index

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// ErrCorrupt is returned when a record header describes a block that cannot
// be walked.
var ErrCorrupt = errors.New("corrupt container")

// Index maps record names to the offset of their block.
// Later records with a duplicate name shadow earlier ones.
type Index struct {
	offsets map[string]int64
	names   []string
	length  int64
	scans   int
}

// New returns an empty index.
func New() *Index {
	return &Index{offsets: make(map[string]int64)}
}

// Stale reports whether the cache must be rebuilt for a file of the given
// size.
func (x *Index) Stale(size int64) bool {
	return (len(x.offsets) == 0 && size > 0) || x.length != size
}

// StaleReason describes why the cache is stale, or returns "" if it is not.
func (x *Index) StaleReason(size int64) string {
	switch {
	case len(x.offsets) == 0 && size > 0:
		return "empty index"
	case x.length != size:
		return fmt.Sprintf("length changed from %d to %d", x.length, size)
	default:
		return ""
	}
}

// Refresh rebuilds the cache by walking the records of r, whose total length
// is size. The walk starts just after the signature and stops when the next
// block would start at or beyond size.
func (x *Index) Refresh(r io.ReaderAt, order binary.ByteOrder, size int64) error {
	offsets := make(map[string]int64)
	var names []string

	rd := ibin.NewReader(r, ibin.Config{ByteOrder: order})
	pos := int64(record.SignatureSize)
	for pos < size {
		h, name, err := record.ReadHeader(rd.At(pos))
		if err != nil {
			return errors.Wrapf(ErrCorrupt, "record at offset %d: %v", pos, err)
		}
		if _, dup := offsets[name]; !dup {
			names = append(names, name)
		}
		offsets[name] = pos
		pos += h.BlockLength
	}

	x.offsets = offsets
	x.names = names
	x.length = size
	x.scans++
	return nil
}

// Add records a block appended at offset and the resulting file length.
func (x *Index) Add(name string, offset, length int64) {
	if _, dup := x.offsets[name]; !dup {
		x.names = append(x.names, name)
	}
	x.offsets[name] = offset
	x.length = length
}

// Lookup returns the block offset for name.
func (x *Index) Lookup(name string) (int64, bool) {
	off, ok := x.offsets[name]
	return off, ok
}

// Contains reports whether name is indexed.
func (x *Index) Contains(name string) bool {
	_, ok := x.offsets[name]
	return ok
}

// Names returns record names in file order of first appearance.
func (x *Index) Names() []string {
	out := make([]string, len(x.names))
	copy(out, x.names)
	return out
}

// Len returns the number of distinct names.
func (x *Index) Len() int {
	return len(x.offsets)
}

// Length returns the file length the cache was built against.
func (x *Index) Length() int64 {
	return x.length
}

// Scans returns how many full rescans have run.
func (x *Index) Scans() int {
	return x.scans
}

// Reset empties the cache without touching the scan counter.
func (x *Index) Reset() {
	x.offsets = make(map[string]int64)
	x.names = nil
	x.length = 0
}
