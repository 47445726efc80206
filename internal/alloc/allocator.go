// Package alloc tracks the append point of a DataTank container.
//
// Containers only grow. Every record is placed at the current end of file,
// which then advances by the record's block length. The allocator keeps that
// end-of-file offset in memory so writers never have to stat the file.
//
//	a := alloc.New(0)
//	a.Alloc(24, "signature")    // 0
//	off := a.Alloc(60, "Var")   // 24
//	a.EOF()                     // 84
package alloc

import (
	"sync"
)

// Allocator hands out append-only block offsets.
type Allocator struct {
	mu sync.Mutex

	eof   int64
	last  *Allocation
	stats Stats
}

// Allocation is one block handed out by Alloc.
type Allocation struct {
	Offset int64
	Size   int64
	Tag    string
}

// Stats summarizes the blocks handed out since New.
type Stats struct {
	Blocks       int
	Bytes        int64
	LargestBlock int64
}

// New creates an allocator whose end of file is eof.
func New(eof int64) *Allocator {
	return &Allocator{eof: eof}
}

// Alloc reserves size bytes at the end of file and returns their offset.
// A zero-size request returns the current end without recording anything.
func (a *Allocator) Alloc(size int64, tag string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size <= 0 {
		return a.eof
	}

	off := a.eof
	a.eof += size

	a.last = &Allocation{Offset: off, Size: size, Tag: tag}
	a.stats.Blocks++
	a.stats.Bytes += size
	if size > a.stats.LargestBlock {
		a.stats.LargestBlock = size
	}
	return off
}

// Rollback releases the most recent block if it starts at off, used when
// the write that followed Alloc failed. Only one block can be rolled back.
func (a *Allocator) Rollback(off int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last == nil || a.last.Offset != off {
		return
	}
	a.eof = a.last.Offset
	a.stats.Blocks--
	a.stats.Bytes -= a.last.Size
	a.last = nil
}

// EOF returns the current end-of-file offset.
func (a *Allocator) EOF() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// SetEOF moves the end of file, used when another handle has appended.
func (a *Allocator) SetEOF(off int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eof = off
	a.last = nil
}

// Stats returns a copy of the statistics.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
