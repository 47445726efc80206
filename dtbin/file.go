package dtbin

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-dtbin/internal/alloc"
	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
	"github.com/robert-malhotra/go-dtbin/internal/dtype"
	"github.com/robert-malhotra/go-dtbin/internal/index"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// Mode is the access mode of an open container.
type Mode int

const (
	// ModeRead opens an existing container read-only.
	ModeRead Mode = iota
	// ModeAppend opens a container for reading and appending, creating it
	// if needed.
	ModeAppend
	// ModeTruncate creates a container, discarding any previous content.
	ModeTruncate
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeAppend:
		return "append"
	case ModeTruncate:
		return "truncate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// File is an open DataTank container.
//
// A File is not safe for concurrent use, and at most one File may append to
// a given path at a time. Read-only handles on the same path see new records
// on their next query.
type File struct {
	path   string
	file   *os.File
	mode   Mode
	closed bool

	order  binary.ByteOrder
	reader *ibin.Reader
	writer *ibin.Writer

	allocator *alloc.Allocator
	index     *index.Index

	log  logrus.FieldLogger
	sync bool
}

// Open opens an existing container read-only.
func Open(path string, opts ...Option) (*File, error) {
	return OpenFile(path, ModeRead, opts...)
}

// Create creates a container, truncating any existing file. The signature
// is written with the first record.
func Create(path string, opts ...Option) (*File, error) {
	return OpenFile(path, ModeTruncate, opts...)
}

// OpenAppend opens a container for appending, creating it if it does not
// exist.
func OpenAppend(path string, opts ...Option) (*File, error) {
	return OpenFile(path, ModeAppend, opts...)
}

// OpenFile opens a container in the given mode.
func OpenFile(path string, mode Mode, opts ...Option) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeAppend:
		flag = os.O_RDWR | os.O_CREATE
	case ModeTruncate:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	default:
		return nil, errors.Errorf("invalid mode %v", mode)
	}

	osFile, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening container")
	}
	info, err := osFile.Stat()
	if err != nil {
		osFile.Close()
		return nil, errors.Wrap(err, "opening container")
	}
	size := info.Size()

	order := options.order
	if size > 0 {
		order, err = record.ReadSignature(osFile)
		if err != nil {
			osFile.Close()
			return nil, errors.Wrapf(ErrNotContainer, "%s: %v", path, err)
		}
	} else if order == nil {
		order = ibin.NativeOrder()
	}

	cfg := ibin.Config{ByteOrder: order}
	f := &File{
		path:      path,
		file:      osFile,
		mode:      mode,
		order:     order,
		reader:    ibin.NewReader(osFile, cfg),
		allocator: alloc.New(size),
		index:     index.New(),
		log:       options.logger.WithField("path", path),
		sync:      options.sync,
	}
	if mode != ModeRead {
		f.writer = ibin.NewWriter(ibin.NewSeekableWriterAt(osFile))
	}
	return f, nil
}

// Close closes the container. Closing twice is not an error.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.index.Reset()
	return f.file.Close()
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Mode returns the access mode.
func (f *File) Mode() Mode {
	return f.mode
}

// ByteOrder returns the byte order of every header and payload.
func (f *File) ByteOrder() binary.ByteOrder {
	return f.order
}

// Descriptor returns the byte-order-qualified type string for t in this
// file, e.g. "<f8". Strings have no byte order and report "string".
func (f *File) Descriptor(t Type) string {
	d, err := dtype.Qualified(t, f.order)
	if err != nil {
		return t.String()
	}
	return d
}

// Size returns the tracked container length in bytes.
func (f *File) Size() int64 {
	return f.allocator.EOF()
}

// Scans returns how many times the record index has been rebuilt from disk.
func (f *File) Scans() int {
	return f.index.Scans()
}

// IsWritable reports whether the container accepts appends.
func (f *File) IsWritable() bool {
	return f.mode != ModeRead
}

// Flush commits appended records to stable storage.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.IsWritable() {
		return nil
	}
	return errors.Wrap(f.file.Sync(), "flushing container")
}

// AllocStats reports the records appended through this handle.
func (f *File) AllocStats() alloc.Stats {
	return f.allocator.Stats()
}

// refresh rebuilds the index when the file on disk no longer matches it.
func (f *File) refresh() error {
	if f.closed {
		return ErrClosed
	}
	info, err := f.file.Stat()
	if err != nil {
		return errors.Wrap(err, "checking container size")
	}
	size := info.Size()
	if !f.index.Stale(size) {
		return nil
	}
	if f.index.Len() == 0 && size > 0 && size <= int64(record.SignatureSize) {
		// signature only
		f.allocator.SetEOF(size)
		return nil
	}

	f.log.WithFields(logrus.Fields{
		"reason": f.index.StaleReason(size),
		"size":   size,
	}).Debug("rescanning container")

	if size > 0 && f.index.Len() == 0 && f.allocator.EOF() == 0 {
		order, err := record.ReadSignature(f.file)
		if err != nil {
			return errors.Wrapf(ErrNotContainer, "%s: %v", f.path, err)
		}
		f.setOrder(order)
	}
	if err := f.index.Refresh(f.file, f.order, size); err != nil {
		return errors.Wrapf(err, "indexing %s", f.path)
	}
	f.allocator.SetEOF(size)
	return nil
}

// setOrder adopts the byte order of a signature written by another handle
// after this one opened an empty file.
func (f *File) setOrder(order binary.ByteOrder) {
	if ibin.SameOrder(order, f.order) {
		return
	}
	f.order = order
	f.reader = ibin.NewReader(f.file, ibin.Config{ByteOrder: order})
}

func (f *File) String() string {
	return fmt.Sprintf("dtbin.File{path: %s, size: %d, records: %d}", f.path, f.Size(), f.index.Len())
}
