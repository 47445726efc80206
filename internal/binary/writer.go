package binary

import (
	"io"
)

// Writer writes byte runs to an io.WriterAt. Records are encoded in full
// before they are written, so it carries no byte order.
type Writer struct {
	w   io.WriterAt
	pos int64
}

// NewWriter returns a writer at offset 0.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{w: w}
}

// At returns a writer at offset that shares w's destination.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, pos: offset}
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	return err
}

// SeekableWriterAt adapts an io.WriteSeeker, such as a file opened for
// appending, to io.WriterAt.
type SeekableWriterAt struct {
	ws io.WriteSeeker
}

func NewSeekableWriterAt(ws io.WriteSeeker) *SeekableWriterAt {
	return &SeekableWriterAt{ws: ws}
}

// WriteAt seeks to off and writes p.
func (s *SeekableWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if _, err := s.ws.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return s.ws.Write(p)
}
