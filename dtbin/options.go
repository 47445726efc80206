package dtbin

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures how a container is opened.
type Option func(*fileOptions)

type fileOptions struct {
	order  binary.ByteOrder
	logger logrus.FieldLogger
	sync   bool
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		logger: discardLogger(),
	}
}

// WithByteOrder sets the byte order of a new container. It has no effect on
// a container that already holds a signature. The default is host order.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *fileOptions) {
		o.order = order
	}
}

// WithLogger sets the logger used for diagnostics. Rescans are logged at
// debug level and appends at trace level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *fileOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSync makes every append fsync before returning.
func WithSync() Option {
	return func(o *fileOptions) {
		o.sync = true
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// WriteOption configures an exposed write.
type WriteOption func(*writeOptions)

type writeOptions struct {
	tag     string
	time    float64
	hasTime bool
}

// WithType sets the type tag written to the exposure record, such as
// "Array" or "2D Point Collection". Without it the tag is derived from the
// value.
func WithType(tag string) WriteOption {
	return func(o *writeOptions) {
		o.tag = tag
	}
}

// WithTime marks the write as one step of a time series. The name must end
// in "_<index>"; the time is stored alongside as "<name>_time".
func WithTime(t float64) WriteOption {
	return func(o *writeOptions) {
		o.time = t
		o.hasTime = true
	}
}
