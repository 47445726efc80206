// Package dtbin reads and writes DataTank binary containers.
//
// A container is a single append-only file holding named, typed records:
// UTF-8 strings and numeric arrays of up to three dimensions. Records are
// never edited or removed, and a name may be written only once. Higher-level
// objects (meshes, bitmaps, masks, series) are stored as several records that
// share a name prefix; see package dtobj.
package dtbin

import (
	"errors"

	ibin "github.com/robert-malhotra/go-dtbin/internal/binary"
	"github.com/robert-malhotra/go-dtbin/internal/dtype"
	"github.com/robert-malhotra/go-dtbin/internal/index"
	"github.com/robert-malhotra/go-dtbin/internal/record"
)

// Format errors.
var (
	ErrNotContainer    = errors.New("not a DataTank container")
	ErrTruncatedHeader = record.ErrTruncatedHeader
	ErrUnhandledType   = errors.New("unhandled element type")
	ErrShortRead       = ibin.ErrShortRead
	ErrCorrupt         = index.ErrCorrupt
)

// Usage errors.
var (
	ErrExists            = errors.New("variable already exists")
	ErrRank              = errors.New("arrays must have 1 to 3 dimensions")
	ErrShape             = errors.New("shape does not match element count")
	ErrReadOnly          = errors.New("container is read-only")
	ErrClosed            = errors.New("container is closed")
	ErrNegativeTime      = errors.New("time must not be negative")
	ErrNotIncreasing     = errors.New("time must be strictly increasing")
	ErrTooClose          = errors.New("time values too close together")
	ErrInconsistentNames = errors.New("inconsistent variable names")
	ErrCircularAlias     = errors.New("circular alias")
	ErrAliasDepth        = errors.New("maximum alias depth exceeded")
	ErrWrongKind         = errors.New("record has a different kind")
)

// ErrNotFound is returned by Read for an absent name. Lookup reports the
// same condition with ok == false instead.
var ErrNotFound = errors.New("variable not found")

// ErrUnsupportedType is returned when a value has no on-disk representation.
var ErrUnsupportedType = dtype.ErrNoMatch

// MaxAliasDepth is the longest alias chain Resolve will follow.
const MaxAliasDepth = 100
