// Package errs defines the errors returned by the bd1 packages.
//
// Errors fall into two classes. A *FormatError means the file does not have the
// expected layout and is always fatal. An *IOError means the underlying file
// could not be read; it is fatal while a file is being opened and is turned into
// a truncated series while values are being extracted.
//
// Both types unwrap to one of the sentinel errors below, so callers can test
// for a specific condition with errors.Is and for the class with errors.As or
// errors.Is(err, ErrFormat) / errors.Is(err, ErrIO).
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Class markers.
var (
	ErrFormat = errors.New("corrupt or unsupported file")
	ErrIO     = errors.New("i/o failure")
)

// Format errors.
var (
	ErrUnsupportedExtension     = errors.New("unsupported file extension")
	ErrInvalidCount             = errors.New("invalid header count")
	ErrUnknownStorageKind       = errors.New("unknown variable storage kind")
	ErrInvalidVariableLength    = errors.New("invalid variable byte length")
	ErrStructureIndexOrder      = errors.New("structure ID or name read before structure index")
	ErrStructureIndexOutOfRange = errors.New("structure index out of range")
	ErrDuplicateStructureIndex  = errors.New("duplicate structure index")
	ErrUnresolvedStructureIndex = errors.New("structure index not resolved")
	ErrMissingPeriodVariable    = errors.New("missing Year or Month Index variable")
	ErrInvalidStartMonth        = errors.New("first month index is not 1")
	ErrInvalidTimeStepCount     = errors.New("number of time steps is not a multiple of 12")
	ErrInvalidSnapshot          = errors.New("invalid series snapshot")
)

// Usage errors.
var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrInvalidPattern = errors.New("invalid time series pattern")
	ErrInvalidRange   = errors.New("invalid requested period")
)

// FormatError reports a layout problem, with as much location context as is known.
type FormatError struct {
	Path      string
	Structure string
	Variable  string
	Offset    int64 // -1 when not applicable
	Err       error
}

// NewFormatError builds a FormatError with no byte offset.
func NewFormatError(path string, err error) *FormatError {
	return &FormatError{Path: path, Offset: -1, Err: err}
}

func (e *FormatError) Error() string {
	return "format error: " + describe(e.Path, e.Structure, e.Variable, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// IOError reports a read failure on the underlying file.
type IOError struct {
	Path   string
	Op     string
	Offset int64
	Err    error
}

// NewIOError builds an IOError.
func NewIOError(path, op string, offset int64, err error) *IOError {
	return &IOError{Path: path, Op: op, Offset: offset, Err: err}
}

func (e *IOError) Error() string {
	op := e.Op
	if op == "" {
		op = "read"
	}

	return fmt.Sprintf("i/o error: %s: %s", op, describe(e.Path, "", "", e.Offset, e.Err))
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes every IOError match ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// WithPath sets the file path on a *FormatError or *IOError that does not have one yet.
// Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}

	var ie *IOError
	if errors.As(err, &ie) && ie.Path == "" {
		ie.Path = path
	}

	return err
}

func describe(path, structure, variable string, offset int64, err error) string {
	var sb strings.Builder
	if path != "" {
		sb.WriteString(path)
		sb.WriteString(": ")
	}
	if structure != "" {
		fmt.Fprintf(&sb, "structure %q: ", structure)
	}
	if variable != "" {
		fmt.Fprintf(&sb, "variable %q: ", variable)
	}
	if offset >= 0 {
		fmt.Fprintf(&sb, "offset %d: ", offset)
	}
	if err != nil {
		sb.WriteString(err.Error())
	}

	return strings.TrimSuffix(sb.String(), ": ")
}
