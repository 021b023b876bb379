package domain

import (
	"errors"
	"fmt"
)

// ErrPageNotFound is returned when a page id does not resolve within a tree.
var ErrPageNotFound = errors.New("page not found")

// ErrDuplicateButton is returned when a button id is reused within a page.
var ErrDuplicateButton = errors.New("duplicate button id")

// Sentinels for the conversion error taxonomy. A *ConversionError matches the
// sentinel of its kind through errors.Is.
var (
	ErrStructural = errors.New("structural error")
	ErrSchema     = errors.New("schema error")
	ErrCorrupt    = errors.New("corrupt source")
	ErrIO         = errors.New("i/o error")
	ErrUnresolved = errors.New("unresolved reference")
)

// ErrorKind classifies conversion failures.
type ErrorKind int

const (
	// KindStructural: a required archive entry or table is missing.
	KindStructural ErrorKind = iota + 1
	// KindSchema: data parses but required fields are absent. Recovered locally.
	KindSchema
	// KindCorruption: the database engine rejects the file. Fatal.
	KindCorruption
	// KindIO: permission denied, file not found. Fatal, carries the offending path.
	KindIO
	// KindUnresolved: a navigation target or image does not resolve. Non-fatal.
	KindUnresolved
)

func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindSchema:
		return "schema"
	case KindCorruption:
		return "corruption"
	case KindIO:
		return "io"
	case KindUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindStructural:
		return ErrStructural
	case KindSchema:
		return ErrSchema
	case KindCorruption:
		return ErrCorrupt
	case KindIO:
		return ErrIO
	case KindUnresolved:
		return ErrUnresolved
	default:
		return nil
	}
}

// ConversionError is a classified import/export failure.
type ConversionError struct {
	Kind ErrorKind
	Op   string // e.g. "gridset.load"
	Path string // offending file or archive entry, if any
	Err  error
}

func (e *ConversionError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind.
func (e *ConversionError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewError builds a classified error.
func NewError(kind ErrorKind, op, path string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of a classified error, or 0 if err is not classified.
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// CellConflictError reports a grid cell claimed by two different buttons.
type CellConflictError struct {
	X, Y     int
	Owner    string
	Claimant string
}

func (e *CellConflictError) Error() string {
	return fmt.Sprintf("cell (%d,%d) already held by %q, cannot place %q", e.X, e.Y, e.Owner, e.Claimant)
}
