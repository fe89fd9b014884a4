package save

import (
	"errors"
	"fmt"
)

// Kinds of failure. Use errors.Is to test an error returned by Repository.
var (
	ErrInvalidName         = errors.New("save: invalid save name")
	ErrNotFound            = errors.New("save: save not found")
	ErrIO                  = errors.New("save: io failure")
	ErrCorruptArchive      = errors.New("save: corrupt archive")
	ErrIncompatibleVersion = errors.New("save: incompatible engine version")
	ErrInvalidPayload      = errors.New("save: saved properties is not valid JSON")
)

// Error is returned by Repository operations.
type Error struct {
	Kind error  // one of Err* in this package
	Op   string // operation name. e.g. load
	Name string // save name
	Err  error  // underlying error, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Name != "" {
		msg += " " + fmt.Sprintf("%q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError creates *Error. kind should be one of Err* in this package.
func NewError(kind error, op, name string, err error) *Error {
	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}

// VersionError carries versions rejected by the compatibility gate.
type VersionError struct {
	Saved   string
	Running string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("saved by %q, running %q", e.Saved, e.Running)
}

func (e *VersionError) Is(target error) bool { return target == ErrIncompatibleVersion }
