package spc

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks a malformed or truncated spectral file.
	ErrFormat = errors.New("spc format error")
	// ErrUnknownEncoding marks an encoding tag or kind name the decoder does
	// not know. It wraps ErrFormat.
	ErrUnknownEncoding = fmt.Errorf("%w: unknown encoding", ErrFormat)
	// ErrNaN marks a NaN amplitude.
	ErrNaN = errors.New("NaN amplitude")
	// ErrMismatch marks inputs whose shapes or geometries disagree.
	ErrMismatch = errors.New("mismatched inputs")
	// ErrArgument marks an out-of-range argument.
	ErrArgument = errors.New("invalid argument")
	// ErrConverted marks a frequency-domain operation on an element that was
	// already taken to the time domain.
	ErrConverted = errors.New("element already converted to time domain")
	// ErrUnsupported marks an operation the file kind cannot perform.
	ErrUnsupported = errors.New("unsupported for this kind")
)

// MismatchError reports the field on which two inputs disagree.
type MismatchError struct {
	Field     string
	First     string // identity of the first input
	Second    string // identity of the second input
	FirstVal  any
	SecondVal any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s differs: %v (%s) vs %v (%s)", e.Field, e.FirstVal, e.First, e.SecondVal, e.Second)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// Mismatch builds a *MismatchError.
func Mismatch(field, first, second string, firstVal, secondVal any) error {
	return &MismatchError{Field: field, First: first, Second: second, FirstVal: firstVal, SecondVal: secondVal}
}
