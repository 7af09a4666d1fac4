package record

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is returned when the input ends before a record is complete.
	ErrIncomplete = errors.New("incomplete record")

	// ErrMalformed is returned when a record's structure is invalid.
	ErrMalformed = errors.New("malformed record")

	// ErrFieldTooLong is returned by the encoder when a text field exceeds the
	// configured maximum length. A DecodeError for a length prefix above
	// MaxTextLen also matches it.
	ErrFieldTooLong = errors.New("record field too long")
)

// DecodeError describes a failed decode.
//
// Kind is either ErrIncomplete or ErrMalformed; errors.Is matches against it.
type DecodeError struct {
	Kind   error
	Offset int   // bytes of the record consumed before the failure
	Field  Field // zero when the failure precedes any field
	Reason string
	cause  error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Field != 0 {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	msg += fmt.Sprintf(" at offset %d", e.Offset)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is the error's Kind.
func (e *DecodeError) Is(target error) bool { return target == e.Kind }

// Unwrap returns the underlying cause: an I/O error, ErrFieldTooLong, or nil.
func (e *DecodeError) Unwrap() error { return e.cause }

func incomplete(off int, f Field, cause error) *DecodeError {
	return &DecodeError{Kind: ErrIncomplete, Offset: off, Field: f, cause: cause}
}

func malformed(off int, f Field, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: ErrMalformed, Offset: off, Field: f, Reason: fmt.Sprintf(format, args...)}
}

func tooLong(off int, f Field, n uint32) *DecodeError {
	return &DecodeError{
		Kind:   ErrMalformed,
		Offset: off,
		Field:  f,
		Reason: fmt.Sprintf("length prefix %d exceeds limit %d", n, MaxTextLen),
		cause:  ErrFieldTooLong,
	}
}
