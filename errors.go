package recstore

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteFailed is matched by every error that prevented an Append from
	// persisting its record.
	ErrWriteFailed = errors.New("store write failed")

	// ErrBadHeader is matched when a non-empty store does not start with a
	// recognized header.
	ErrBadHeader = errors.New("bad store header")

	// ErrCorruptTrailingRecord is matched when a scan finds a partial or
	// invalid record after zero or more valid ones.
	ErrCorruptTrailingRecord = errors.New("corrupt trailing record")
)

// WriteError reports a failed Append.
//
// The original underlying error can be accessed via errors.Unwrap.
type WriteError struct {
	Path  string
	Op    string
	cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrWriteFailed, e.Op, e.Path, e.cause)
}

// Is reports whether target is ErrWriteFailed.
func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }

func (e *WriteError) Unwrap() error { return e.cause }

// HeaderError reports an unrecognized store header.
type HeaderError struct {
	Path   string
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrBadHeader, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrBadHeader, e.Path, e.Reason)
}

// Is reports whether target is ErrBadHeader.
func (e *HeaderError) Is(target error) bool { return target == ErrBadHeader }

// CorruptTrailingRecordError reports a store whose tail cannot be decoded.
//
// All Records records before Offset are valid. The decode failure is
// available via errors.Unwrap and matches record.ErrIncomplete or
// record.ErrMalformed.
type CorruptTrailingRecordError struct {
	Path    string
	Offset  int64 // file offset where the corrupt record starts
	Records int   // number of valid records before Offset
	cause   error
}

func (e *CorruptTrailingRecordError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d after %d records: %v",
		ErrCorruptTrailingRecord, e.Path, e.Offset, e.Records, e.cause)
}

// Is reports whether target is ErrCorruptTrailingRecord.
func (e *CorruptTrailingRecordError) Is(target error) bool {
	return target == ErrCorruptTrailingRecord
}

func (e *CorruptTrailingRecordError) Unwrap() error { return e.cause }

func withPath(err error, path string) error {
	var he *HeaderError
	if errors.As(err, &he) && he.Path == "" {
		he.Path = path
	}
	return err
}

func isCorrupt(err error) bool { return errors.Is(err, ErrCorruptTrailingRecord) }
