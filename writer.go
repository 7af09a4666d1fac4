package recstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Arstat/recstore/internal/fs"
	"github.com/Arstat/recstore/record"
)

// appendMode selects what a single Append writes.
type appendMode int

const (
	// modeCreate writes the header followed by the first record.
	modeCreate appendMode = iota
	// modeAppend writes only the record, after the existing bytes.
	modeAppend
)

func (m appendMode) String() string {
	if m == modeCreate {
		return "create"
	}
	return "append"
}

// Append adds rec to the end of the store at path, creating the store when
// the file is missing or empty.
//
// Exactly one open, write and close cycle is performed. A failed write is
// not retried. When a write or sync fails while creating the store, the file
// is truncated back to empty through the still locked handle so that no
// partial header is left behind. When it fails while appending to an
// existing store, the partial record is left in place and reported by later
// scans as ErrCorruptTrailingRecord.
//
// On Unix the write holds an exclusive advisory lock on the store file, so
// appends from several processes do not interleave.
func Append(ctx context.Context, path string, rec record.Record, opts ...Option) error {
	return appendWith(ctx, path, rec, newOptions(opts))
}

func appendWith(ctx context.Context, path string, rec record.Record, o *options) error {
	start := time.Now()
	n, mode, err := appendRecord(ctx, path, rec, o)
	o.metrics.RecordAppend(n, time.Since(start), err)
	o.logger.LogAppend(ctx, path, mode == modeCreate, n, err)
	return err
}

func appendRecord(ctx context.Context, path string, rec record.Record, o *options) (int, appendMode, error) {
	// Encode before touching the file: encode failures leave it untouched.
	payload, err := o.codec.Encode(rec)
	if err != nil {
		return 0, modeAppend, fmt.Errorf("failed to encode record %d: %w", rec.ID, err)
	}

	f, err := o.fs.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, o.fileMode)
	if err != nil {
		return 0, modeAppend, &WriteError{Path: path, Op: "open", cause: err}
	}
	// The size is read under the lock so concurrent writers agree on
	// which of them writes the header.
	if err := fs.Lock(f); err != nil {
		_ = f.Close()
		return 0, modeAppend, &WriteError{Path: path, Op: "lock", cause: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, modeAppend, &WriteError{Path: path, Op: "stat", cause: err}
	}

	mode := modeCreate
	if info.Size() > 0 {
		mode = modeAppend
	}

	var buf []byte
	switch mode {
	case modeCreate:
		buf = appendHeader(make([]byte, 0, HeaderSize+len(payload)))
		buf = append(buf, payload...)
	case modeAppend:
		// With O_APPEND reads still start at offset 0.
		if err := readHeader(f); err != nil {
			_ = f.Close()
			return 0, mode, withPath(err, path)
		}
		buf = payload
	}

	n, werr := write(f, buf, o.sync)
	if werr != nil && mode == modeCreate && n > 0 {
		// The lock is still held, so no other writer has appended after
		// the partial header.
		rbErr := f.Truncate(0)
		o.logger.LogRollback(ctx, path, rbErr)
	}
	if err := f.Close(); err != nil && werr == nil {
		werr = &opError{op: "close", err: err}
	}
	if werr != nil {
		return n, mode, &WriteError{Path: path, Op: werr.op, cause: werr.err}
	}
	return n, mode, nil
}

type opError struct {
	op  string
	err error
}

// write writes buf and optionally syncs f. It does not close f.
func write(f fs.File, buf []byte, sync bool) (int, *opError) {
	n, err := f.Write(buf)
	if err == nil && n < len(buf) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(buf))
	}
	if err != nil {
		return n, &opError{op: "write", err: err}
	}
	if sync {
		if err := f.Sync(); err != nil {
			return n, &opError{op: "sync", err: err}
		}
	}
	return n, nil
}
