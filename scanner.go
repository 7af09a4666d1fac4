package recstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/Arstat/recstore/internal/fs"
	"github.com/Arstat/recstore/record"
)

// scanState is the position of a Scanner in its lifecycle.
type scanState int

const (
	scanReading scanState = iota
	scanEnd               // clean end of store
	scanFailed            // stopped on an error
)

// Scanner reads the records of a store in write order.
//
// A Scanner is forward-only and cannot be restarted; open a new one to read
// the store again. The underlying file is released as soon as the scan ends
// and by Close, whichever comes first.
type Scanner struct {
	ctx   context.Context
	path  string
	o     *options
	c     io.Closer
	rd    *record.Reader
	state scanState
	rec   record.Record
	err   error
	count int
	start time.Time
}

// OpenScanner opens the store at path for a full sequential scan.
//
// A missing or empty file yields a Scanner with no records. A file that
// does not start with a valid header fails with ErrBadHeader.
func OpenScanner(ctx context.Context, path string, opts ...Option) (*Scanner, error) {
	return openScanner(ctx, path, newOptions(opts))
}

func openScanner(ctx context.Context, path string, o *options) (*Scanner, error) {
	s := &Scanner{ctx: ctx, path: path, o: o, start: time.Now()}

	size, err := fs.Size(o.fs, path)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to stat store %s: %w", path, err))
	}
	if size == 0 {
		s.finish(nil)
		return s, nil
	}

	f, err := o.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.finish(nil)
			return s, nil
		}
		return nil, s.fail(fmt.Errorf("failed to open store %s: %w", path, err))
	}
	if err := readHeader(f); err != nil {
		_ = f.Close()
		return nil, s.fail(withPath(err, path))
	}

	s.c = f
	s.rd = o.codec.NewReader(f)
	return s, nil
}

// NewScanner scans a store image read from r, such as a decompressed
// snapshot. name identifies the image in errors and logs. An r without any
// bytes is an empty store.
//
// If r implements io.Closer it is closed when the scan ends.
func NewScanner(ctx context.Context, name string, r io.Reader, opts ...Option) (*Scanner, error) {
	return newReaderScanner(ctx, name, r, newOptions(opts))
}

func newReaderScanner(ctx context.Context, name string, r io.Reader, o *options) (*Scanner, error) {
	s := &Scanner{ctx: ctx, path: name, o: o, start: time.Now()}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}

	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			s.finish(nil)
			return s, nil
		}
		return nil, s.fail(fmt.Errorf("failed to read store %s: %w", name, err))
	}
	if err := readHeader(br); err != nil {
		return nil, s.fail(withPath(err, name))
	}

	s.rd = o.codec.NewReader(br)
	return s, nil
}

// Next advances to the next record. It returns false at the end of the
// store or on error; Err distinguishes the two.
func (s *Scanner) Next() bool {
	if s.state != scanReading {
		return false
	}

	rec, _, err := s.rd.Next()
	if err == nil {
		s.rec = rec
		s.count++
		return true
	}

	var de *record.DecodeError
	switch {
	case errors.As(err, &de) && errors.Is(err, record.ErrIncomplete) && de.Offset == 0:
		s.finish(nil)
	case de != nil:
		offset := s.Offset()
		s.o.logger.LogCorruption(s.ctx, s.path, offset, s.count)
		s.fail(&CorruptTrailingRecordError{Path: s.path, Offset: offset, Records: s.count, cause: err})
	default:
		s.fail(fmt.Errorf("failed to read store %s: %w", s.path, err))
	}
	return false
}

// Record returns the record read by the last successful Next.
func (s *Scanner) Record() record.Record { return s.rec }

// Err returns the error that stopped the scan, or nil after a clean end.
func (s *Scanner) Err() error { return s.err }

// Count returns the number of records read so far.
func (s *Scanner) Count() int { return s.count }

// Offset returns the file offset just past the last record read, which is
// the end of the valid prefix once the scan has stopped.
func (s *Scanner) Offset() int64 {
	if s.rd == nil {
		return 0
	}
	return HeaderSize + s.rd.Offset()
}

// Close releases the file. It is safe to call more than once.
func (s *Scanner) Close() error {
	if s.state == scanReading {
		s.finish(nil)
	}
	return nil
}

func (s *Scanner) fail(err error) error {
	s.err = err
	s.state = scanFailed
	s.release()
	s.report()
	return err
}

func (s *Scanner) finish(err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.state = scanEnd
	s.release()
	s.report()
}

func (s *Scanner) release() {
	if s.c != nil {
		_ = s.c.Close()
		s.c = nil
	}
}

func (s *Scanner) report() {
	s.o.metrics.RecordScan(s.count, time.Since(s.start), s.err)
	s.o.logger.LogScan(s.ctx, s.path, s.count, s.err)
}

// Scan returns a lazy iterator over the records of the store at path.
//
// The store is opened when iteration starts and closed when it ends,
// including when the consumer stops early. A scan error is yielded once,
// as the final element, after every valid record.
func Scan(ctx context.Context, path string, opts ...Option) iter.Seq2[record.Record, error] {
	return scanWith(ctx, path, newOptions(opts))
}

func scanWith(ctx context.Context, path string, o *options) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		s, err := openScanner(ctx, path, o)
		if err != nil {
			yield(record.Record{}, err)
			return
		}
		s.drain(yield)
	}
}

// All returns an iterator over the remaining records of s. The scan error,
// if any, is yielded last. s is closed when iteration ends.
func (s *Scanner) All() iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		s.drain(yield)
	}
}

func (s *Scanner) drain(yield func(record.Record, error) bool) {
	defer s.Close()

	for s.Next() {
		if !yield(s.Record(), nil) {
			return
		}
	}
	if err := s.Err(); err != nil {
		yield(record.Record{}, err)
	}
}

// ReadAll reads every record of the store at path.
//
// On ErrCorruptTrailingRecord the valid records are returned together with
// the error.
func ReadAll(ctx context.Context, path string, opts ...Option) ([]record.Record, error) {
	return readAllWith(ctx, path, newOptions(opts))
}

func readAllWith(ctx context.Context, path string, o *options) ([]record.Record, error) {
	var recs []record.Record
	for rec, err := range scanWith(ctx, path, o) {
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
