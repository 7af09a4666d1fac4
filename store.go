package recstore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/Arstat/recstore/internal/fs"
	"github.com/Arstat/recstore/record"
)

// Store binds a store path to a set of options.
//
// A Store holds no open file between calls; every method is an independent
// open, read or write, close cycle.
type Store struct {
	path string
	o    *options
}

// Open returns a handle for the store at path. The file is not touched
// until the first operation.
func Open(path string, opts ...Option) *Store {
	return &Store{path: path, o: newOptions(opts)}
}

// Path returns the store path.
func (s *Store) Path() string { return s.path }

// Append adds rec to the end of the store. See the package-level Append.
func (s *Store) Append(ctx context.Context, rec record.Record) error {
	return appendWith(ctx, s.path, rec, s.o)
}

// Scan returns a lazy iterator over the records. See the package-level Scan.
func (s *Store) Scan(ctx context.Context) iter.Seq2[record.Record, error] {
	return scanWith(ctx, s.path, s.o)
}

// Scanner opens a Scanner over the store.
func (s *Store) Scanner(ctx context.Context) (*Scanner, error) {
	return openScanner(ctx, s.path, s.o)
}

// ReadAll reads every record. See the package-level ReadAll.
func (s *Store) ReadAll(ctx context.Context) ([]record.Record, error) {
	return readAllWith(ctx, s.path, s.o)
}

// Stats describes the state of a store file.
type Stats struct {
	Path string
	// Size is the file size in bytes, 0 for a missing store.
	Size int64
	// Records is the number of valid records.
	Records int
	// ValidBytes is the length of the valid prefix: the header plus every
	// valid record. It equals Size for a healthy non-empty store.
	ValidBytes int64
	// Corrupt reports a corrupt trailing record after the valid prefix.
	Corrupt bool
}

// TrailingBytes returns the number of bytes after the valid prefix.
func (st Stats) TrailingBytes() int64 { return st.Size - st.ValidBytes }

// Verify scans the whole store and reports its state.
//
// A corrupt tail is reported both in Stats and as a
// *CorruptTrailingRecordError; other errors leave Stats partially filled.
func (s *Store) Verify(ctx context.Context) (Stats, error) {
	st := Stats{Path: s.path}

	size, err := fs.Size(s.o.fs, s.path)
	if err != nil {
		return st, fmt.Errorf("failed to stat store %s: %w", s.path, err)
	}
	st.Size = size

	sc, err := openScanner(ctx, s.path, s.o)
	if err != nil {
		return st, err
	}
	defer sc.Close()

	for sc.Next() {
		// drain
	}
	st.Records = sc.Count()
	st.ValidBytes = sc.Offset()

	err = sc.Err()
	if isCorrupt(err) {
		st.Corrupt = true
	}
	return st, err
}

// Repair truncates a store with a corrupt trailing record to its last valid
// record boundary and returns the resulting Stats.
//
// Repair is an explicit operator action: Append and Scan never discard data
// on their own. A healthy store is left untouched. A store with a bad header
// is not repaired, and neither is one whose tail holds a text length above
// record.MaxTextLen: such a tail is not the result of a torn append.
func (s *Store) Repair(ctx context.Context) (Stats, error) {
	st, err := s.Verify(ctx)
	if err == nil {
		return st, nil
	}
	if !st.Corrupt {
		s.o.logger.LogRepair(ctx, s.path, 0, err)
		return st, err
	}

	if errors.Is(err, record.ErrFieldTooLong) {
		err = fmt.Errorf("refusing to truncate store %s: %w", s.path, err)
		s.o.logger.LogRepair(ctx, s.path, 0, err)
		return st, err
	}

	truncated := st.TrailingBytes()
	if err := s.o.fs.Truncate(s.path, st.ValidBytes); err != nil {
		err = fmt.Errorf("failed to truncate store %s to %d bytes: %w", s.path, st.ValidBytes, err)
		s.o.logger.LogRepair(ctx, s.path, 0, err)
		return st, err
	}
	s.o.metrics.RecordRepair(truncated)
	s.o.logger.LogRepair(ctx, s.path, truncated, nil)

	st.Size = st.ValidBytes
	st.Corrupt = false
	return st, nil
}
