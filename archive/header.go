package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// HeaderSize is the size of the snapshot header in bytes.
	HeaderSize = 16

	archiveMagic   = "RCSA"
	archiveVersion = 1
)

var (
	// ErrBadArchive is returned when a blob is not a snapshot this package
	// can read.
	ErrBadArchive = errors.New("archive: bad snapshot")
	// ErrDestinationExists is returned by Restore when the destination holds
	// data and Options.Overwrite is not set.
	ErrDestinationExists = errors.New("archive: destination exists")
)

// header is the fixed prefix of a snapshot blob.
type header struct {
	Compression Compression
	// RawBytes is the length of the decompressed body.
	RawBytes int64
}

func encodeHeader(h header) []byte {
	hdr := make([]byte, HeaderSize)
	copy(hdr, archiveMagic)
	hdr[4] = archiveVersion
	hdr[5] = byte(h.Compression)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(h.RawBytes)) //nolint:gosec // never negative
	return hdr
}

func readHeader(r io.Reader) (header, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return header{}, fmt.Errorf("%w: short header", ErrBadArchive)
		}
		return header{}, err
	}
	if string(hdr[:4]) != archiveMagic {
		return header{}, fmt.Errorf("%w: magic %q", ErrBadArchive, hdr[:4])
	}
	if hdr[4] != archiveVersion {
		return header{}, fmt.Errorf("%w: unsupported version %d", ErrBadArchive, hdr[4])
	}
	c := Compression(hdr[5])
	if c > CompressionLZ4 {
		return header{}, fmt.Errorf("%w: unknown compression %d", ErrBadArchive, hdr[5])
	}
	raw := binary.LittleEndian.Uint64(hdr[8:])
	if raw > math.MaxInt64 {
		return header{}, fmt.Errorf("%w: body length %d out of range", ErrBadArchive, raw)
	}
	return header{Compression: c, RawBytes: int64(raw)}, nil
}

// sizedReader passes through a decompressed body and fails with
// ErrBadArchive unless it holds exactly want bytes.
type sizedReader struct {
	r    io.Reader
	want int64
	n    int64
}

func (s *sizedReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if s.n > s.want {
		return n, fmt.Errorf("%w: body longer than %d bytes", ErrBadArchive, s.want)
	}
	switch {
	case errors.Is(err, io.EOF):
		if s.n < s.want {
			return n, fmt.Errorf("%w: body ended after %d of %d bytes", ErrBadArchive, s.n, s.want)
		}
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Must not reach the record decoder as an EOF.
		return n, fmt.Errorf("%w: truncated body after %d of %d bytes", ErrBadArchive, s.n, s.want)
	case err != nil:
		return n, fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
	return n, err
}
