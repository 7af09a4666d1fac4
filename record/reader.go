package record

import (
	"bufio"
	"io"
)

// Reader decodes a back-to-back sequence of records from an io.Reader.
//
// Reader is not safe for concurrent use.
type Reader struct {
	src    *streamSource
	offset int64
}

// NewReader creates a Reader that decodes records from r.
func (c *Codec) NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{src: &streamSource{r: br}}
}

// NewReader creates a Reader using the default codec.
func NewReader(r io.Reader) *Reader { return defaultCodec.NewReader(r) }

// Next decodes the next record and returns it with its encoded size.
//
// Decode failures are *DecodeError values. Offset() is only advanced by
// successful decodes, so after a failure it still points at the start of
// the record that could not be decoded.
func (r *Reader) Next() (Record, int, error) {
	d := decoder{src: r.src}
	rec, n, err := d.decode()
	if err != nil {
		return Record{}, n, err
	}
	r.offset += int64(n)
	return rec, n, nil
}

// Offset returns the number of bytes consumed by successfully decoded
// records.
func (r *Reader) Offset() int64 { return r.offset }
