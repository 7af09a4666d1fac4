package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Marker is the first byte of every encoded record.
	Marker byte = 0xE5

	// MaxTextLen is the largest text field the format allows, in bytes.
	// Decoding rejects any longer length prefix regardless of options.
	MaxTextLen = 1 << 20

	// DefaultMaxTextLen is the encoding bound used when none is configured.
	DefaultMaxTextLen = MaxTextLen

	fieldHeaderLen = 2 // tag + kind
	fixedValueLen  = 8
	lengthPrefix   = 4
)

// Options configures a Codec.
type Options struct {
	// MaxTextLen is the largest text field Encode accepts, in bytes.
	// Encoding a longer field fails with ErrFieldTooLong. Values above the
	// format bound are clamped to it. Decoding ignores this setting.
	MaxTextLen int
}

// DefaultOptions are the options used by the package-level functions.
var DefaultOptions = Options{
	MaxTextLen: DefaultMaxTextLen,
}

// Codec encodes and decodes records. It holds no per-record state and is
// safe for concurrent use.
type Codec struct {
	maxTextLen int
}

// NewCodec creates a Codec.
func NewCodec(optFns ...func(o *Options)) *Codec {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	switch {
	case opts.MaxTextLen <= 0:
		opts.MaxTextLen = DefaultMaxTextLen
	case opts.MaxTextLen > MaxTextLen:
		opts.MaxTextLen = MaxTextLen
	}
	return &Codec{maxTextLen: opts.MaxTextLen}
}

var defaultCodec = NewCodec()

// Encode encodes r with the default codec.
func Encode(r Record) ([]byte, error) { return defaultCodec.Encode(r) }

// Decode decodes one record from the front of b with the default codec.
func Decode(b []byte) (Record, int, error) { return defaultCodec.Decode(b) }

// EncodedSize returns the number of bytes Encode produces for r.
func EncodedSize(r Record) int {
	return 2 + // marker + field count
		fieldHeaderLen + fixedValueLen + // id
		fieldHeaderLen + lengthPrefix + len(r.Name) +
		fieldHeaderLen + lengthPrefix + len(r.Designation) +
		fieldHeaderLen + fixedValueLen // amount
}

// MaxTextLen returns the configured encoding bound.
func (c *Codec) MaxTextLen() int { return c.maxTextLen }

// Encode returns the encoding of r.
func (c *Codec) Encode(r Record) ([]byte, error) {
	return c.AppendEncode(make([]byte, 0, EncodedSize(r)), r)
}

// AppendEncode appends the encoding of r to dst.
func (c *Codec) AppendEncode(dst []byte, r Record) ([]byte, error) {
	if len(r.Name) > c.maxTextLen {
		return dst, fmt.Errorf("%w: name is %d bytes, limit %d", ErrFieldTooLong, len(r.Name), c.maxTextLen)
	}
	if len(r.Designation) > c.maxTextLen {
		return dst, fmt.Errorf("%w: designation is %d bytes, limit %d", ErrFieldTooLong, len(r.Designation), c.maxTextLen)
	}

	dst = append(dst, Marker, byte(len(schema)))

	dst = append(dst, byte(FieldID), byte(KindInt64))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.ID)) //nolint:gosec // two's complement round trip

	dst = appendString(dst, FieldName, r.Name)
	dst = appendString(dst, FieldDesignation, r.Designation)

	dst = append(dst, byte(FieldAmount), byte(KindFloat64))
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(r.Amount))

	return dst, nil
}

func appendString(dst []byte, f Field, s string) []byte {
	dst = append(dst, byte(f), byte(KindString))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s))) //nolint:gosec // bounded by maxTextLen
	return append(dst, s...)
}

// Decode decodes one record from the front of b and returns it together
// with the number of bytes it occupied.
func (c *Codec) Decode(b []byte) (Record, int, error) {
	d := decoder{src: &sliceSource{b: b}}
	return d.decode()
}

// source yields exactly n bytes or fails. A short source fails with io.EOF
// or io.ErrUnexpectedEOF.
type source interface {
	take(n int) ([]byte, error)
}

type sliceSource struct {
	b   []byte
	pos int
}

func (s *sliceSource) take(n int) ([]byte, error) {
	if len(s.b)-s.pos < n {
		if s.pos == len(s.b) {
			return nil, io.EOF
		}
		s.pos = len(s.b)
		return nil, io.ErrUnexpectedEOF
	}
	p := s.b[s.pos : s.pos+n]
	s.pos += n
	return p, nil
}

type streamSource struct {
	r   *bufio.Reader
	buf []byte
}

func (s *streamSource) take(n int) ([]byte, error) {
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	p := s.buf[:n]
	if _, err := io.ReadFull(s.r, p); err != nil {
		return nil, err
	}
	return p, nil
}

type decoder struct {
	src source
	off int
}

func (d *decoder) read(n int, f Field) ([]byte, error) {
	p, err := d.src.take(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, incomplete(d.off, f, err)
		}
		return nil, err
	}
	d.off += n
	return p, nil
}

func (d *decoder) decode() (Record, int, error) {
	var rec Record

	// The marker is read on its own so that an input holding no byte of a
	// record reports Offset 0 and a single dangling byte does not.
	p, err := d.read(1, 0)
	if err != nil {
		return Record{}, d.off, err
	}
	if p[0] != Marker {
		return Record{}, 0, malformed(0, 0, "bad marker 0x%02x", p[0])
	}
	p, err = d.read(1, 0)
	if err != nil {
		return Record{}, d.off, err
	}
	if int(p[0]) != len(schema) {
		return Record{}, 1, malformed(1, 0, "field count %d, want %d", p[0], len(schema))
	}

	var seen [len(schema) + 1]bool
	for range len(schema) {
		start := d.off
		fh, err := d.read(fieldHeaderLen, 0)
		if err != nil {
			return Record{}, d.off, err
		}
		f, k := Field(fh[0]), Kind(fh[1])
		want, ok := expectedKind(f)
		if !ok {
			return Record{}, start, malformed(start, 0, "unknown tag %d", fh[0])
		}
		if seen[f] {
			return Record{}, start, malformed(start, f, "duplicate field")
		}
		seen[f] = true
		if k != want {
			return Record{}, start, malformed(start, f, "kind %s, want %s", k, want)
		}

		switch k {
		case KindInt64:
			p, err := d.read(fixedValueLen, f)
			if err != nil {
				return Record{}, d.off, err
			}
			rec.ID = int64(binary.LittleEndian.Uint64(p)) //nolint:gosec // two's complement round trip
		case KindFloat64:
			p, err := d.read(fixedValueLen, f)
			if err != nil {
				return Record{}, d.off, err
			}
			rec.Amount = math.Float64frombits(binary.LittleEndian.Uint64(p))
		case KindString:
			s, err := d.readString(f)
			if err != nil {
				return Record{}, d.off, err
			}
			if f == FieldName {
				rec.Name = s
			} else {
				rec.Designation = s
			}
		}
	}

	return rec, d.off, nil
}

func (d *decoder) readString(f Field) (string, error) {
	start := d.off
	p, err := d.read(lengthPrefix, f)
	if err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(p)
	if n > MaxTextLen {
		return "", tooLong(start, f, n)
	}
	if n == 0 {
		return "", nil
	}
	p, err = d.read(int(n), f)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
