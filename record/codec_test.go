package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"typical", Record{ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5}},
		{"zero value", Record{}},
		{"negative amount", Record{ID: 7, Name: "Bob", Designation: "Analyst", Amount: -60.25}},
		{"negative id", Record{ID: -42, Name: "x", Designation: "y", Amount: 0}},
		{"extreme values", Record{ID: math.MaxInt64, Name: "max", Designation: "min", Amount: math.SmallestNonzeroFloat64}},
		{"min id", Record{ID: math.MinInt64, Amount: math.Inf(-1)}},
		{"unicode", Record{ID: 3, Name: "Zoë Ångström", Designation: "研究員", Amount: 1e12}},
		{"empty designation", Record{ID: 9, Name: "Solo", Amount: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.rec)
			require.NoError(t, err)
			assert.Len(t, b, EncodedSize(tt.rec))

			got, n, err := Decode(b)
			require.NoError(t, err)
			assert.Equal(t, len(b), n)
			assert.Equal(t, tt.rec, got)
		})
	}
}

func TestRoundTripNaN(t *testing.T) {
	b, err := Encode(Record{ID: 1, Amount: math.NaN()})
	require.NoError(t, err)

	got, _, err := Decode(b)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Amount))
}

func TestDecodeConsumesOnlyOneRecord(t *testing.T) {
	a := Record{ID: 1, Name: "first", Designation: "a", Amount: 1}
	b := Record{ID: 2, Name: "second", Designation: "b", Amount: 2}

	buf, err := Encode(a)
	require.NoError(t, err)
	buf, err = defaultCodec.AppendEncode(buf, b)
	require.NoError(t, err)

	got, n, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, EncodedSize(a), n)

	got, m, err := Decode(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.Equal(t, len(buf), n+m)
}

func TestDecodeEmptyInput(t *testing.T) {
	_, n, err := Decode(nil)
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Zero(t, n)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Zero(t, de.Offset)
}

func TestDecodeTruncated(t *testing.T) {
	rec := Record{ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5}
	b, err := Encode(rec)
	require.NoError(t, err)

	for cut := 1; cut < len(b); cut++ {
		_, _, err := Decode(b[:cut])
		require.ErrorIs(t, err, ErrIncomplete, "cut=%d", cut)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Positive(t, de.Offset, "cut=%d: a partial record must never report offset 0", cut)
		assert.LessOrEqual(t, de.Offset, cut)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(Record{ID: 1, Name: "ab", Designation: "cd", Amount: 2})
	require.NoError(t, err)

	mutate := func(fn func(b []byte)) []byte {
		b := bytes.Clone(valid)
		fn(b)
		return b
	}

	// Offsets within valid: marker(0) count(1) id tag(2) kind(3) value(4..11)
	// name tag(12) kind(13) len(14..17) bytes(18..19) ...
	tests := []struct {
		name  string
		input []byte
		field Field
	}{
		{"bad marker", mutate(func(b []byte) { b[0] = 0x00 }), 0},
		{"bad field count", mutate(func(b []byte) { b[1] = 3 }), 0},
		{"unknown tag", mutate(func(b []byte) { b[2] = 9 }), 0},
		{"kind mismatch", mutate(func(b []byte) { b[3] = byte(KindString) }), FieldID},
		{"duplicate tag", mutate(func(b []byte) { b[12] = byte(FieldID); b[13] = byte(KindInt64) }), FieldID},
		{"oversized length", mutate(func(b []byte) { binary.LittleEndian.PutUint32(b[14:], math.MaxUint32) }), FieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.input)
			require.ErrorIs(t, err, ErrMalformed)
			assert.False(t, errors.Is(err, ErrIncomplete))

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDecodeAcceptsAnyFieldOrder(t *testing.T) {
	var b []byte
	b = append(b, Marker, 4)
	b = append(b, byte(FieldAmount), byte(KindFloat64))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(3.5))
	b = appendString(b, FieldDesignation, "Ops")
	b = appendString(b, FieldName, "Carol")
	b = append(b, byte(FieldID), byte(KindInt64))
	b = binary.LittleEndian.AppendUint64(b, 55)

	got, n, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, Record{ID: 55, Name: "Carol", Designation: "Ops", Amount: 3.5}, got)
}

func TestMaxTextLen(t *testing.T) {
	c := NewCodec(func(o *Options) {
		o.MaxTextLen = 4
	})

	_, err := c.Encode(Record{Name: "toolong"})
	require.ErrorIs(t, err, ErrFieldTooLong)

	_, err = c.Encode(Record{Designation: strings.Repeat("x", 5)})
	require.ErrorIs(t, err, ErrFieldTooLong)

	// The encoding bound does not restrict what can be decoded.
	b, err := Encode(Record{ID: 3, Name: "toolong"})
	require.NoError(t, err)
	got, n, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, "toolong", got.Name)

	rd := c.NewReader(bytes.NewReader(b))
	got, _, err = rd.Next()
	require.NoError(t, err)
	assert.Equal(t, "toolong", got.Name)
}

func TestNewCodecDefaultsInvalidLimit(t *testing.T) {
	c := NewCodec(func(o *Options) { o.MaxTextLen = -1 })
	assert.Equal(t, DefaultMaxTextLen, c.MaxTextLen())

	c = NewCodec(func(o *Options) { o.MaxTextLen = MaxTextLen + 1 })
	assert.Equal(t, MaxTextLen, c.MaxTextLen())
}

func TestDecodeLengthAboveFormatBound(t *testing.T) {
	b, err := Encode(Record{Name: "Al"})
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(b[14:], MaxTextLen+1)

	_, _, err = Decode(b)
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorIs(t, err, ErrFieldTooLong)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, FieldName, de.Field)
}

func TestRecordString(t *testing.T) {
	r := Record{ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5}
	assert.Equal(t, "ID: 101   | Name: Alice Johnson        | Designation: Engineer        | Amount: 85.50", r.String())
}
