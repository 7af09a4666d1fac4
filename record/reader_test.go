package record

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, recs ...Record) []byte {
	t.Helper()
	var buf []byte
	for _, r := range recs {
		var err error
		buf, err = defaultCodec.AppendEncode(buf, r)
		require.NoError(t, err)
	}
	return buf
}

func TestReaderSequence(t *testing.T) {
	recs := []Record{
		{ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5},
		{ID: 102, Name: "Bob", Designation: "Analyst", Amount: 60},
		{ID: 0, Name: "", Designation: "", Amount: 0},
	}
	r := NewReader(bytes.NewReader(encodeAll(t, recs...)))

	var got []Record
	for {
		rec, _, err := r.Next()
		if errors.Is(err, ErrIncomplete) {
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			require.Zero(t, de.Offset)
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}

	assert.Equal(t, recs, got)
	assert.Equal(t, int64(EncodedSize(recs[0])+EncodedSize(recs[1])+EncodedSize(recs[2])), r.Offset())
}

func TestReaderPartialTail(t *testing.T) {
	a := Record{ID: 1, Name: "one", Designation: "first", Amount: 1}
	b := Record{ID: 2, Name: "two", Designation: "second", Amount: 2}
	buf := encodeAll(t, a, b)
	buf = buf[:len(buf)-3]

	r := NewReader(bytes.NewReader(buf))

	got, n, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, EncodedSize(a), n)

	_, _, err = r.Next()
	require.ErrorIs(t, err, ErrIncomplete)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Positive(t, de.Offset)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, int64(EncodedSize(a)), r.Offset())
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReaderPropagatesIOErrors(t *testing.T) {
	ioErr := errors.New("disk on fire")
	r := NewReader(failingReader{err: ioErr})

	_, _, err := r.Next()
	require.ErrorIs(t, err, ioErr)
	assert.False(t, errors.Is(err, ErrIncomplete))
	assert.False(t, errors.Is(err, ErrMalformed))
}
