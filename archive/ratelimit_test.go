package archive

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedWriterChunksAboveBurst(t *testing.T) {
	var buf bytes.Buffer
	w := newLimitedWriter(context.Background(), &buf, 4096)

	data := bytes.Repeat([]byte("x"), 6000)
	n, err := w.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, buf.Bytes())
}

func TestLimitedWriterDisabled(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, newLimitedWriter(context.Background(), &buf, 0))
}

func TestCountingWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &countingWriter{w: &buf}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("de"))
	assert.Equal(t, int64(5), cw.n)
}
