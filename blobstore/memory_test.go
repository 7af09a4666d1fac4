package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	w, err := store.Create(ctx, "a/1")
	require.NoError(t, err)
	_, err = w.Write([]byte("one"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = store.Create(ctx, "a/2")
	require.NoError(t, err)
	_, err = w.Write([]byte("two"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	require.NoError(t, store.Put(ctx, "b/1", []byte("three")))

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1"}, names)

	blob, err := store.Open(ctx, "a/1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), blob.Size())
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	require.NoError(t, store.Delete(ctx, "a/1"))
	_, ok := store.Bytes("a/1")
	assert.False(t, ok)
}
