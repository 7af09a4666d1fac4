package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.rcs")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	require.NoError(t, f.Close())

	require.NoError(t, lfs.Truncate(fpath, 2))
	size, err := Size(lfs, fpath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	newPath := filepath.Join(dir, "renamed.rcs")
	require.NoError(t, lfs.Rename(fpath, newPath))
	_, err = lfs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, lfs.Remove(newPath))
	size, err = Size(lfs, newPath)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("faulty", Fault{FailAfterBytes: 5})

	fpath := filepath.Join(tmp, "faulty.rcs")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	require.ErrorIs(t, err, ErrInjected)
	assert.Zero(t, n)
	require.NoError(t, f.Close())

	assert.Equal(t, int64(5), ffs.Written())
	assert.Equal(t, 1, ffs.Opened())
}

func TestFaultyFS_TornWrite(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("torn", Fault{FailAfterBytes: 3, TornWrite: true})

	fpath := filepath.Join(tmp, "torn.rcs")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("abcdef"))
	require.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 3, n)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFaultyFS_OpenSyncClose(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	ffs.AddRule("noopen", Fault{FailOnOpen: true, FailAfterBytes: -1})
	_, err := ffs.OpenFile(filepath.Join(tmp, "noopen.rcs"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.ErrorIs(t, err, ErrInjected)

	ffs.AddRule("nosync", Fault{FailOnSync: true, FailOnClose: true, FailAfterBytes: -1})
	f, err := ffs.OpenFile(filepath.Join(tmp, "nosync.rcs"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	ffs.ClearRules()
	f, err = ffs.OpenFile(filepath.Join(tmp, "nosync.rcs"), os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.NoError(t, f.Sync())
	assert.NoError(t, f.Close())
}

func TestFaultyFS_Truncate(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "trunc.rcs")
	ffs := NewFaultyFS(nil)

	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(0))

	// With O_APPEND the next write lands at the new end.
	_, err = f.Write([]byte("xy"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Zero(t, ffs.Truncated())

	require.NoError(t, ffs.Truncate(fpath, 1))
	assert.Equal(t, 1, ffs.Truncated())

	data, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestLockDescriptorlessFile(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	f, err := ffs.OpenFile(filepath.Join(tmp, "plain.rcs"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	assert.NoError(t, Lock(f))
}

func TestLockLocalFile(t *testing.T) {
	f, err := Default.OpenFile(filepath.Join(t.TempDir(), "locked.rcs"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	require.NoError(t, Lock(f))
	require.NoError(t, f.Close())
}
