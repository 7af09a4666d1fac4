package recstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Arstat/recstore/record"
	"github.com/stretchr/testify/require"
)

var (
	alice = record.Record{ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5}
	bob   = record.Record{ID: 102, Name: "Bob", Designation: "Analyst", Amount: 60.0}
	carol = record.Record{ID: 103, Name: "Carol", Designation: "", Amount: -12.75}
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "people.rcs")
}

func appendAll(t *testing.T, path string, recs ...record.Record) {
	t.Helper()
	for _, r := range recs {
		require.NoError(t, Append(context.Background(), path, r))
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
