package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/Arstat/recstore"
	"github.com/Arstat/recstore/blobstore"
	"github.com/Arstat/recstore/internal/fs"
	"github.com/Arstat/recstore/record"
)

// Options configures Snapshot, Restore and ScanSnapshot.
type Options struct {
	// Compression selects the snapshot body codec. Ignored by Restore,
	// which reads it from the snapshot header.
	Compression Compression
	// Level is the codec level. 0 uses the codec default.
	Level int
	// AllowCorrupt archives the valid prefix of a store with a corrupt
	// trailing record instead of refusing it.
	AllowCorrupt bool
	// Overwrite lets Restore replace a non-empty destination.
	Overwrite bool
	// RateLimit caps snapshot upload throughput in bytes per second.
	// 0 disables the limit.
	RateLimit int
	// FileSystem is used for local store files. Defaults to fs.Default.
	FileSystem fs.FileSystem
	// StoreOptions are passed to the recstore operations used internally.
	StoreOptions []recstore.Option
}

// DefaultOptions are the defaults applied before option functions.
var DefaultOptions = Options{
	Compression: CompressionZstd,
	FileSystem:  fs.Default,
}

func buildOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FileSystem == nil {
		opts.FileSystem = fs.Default
	}
	return opts
}

func (o Options) storeOptions() []recstore.Option {
	return append([]recstore.Option{recstore.WithFileSystem(o.FileSystem)}, o.StoreOptions...)
}

// Info describes a written snapshot.
type Info struct {
	Name        string
	Compression Compression
	// Records is the number of records archived.
	Records int
	// RawBytes is the number of store bytes archived.
	RawBytes int64
	// StoredBytes is the blob size including the snapshot header.
	StoredBytes int64
	// Skipped is the number of corrupt trailing bytes left out.
	Skipped int64
}

// Snapshot writes the store at storePath to bs under name.
//
// The store is verified first. A store with a corrupt trailing record is
// refused unless AllowCorrupt is set; then only its valid prefix is
// archived. A missing store produces an empty snapshot.
func Snapshot(ctx context.Context, bs blobstore.BlobStore, name, storePath string, optFns ...func(o *Options)) (Info, error) {
	opts := buildOptions(optFns)
	info := Info{Name: name, Compression: opts.Compression}

	st, err := recstore.Open(storePath, opts.storeOptions()...).Verify(ctx)
	if err != nil && !(st.Corrupt && opts.AllowCorrupt) {
		return info, fmt.Errorf("failed to verify store %s: %w", storePath, err)
	}
	info.Records = st.Records
	info.RawBytes = st.ValidBytes
	info.Skipped = st.TrailingBytes()

	var src io.Reader = eofReader{}
	if st.ValidBytes > 0 {
		f, err := opts.FileSystem.OpenFile(storePath, os.O_RDONLY, 0)
		if err != nil {
			return info, fmt.Errorf("failed to open store %s: %w", storePath, err)
		}
		defer f.Close()
		src = io.LimitReader(f, st.ValidBytes)
	}

	blob, err := bs.Create(ctx, name)
	if err != nil {
		return info, fmt.Errorf("failed to create snapshot %s: %w", name, err)
	}

	stored, err := writeSnapshot(ctx, blob, src, st.ValidBytes, opts)
	if err != nil {
		_ = blob.Abort()
		return info, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if err := blob.Close(); err != nil {
		return info, fmt.Errorf("failed to commit snapshot %s: %w", name, err)
	}
	info.StoredBytes = stored
	return info, nil
}

func writeSnapshot(ctx context.Context, dst io.Writer, src io.Reader, want int64, opts Options) (int64, error) {
	cw := &countingWriter{w: newLimitedWriter(ctx, dst, opts.RateLimit)}
	hdr := encodeHeader(header{Compression: opts.Compression, RawBytes: want})
	if _, err := cw.Write(hdr); err != nil {
		return cw.n, err
	}

	zw, err := newCompressor(cw, opts.Compression, opts.Level)
	if err != nil {
		return cw.n, err
	}
	n, err := io.Copy(zw, src)
	if err != nil {
		_ = zw.Close()
		return cw.n, err
	}
	if n != want {
		_ = zw.Close()
		return cw.n, fmt.Errorf("store shrank during snapshot: copied %d of %d bytes", n, want)
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Restore writes the snapshot name from bs to destPath.
//
// The snapshot is decompressed into a temporary file next to destPath and
// verified before it is renamed into place, so a failed restore leaves
// destPath unchanged. A non-empty destPath is refused unless Overwrite is
// set.
func Restore(ctx context.Context, bs blobstore.BlobStore, name, destPath string, optFns ...func(o *Options)) (recstore.Stats, error) {
	opts := buildOptions(optFns)
	fsys := opts.FileSystem

	size, err := fs.Size(fsys, destPath)
	if err != nil {
		return recstore.Stats{Path: destPath}, fmt.Errorf("failed to stat %s: %w", destPath, err)
	}
	if size > 0 && !opts.Overwrite {
		return recstore.Stats{Path: destPath, Size: size}, fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
	}

	tmp := destPath + ".tmp"
	if err := restoreTo(ctx, bs, name, tmp, opts); err != nil {
		_ = fsys.Remove(tmp)
		return recstore.Stats{Path: destPath}, err
	}

	st, err := recstore.Open(tmp, opts.storeOptions()...).Verify(ctx)
	if err != nil {
		_ = fsys.Remove(tmp)
		return st, fmt.Errorf("restored snapshot %s does not verify: %w", name, err)
	}

	if err := fsys.Rename(tmp, destPath); err != nil {
		_ = fsys.Remove(tmp)
		return st, fmt.Errorf("failed to move restored store into place: %w", err)
	}
	st.Path = destPath
	return st, nil
}

func restoreTo(ctx context.Context, bs blobstore.BlobStore, name, path string, opts Options) error {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", name, err)
	}
	defer blob.Close()

	hdr, err := readHeader(blob)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	zr, err := newDecompressor(blob, hdr.Compression)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	defer zr.Close()

	f, err := opts.FileSystem.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, recstore.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, &sizedReader{r: zr, want: hdr.RawBytes}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to decompress snapshot %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return f.Close()
}

// ScanSnapshot returns a lazy iterator over the records of a snapshot,
// read straight from the blob store without restoring it. Errors follow
// the rules of recstore.Scan; the blob is released when iteration ends.
func ScanSnapshot(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...func(o *Options)) iter.Seq2[record.Record, error] {
	opts := buildOptions(optFns)
	return func(yield func(record.Record, error) bool) {
		blob, err := bs.Open(ctx, name)
		if err != nil {
			yield(record.Record{}, fmt.Errorf("failed to open snapshot %s: %w", name, err))
			return
		}
		defer blob.Close()

		hdr, err := readHeader(blob)
		if err != nil {
			yield(record.Record{}, fmt.Errorf("snapshot %s: %w", name, err))
			return
		}
		zr, err := newDecompressor(blob, hdr.Compression)
		if err != nil {
			yield(record.Record{}, fmt.Errorf("snapshot %s: %w", name, err))
			return
		}
		defer zr.Close()

		// body is not an io.Closer, so the scanner leaves zr to the defer.
		body := &sizedReader{r: zr, want: hdr.RawBytes}
		sc, err := recstore.NewScanner(ctx, name, body, opts.StoreOptions...)
		if err != nil {
			yield(record.Record{}, err)
			return
		}
		for rec, err := range sc.All() {
			if !yield(rec, err) {
				return
			}
		}
	}
}

// IsMissing reports whether err means the snapshot does not exist.
func IsMissing(err error) bool { return errors.Is(err, blobstore.ErrNotFound) }
