// Package archive writes compressed snapshots of record stores to a
// blobstore.BlobStore and restores them.
//
// # Snapshot Format
//
//	[Magic:4 "RCSA"][Version:1][Compression:1][Reserved:2][RawLength:8][Body]
//
// Body is the store file (header and records) passed through the selected
// compressor. RawLength is the little-endian length of the decompressed
// body; a body that decompresses to any other length is rejected with
// ErrBadArchive. Only the valid prefix of a store is archived: a store with a
// corrupt trailing record is rejected unless Options.AllowCorrupt is set,
// in which case the corrupt tail is left out.
//
// # Usage
//
//	bs := blobstore.NewLocalStore("/var/backups/recstore")
//	info, err := archive.Snapshot(ctx, bs, "people-2026-10-19.rcsa", "people.rcs",
//	    func(o *archive.Options) {
//	        o.Compression = archive.CompressionZstd
//	    })
//
//	stats, err := archive.Restore(ctx, bs, "people-2026-10-19.rcsa", "people.rcs")
package archive
