// Package s3 provides an Amazon S3 implementation of the blobstore.BlobStore
// interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "recstore/"
//	    o.Region = "eu-central-1"
//	})
//	err = archive.Snapshot(ctx, store, "people.rcsa", "people.rcs")
//
// Streaming writes go through the S3 upload manager, which switches to
// multipart uploads for large snapshots.
package s3
