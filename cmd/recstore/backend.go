package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arstat/recstore/archive"
	"github.com/Arstat/recstore/blobstore"
	blobminio "github.com/Arstat/recstore/blobstore/minio"
	blobs3 "github.com/Arstat/recstore/blobstore/s3"
)

// addBackendFlags registers the snapshot destination flags on cmd.
func addBackendFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", defaultBackend, "snapshot backend (local, minio, s3)")
	f.String("dir", defaultSnapDir, "snapshot directory for the local backend")
	f.String("bucket", "", "bucket for the minio and s3 backends")
	f.String("prefix", "", "key prefix inside the bucket")
	f.String("endpoint", "", "object storage endpoint")
	f.String("region", "", "s3 region")
}

func openBlobStore(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	sc := cfg.Snapshot
	switch sc.Backend {
	case backendLocal:
		return blobstore.NewLocalStore(sc.Directory), nil
	case backendMinio:
		bs, err := blobminio.Dial(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.Secure, sc.Bucket, sc.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to minio at %s: %w", sc.Endpoint, err)
		}
		return bs, nil
	case backendS3:
		bs, err := blobs3.New(ctx, sc.Bucket, func(o *blobs3.Options) {
			o.Prefix = sc.Prefix
			o.Region = sc.Region
			o.Endpoint = sc.Endpoint
			o.UsePathStyle = sc.PathStyle
			o.AccessKeyID = sc.AccessKey
			o.SecretAccessKey = sc.SecretKey
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, sc.Backend)
	}
}

// archiveOptions returns the archive options derived from cfg.
func (c *Config) archiveOptions(cmd *cobra.Command) (func(o *archive.Options), error) {
	comp, err := archive.ParseCompression(c.Snapshot.Compression)
	if err != nil {
		return nil, err
	}
	limit, err := c.rateLimit()
	if err != nil {
		return nil, err
	}
	storeOpts := c.storeOptions(cmd.ErrOrStderr())
	return func(o *archive.Options) {
		o.Compression = comp
		o.RateLimit = limit
		o.StoreOptions = storeOpts
	}, nil
}
