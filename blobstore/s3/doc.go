// Package s3 provides an Amazon S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("paks/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reader, err := pakgo.OpenStore(ctx, store, "users.pak")
//
// # Features
//
//   - Managed multipart uploads with CRC32C validation for large artifacts
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// Open downloads the whole object into memory. Wrap the store in a
// blobstore.CachingStore to keep downloaded artifacts on local disk across
// opens.
package s3
