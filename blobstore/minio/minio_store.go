package minio

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/pakgo/blobstore"
	"github.com/hupe1980/pakgo/resource"
	"github.com/minio/minio-go/v7"
)

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys (e.g. "paks/").
	Prefix string

	// ResourceController accounts for the memory held by fetched blobs
	// and throttles downloads. May be nil.
	ResourceController *resource.Controller
}

// Option modifies the store Options.
type Option func(*Options)

// WithPrefix sets the key prefix prepended to all blob names.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithResourceController sets the resource controller used for downloads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *Options) { o.ResourceController = rc }
}

// Store implements blobstore.Store for MinIO and S3-compatible storage.
//
// Open fetches the whole object into memory: a pak artifact is downloaded
// once and then queried many times, so per-read range requests would only
// add round trips.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	rc     *resource.Controller
}

// NewStore creates a new MinIO blob store for the given bucket.
func NewStore(client *minio.Client, bucket string, optFns ...Option) *Store {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
		rc:     opts.ResourceController,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open downloads a blob into memory and returns it.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	// Stat first: GetObject defers errors until the first read.
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	return blobstore.FetchAll(ctx, obj, info.Size, s.rc)
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.key(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil // already gone
		}
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Strip our root prefix
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
