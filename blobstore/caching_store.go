package blobstore

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a Store and materializes blobs in a local directory.
// The first Open of a blob downloads it once; later opens are served from
// disk via mmap. Suited for remote stores, where a pak artifact is fetched
// once and queried many times.
type CachingStore struct {
	inner Store
	local *LocalStore
	group singleflight.Group
}

// NewCachingStore creates a new CachingStore caching into dir.
func NewCachingStore(inner Store, dir string) *CachingStore {
	return &CachingStore{
		inner: inner,
		local: NewLocalStore(dir),
	}
}

// Open opens a blob, downloading it into the cache directory on a miss.
// Concurrent opens of the same blob share a single download.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.local.Open(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err, _ = s.group.Do(name, func() (any, error) {
		return nil, s.fill(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	return s.local.Open(ctx, name)
}

func (s *CachingStore) fill(ctx context.Context, name string) error {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	data, err := Bytes(b)
	if err != nil {
		return err
	}
	return s.local.Put(ctx, name, data)
}

// Put writes through to the inner store and drops any cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	return s.local.Delete(ctx, name)
}

// Delete removes a blob from the inner store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.inner.Delete(ctx, name); err != nil {
		return err
	}
	return s.local.Delete(ctx, name)
}

// List returns all blob names with the given prefix from the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Evict drops the cached copy of a blob, forcing the next Open to download.
func (s *CachingStore) Evict(name string) error {
	return s.local.Delete(context.Background(), name)
}
