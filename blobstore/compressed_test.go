package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/pakgo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression_Roundtrip(t *testing.T) {
	payload := bytes.Repeat([]byte("compressible payload "), 256)

	for _, comp := range []Compression{NewZstdCompression(), NewLZ4Compression()} {
		t.Run(comp.Name(), func(t *testing.T) {
			compressed, err := comp.Compress(payload)
			require.NoError(t, err)
			assert.Less(t, len(compressed), len(payload))

			raw, err := comp.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, raw)

			// Empty payloads survive too.
			compressed, err = comp.Compress(nil)
			require.NoError(t, err)
			raw, err = comp.Decompress(compressed)
			require.NoError(t, err)
			assert.Empty(t, raw)
		})
	}
}

func TestCompression_DecompressGarbage(t *testing.T) {
	for _, comp := range []Compression{NewZstdCompression(), NewLZ4Compression()} {
		t.Run(comp.Name(), func(t *testing.T) {
			_, err := comp.Decompress([]byte("definitely not a frame"))
			assert.Error(t, err)
		})
	}
}

func TestCompressedStore_Roundtrip(t *testing.T) {
	payload := bytes.Repeat([]byte("pak record data "), 512)
	ctx := context.Background()

	for _, comp := range []Compression{NewZstdCompression(), NewLZ4Compression()} {
		t.Run(comp.Name(), func(t *testing.T) {
			inner := NewMemoryStore()
			store := NewCompressedStore(inner, comp, nil)

			require.NoError(t, store.Put(ctx, "blob", payload))

			// The inner store holds the compressed form.
			innerBlob, err := inner.Open(ctx, "blob")
			require.NoError(t, err)
			stored, err := Bytes(innerBlob)
			require.NoError(t, err)
			require.NoError(t, innerBlob.Close())
			assert.Less(t, len(stored), len(payload))
			assert.NotEqual(t, payload, stored)

			blob, err := store.Open(ctx, "blob")
			require.NoError(t, err)
			defer blob.Close()

			assert.Equal(t, int64(len(payload)), blob.Size())
			got, err := Bytes(blob)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"blob"}, names)

			require.NoError(t, store.Delete(ctx, "blob"))
			_, err = store.Open(ctx, "blob")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCompressedStore_MemoryAccounting(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)
	ctx := context.Background()

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	store := NewCompressedStore(NewMemoryStore(), NewZstdCompression(), rc)

	require.NoError(t, store.Put(ctx, "blob", payload))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), rc.MemoryUsage())

	require.NoError(t, blob.Close())
	assert.Zero(t, rc.MemoryUsage())
}
