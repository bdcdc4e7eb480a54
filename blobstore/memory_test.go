package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "a/one", []byte("first")))
	require.NoError(t, store.Put(ctx, "a/two", []byte("second")))
	require.NoError(t, store.Put(ctx, "b/one", []byte("third")))

	blob, err := store.Open(ctx, "a/one")
	require.NoError(t, err)
	defer blob.Close()

	got, err := Bytes(blob)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two", "b/one"}, names)

	require.NoError(t, store.Delete(ctx, "a/one"))
	_, err = store.Open(ctx, "a/one")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, "a/one"))
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("immutable")
	require.NoError(t, store.Put(ctx, "blob", data))

	// Mutating the slice passed to Put must not change stored bytes.
	data[0] = 'X'

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	got, err := Bytes(blob)
	require.NoError(t, err)
	assert.Equal(t, "immutable", string(got))

	// Mutating bytes from one handle must not leak into another.
	got[0] = 'Y'

	other, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer other.Close()

	got2, err := Bytes(other)
	require.NoError(t, err)
	assert.Equal(t, "immutable", string(got2))
}
