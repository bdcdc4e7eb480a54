package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocs(t *testing.T) {
	rng := NewRNG(4711)

	docs := rng.Docs(1000, 10)

	assert.Equal(t, 1000, len(docs))
	assert.Equal(t, uint64(0), docs[0].ID)
	assert.Equal(t, uint64(999), docs[999].ID)

	for _, d := range docs {
		assert.GreaterOrEqual(t, d.Score, int64(0))
		assert.Less(t, d.Score, int64(1000))
		assert.GreaterOrEqual(t, d.Weight, 0.0)
		assert.Less(t, d.Weight, 1.0)
	}
}

func TestDocs_Deterministic(t *testing.T) {
	a := NewRNG(4711).Docs(500, 10)
	b := NewRNG(4711).Docs(500, 10)

	assert.Equal(t, a, b)
}

func TestDocs_ZipfSkew(t *testing.T) {
	rng := NewRNG(4711)

	docs := rng.Docs(10_000, 10)

	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.Category]++
	}

	// The head category must dominate the tail under s=1.5.
	assert.Greater(t, counts["cat-00"], counts["cat-09"])
	assert.Greater(t, counts["cat-00"], 2000)
}

func TestZipf_Bounds(t *testing.T) {
	rng := NewRNG(4711)

	for range 1000 {
		v := rng.Zipf(5, 1.5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}

	assert.Equal(t, 0, rng.Zipf(1, 1.5))
	assert.Equal(t, 0, rng.Zipf(0, 1.5))
}

func TestBruteForceQuery(t *testing.T) {
	docs := []Doc{
		{ID: 0, Category: "cat-00", Score: 100},
		{ID: 1, Category: "cat-01", Score: 200},
		{ID: 2, Category: "cat-00", Score: 300},
	}

	got := BruteForceQuery(docs, func(d Doc) bool { return d.Category == "cat-00" })
	assert.Equal(t, []uint64{0, 2}, got)

	got = BruteForceQuery(docs, func(d Doc) bool { return d.Score > 500 })
	assert.Nil(t, got)
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)

	first := rng.Uint64()
	rng.Reset()

	assert.Equal(t, first, rng.Uint64())
	assert.Equal(t, int64(4711), rng.Seed())
}
