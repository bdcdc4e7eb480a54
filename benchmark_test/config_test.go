package benchmark_test

import (
	"testing"

	"github.com/hupe1980/pakgo"
	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard corpus sizes.
const (
	sizeSmall  = 1_000   // Quick iteration
	sizeMedium = 10_000  // Default CI
	sizeLarge  = 100_000 // Production-scale
)

// Categories per corpus; Zipf-skewed so the head category is dense and the
// tail categories stay selective.
const benchCategories = 20

// Seed for deterministic benchmarks - enables reproducible comparisons.
const benchSeed = 42

// ============================================================================
// Benchmark Helpers
// ============================================================================

// corpus returns a deterministic document set for the given size.
func corpus(b *testing.B, n int) []testutil.Doc {
	b.Helper()
	return testutil.NewRNG(benchSeed).Docs(n, benchCategories)
}

// buildReader packs docs and finalizes to memory, returning the reader and
// the pointer of every record.
func buildReader(b *testing.B, docs []testutil.Doc, opts ...pakgo.Option) (*pakgo.Reader, []core.Pointer) {
	b.Helper()

	bl := pakgo.NewBuilder(opts...)
	ptrs := make([]core.Pointer, len(docs))
	for i, d := range docs {
		ptr, err := bl.Pak(d)
		if err != nil {
			b.Fatalf("pak doc %d: %v", i, err)
		}
		ptrs[i] = ptr
	}

	r, err := bl.FinalizeToMemory()
	if err != nil {
		b.Fatalf("finalize: %v", err)
	}
	b.Cleanup(func() { r.Close() })
	return r, ptrs
}

func sizeName(n int) string {
	switch n {
	case sizeSmall:
		return "1k"
	case sizeMedium:
		return "10k"
	case sizeLarge:
		return "100k"
	default:
		return "custom"
	}
}
