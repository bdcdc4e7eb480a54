// Package testutil provides testing utilities for pakgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic record corpora and
// computing exact query results for verification.
//
// # Corpus Generation
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Docs(10_000, 20) // 10k docs across 20 categories
//
// # Exact Matching (Ground Truth)
//
//	want := testutil.BruteForceQuery(docs, func(d testutil.Doc) bool {
//	    return d.Category == "cat-03" && d.Score < 500
//	})
package testutil
