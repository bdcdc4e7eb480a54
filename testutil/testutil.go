package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/pakgo"
	"github.com/hupe1980/pakgo/value"
)

// Doc is the record fixture shared by integration tests and benchmarks. Its
// indexed attributes cover every value kind the query layer distinguishes.
type Doc struct {
	ID       uint64  `json:"id"`
	Category string  `json:"category"`
	Score    int64   `json:"score"`
	Weight   float64 `json:"weight"`
	Flagged  bool    `json:"flagged"`
}

func (d Doc) PakIndices() []pakgo.Attribute {
	return []pakgo.Attribute{
		{Key: "id", Value: value.Uint(d.ID)},
		{Key: "category", Value: value.String(d.Category)},
		{Key: "score", Value: value.Int(d.Score)},
		{Key: "weight", Value: value.Float(d.Weight)},
		{Key: "flagged", Value: value.Bool(d.Flagged)},
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random int64 in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Docs generates n deterministic documents spread over categoryCount
// categories. Category popularity follows a Zipfian distribution, so a few
// categories dominate while most stay selective, which is how real data
// shakes out and what index runs with duplicate-heavy values need.
//
// IDs are sequential from 0; the same seed always yields the same corpus.
func (r *RNG) Docs(n, categoryCount int) []Doc {
	buckets := r.ZipfBuckets(n, categoryCount, 1.5)

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]Doc, n)
	for i := range docs {
		docs[i] = Doc{
			ID:       uint64(i),
			Category: fmt.Sprintf("cat-%02d", buckets[i]),
			Score:    r.rand.Int63n(1000),
			Weight:   r.rand.Float64(),
			Flagged:  r.rand.Float64() < 0.10,
		}
	}
	return docs
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Normalization constant (harmonic number with exponent s).
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform sampling.
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// ZipfBuckets generates n bucket assignments with Zipfian distribution.
// Returns a slice where ~20% of buckets hold ~80% of values (when s=1.5).
func (r *RNG) ZipfBuckets(n, bucketCount int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := make([]int64, n)
	for i := range buckets {
		buckets[i] = int64(r.zipfLocked(bucketCount, s))
	}

	return buckets
}

// BruteForceQuery scans docs linearly and returns the IDs of those satisfying
// match, in corpus order. It is the ground truth an index-backed query must
// reproduce exactly.
func BruteForceQuery(docs []Doc, match func(Doc) bool) []uint64 {
	var out []uint64
	for _, d := range docs {
		if match(d) {
			out = append(out, d.ID)
		}
	}
	return out
}
