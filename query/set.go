package query

import (
	"sort"

	"github.com/hupe1980/pakgo/core"
)

// Pointer sets are ordered, duplicate-free slices in ascending pointer order.
// Union and Intersect are two-finger merges over such sets, O(n+m), and their
// results are again canonical sets.

// Normalize sorts ptrs into canonical order and drops duplicates. The input
// slice is sorted in place.
func Normalize(ptrs []core.Pointer) []core.Pointer {
	if len(ptrs) < 2 {
		return ptrs
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i].Less(ptrs[j]) })

	out := ptrs[:1]
	for _, p := range ptrs[1:] {
		if p.Compare(out[len(out)-1]) != 0 {
			out = append(out, p)
		}
	}
	return out
}

// Union merges two canonical sets into their canonical union.
func Union(a, b []core.Pointer) []core.Pointer {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	out := make([]core.Pointer, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := a[i].Compare(b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Intersect merges two canonical sets into their canonical intersection.
func Intersect(a, b []core.Pointer) []core.Pointer {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	var out []core.Pointer
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := a[i].Compare(b[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
