package query

import (
	"errors"

	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/index"
)

// ErrEmptyQuery is returned when a zero Query is evaluated.
var ErrEmptyQuery = errors.New("query: empty query")

// Source resolves key names to their indices. The boolean result
// distinguishes "key never indexed" (matches nothing, not an error) from a
// resolution failure.
type Source interface {
	Index(key string) (*index.Index, bool, error)
}

// Evaluate walks the tree against src and returns the matching pointers as an
// ordered, duplicate-free set (ascending pointer order).
//
// A predicate on a key absent from src yields the empty set. Every other
// failure (kind mismatch, source errors) aborts the whole evaluation.
func (q Query) Evaluate(src Source) ([]core.Pointer, error) {
	if q.root == nil {
		return nil, ErrEmptyQuery
	}
	return evalNode(q.root, src)
}

func evalNode(n *node, src Source) ([]core.Pointer, error) {
	if n == nil {
		return nil, ErrEmptyQuery
	}
	if n.pred != nil {
		return evalPredicate(n.pred, src)
	}

	left, err := evalNode(n.left, src)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(n.right, src)
	if err != nil {
		return nil, err
	}
	if n.op == opAnd {
		return Intersect(left, right), nil
	}
	return Union(left, right), nil
}

func evalPredicate(p *Predicate, src Source) ([]core.Pointer, error) {
	ix, ok, err := src.Index(p.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A key that was never indexed simply matches nothing.
		return nil, nil
	}
	ptrs, err := ix.Lookup(p.Op, p.Value)
	if err != nil {
		return nil, err
	}
	// Lookups return index order (by value, then offset); set algebra needs
	// canonical pointer order.
	return Normalize(ptrs), nil
}
