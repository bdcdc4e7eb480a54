// Package query implements boolean predicate queries over the indices of a
// pak artifact.
//
// A Query is an immutable binary tree: Predicate leaves combined by And/Or
// nodes. Construction never touches an artifact; evaluation walks the tree
// against a Source and merges ordered pointer sets, so boolean laws
// (commutativity, associativity, distributivity) hold exactly.
package query

import (
	"fmt"
	"strings"

	"github.com/hupe1980/pakgo/index"
	"github.com/hupe1980/pakgo/value"
)

// Predicate is a single (key, operator, value) comparison leaf.
type Predicate struct {
	Key   string
	Op    index.Operator
	Value value.Value
}

// String returns a readable form such as `age lt int(28)`.
func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Key, p.Op, p.Value.GoString())
}

type boolOp uint8

const (
	opAnd boolOp = iota + 1
	opOr
)

type node struct {
	pred        *Predicate
	op          boolOp
	left, right *node
}

// Query is an immutable boolean predicate tree. The zero Query is invalid and
// fails evaluation; build queries with the predicate constructors and combine
// them with And/Or.
type Query struct {
	root *node
}

// Equals matches records whose indexed value under key equals v.
func Equals(key string, v value.Value) Query {
	return leaf(key, index.OpEqual, v)
}

// LessThan matches records whose indexed value under key is less than v.
func LessThan(key string, v value.Value) Query {
	return leaf(key, index.OpLessThan, v)
}

// LessThanOrEqual matches records whose indexed value under key is at most v.
func LessThanOrEqual(key string, v value.Value) Query {
	return leaf(key, index.OpLessOrEqual, v)
}

// GreaterThan matches records whose indexed value under key is greater than v.
func GreaterThan(key string, v value.Value) Query {
	return leaf(key, index.OpGreaterThan, v)
}

// GreaterThanOrEqual matches records whose indexed value under key is at
// least v.
func GreaterThanOrEqual(key string, v value.Value) Query {
	return leaf(key, index.OpGreaterOrEqual, v)
}

func leaf(key string, op index.Operator, v value.Value) Query {
	return Query{root: &node{pred: &Predicate{Key: key, Op: op, Value: v}}}
}

// And returns a query matching records that satisfy both q and other.
func (q Query) And(other Query) Query {
	return Query{root: &node{op: opAnd, left: q.root, right: other.root}}
}

// Or returns a query matching records that satisfy q, other, or both.
func (q Query) Or(other Query) Query {
	return Query{root: &node{op: opOr, left: q.root, right: other.root}}
}

// String renders the tree with explicit grouping, e.g.
// `(name eq string("John") OR age lt int(28))`.
func (q Query) String() string {
	var sb strings.Builder
	writeNode(&sb, q.root)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *node) {
	switch {
	case n == nil:
		sb.WriteString("<empty>")
	case n.pred != nil:
		sb.WriteString(n.pred.String())
	default:
		sb.WriteByte('(')
		writeNode(sb, n.left)
		if n.op == opAnd {
			sb.WriteString(" AND ")
		} else {
			sb.WriteString(" OR ")
		}
		writeNode(sb, n.right)
		sb.WriteByte(')')
	}
}
