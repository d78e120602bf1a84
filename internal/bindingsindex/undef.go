package bindingsindex

import (
	"github.com/comunica/comunica-sub013/internal/bindings"
)

// node is one trie level. Children keep insertion order so lookups are
// deterministic.
type node[V any] struct {
	children map[string]*node[V]
	order    []string
	value    V
}

func (n *node[V]) child(h string) *node[V] {
	return n.children[h]
}

func (n *node[V]) addChild(h string) *node[V] {
	if n.children == nil {
		n.children = make(map[string]*node[V])
	}
	c := &node[V]{}
	n.children[h] = c
	n.order = append(n.order, h)
	return c
}

// Undef is a trie with one level per key variable. Each level branches on
// the hash of the term the row binds for that key, with unbound keys stored
// under the wildcard branch.
//
// A concrete probe term follows both its own branch and the wildcard branch;
// an unbound probe position follows every branch. Get therefore returns
// exactly the values whose keys are compatible with the probe.
//
// Not safe for concurrent mutation.
type Undef[V any] struct {
	keys []string
	root *node[V]
	size int
}

// NewUndef creates an empty trie over keys.
func NewUndef[V any](keys []string) *Undef[V] {
	return &Undef[V]{keys: append([]string{}, keys...), root: &node[V]{}}
}

// Put stores v at the leaf for b's key terms, replacing any earlier value
// under the same key.
func (ix *Undef[V]) Put(b bindings.Bindings, v V) V {
	if !bindsAnyKey(b, ix.keys) {
		return v
	}
	n := ix.root
	for i, key := range ix.keys {
		h := hashTerm(b.Get(key))
		next := n.child(h)
		if next == nil {
			next = n.addChild(h)
			if i == len(ix.keys)-1 {
				ix.size++
			}
		}
		n = next
	}
	n.value = v
	return v
}

// Get returns every value stored under a key compatible with b.
// It returns nil when b binds no key variable.
func (ix *Undef[V]) Get(b bindings.Bindings) []V {
	if !bindsAnyKey(b, ix.keys) {
		return nil
	}
	return ix.collect(b, 0, ix.root, nil)
}

func (ix *Undef[V]) collect(b bindings.Bindings, depth int, n *node[V], out []V) []V {
	if depth == len(ix.keys) {
		return append(out, n.value)
	}
	h := hashTerm(b.Get(ix.keys[depth]))
	if h == wildcard {
		for _, k := range n.order {
			out = ix.collect(b, depth+1, n.children[k], out)
		}
		return out
	}
	if c := n.child(h); c != nil {
		out = ix.collect(b, depth+1, c, out)
	}
	if c := n.child(wildcard); c != nil {
		out = ix.collect(b, depth+1, c, out)
	}
	return out
}

// GetFirst returns the first value found depth-first.
//
// With matchUndefsAsWildcard set the match rule is the same as Get. Without
// it, a concrete probe term only follows its own branch and an unbound probe
// position only follows the wildcard branch.
func (ix *Undef[V]) GetFirst(b bindings.Bindings, matchUndefsAsWildcard bool) (V, bool) {
	if !bindsAnyKey(b, ix.keys) {
		var zero V
		return zero, false
	}
	return ix.first(b, 0, ix.root, matchUndefsAsWildcard)
}

func (ix *Undef[V]) first(b bindings.Bindings, depth int, n *node[V], wild bool) (V, bool) {
	if depth == len(ix.keys) {
		return n.value, true
	}
	h := hashTerm(b.Get(ix.keys[depth]))

	var branches []string
	switch {
	case h != wildcard && wild:
		branches = []string{h, wildcard}
	case h != wildcard:
		branches = []string{h}
	case wild:
		branches = n.order
	default:
		branches = []string{wildcard}
	}

	for _, k := range branches {
		c := n.child(k)
		if c == nil {
			continue
		}
		if v, ok := ix.first(b, depth+1, c, wild); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Values returns every stored value in insertion order.
func (ix *Undef[V]) Values() []V {
	if len(ix.keys) == 0 {
		return nil
	}
	out := make([]V, 0, ix.size)
	return ix.all(0, ix.root, out)
}

func (ix *Undef[V]) all(depth int, n *node[V], out []V) []V {
	if depth == len(ix.keys) {
		return append(out, n.value)
	}
	for _, k := range n.order {
		out = ix.all(depth+1, n.children[k], out)
	}
	return out
}

// Len returns the number of distinct keys stored.
func (ix *Undef[V]) Len() int {
	return ix.size
}
