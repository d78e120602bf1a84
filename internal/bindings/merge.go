package bindings

import (
	"sort"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Compatible reports whether a and b agree on every variable bound in both.
// Variables bound in only one of them never conflict.
func Compatible(a, b Bindings) bool {
	small, large := a, b
	if len(small.m) > len(large.m) {
		small, large = large, small
	}
	for k, x := range small.m {
		if y, ok := large.m[k]; ok && !rdf.Equal(x, y) {
			return false
		}
	}
	return true
}

// Merge returns the union of b and o if they are compatible.
// The boolean is false, and the result empty, when they conflict.
func (b Bindings) Merge(o Bindings) (Bindings, bool) {
	if !Compatible(b, o) {
		return Bindings{}, false
	}
	if len(o.m) == 0 {
		return b, true
	}
	if len(b.m) == 0 {
		return o, true
	}
	out := make(map[string]rdf.Term, len(b.m)+len(o.m))
	for k, x := range b.m {
		out[k] = x
	}
	for k, x := range o.m {
		out[k] = x
	}
	return Bindings{m: out}, true
}

// SharedVariables returns the variables bound in both a and b, sorted.
func SharedVariables(a, b Bindings) []string {
	var shared []string
	for k := range a.m {
		if _, ok := b.m[k]; ok {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	return shared
}

// HasAny reports whether at least one of vars is bound in b.
func (b Bindings) HasAny(vars []string) bool {
	for _, v := range vars {
		if _, ok := b.m[v]; ok {
			return true
		}
	}
	return false
}
