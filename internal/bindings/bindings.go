// Package bindings implements immutable solution mappings from variable
// names to RDF terms.
package bindings

import (
	"sort"
	"strings"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Bindings is an immutable mapping from variable name (without "?") to term.
// The zero value is an empty mapping and is ready to use.
//
// All mutating operations return a new Bindings and leave the receiver
// untouched, so rows can be shared freely between cursors and indexes.
type Bindings struct {
	m map[string]rdf.Term
}

// New returns an empty Bindings.
func New() Bindings {
	return Bindings{}
}

// FromMap copies m into a new Bindings. Nil terms are dropped.
func FromMap(m map[string]rdf.Term) Bindings {
	if len(m) == 0 {
		return Bindings{}
	}
	out := make(map[string]rdf.Term, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return Bindings{m: out}
}

// Of builds a Bindings from alternating name/term pairs.
// It panics on an odd argument count or a non-string name.
func Of(pairs ...any) Bindings {
	if len(pairs)%2 != 0 {
		panic("bindings.Of: odd number of arguments")
	}
	m := make(map[string]rdf.Term, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("bindings.Of: variable name must be a string")
		}
		term, _ := pairs[i+1].(rdf.Term)
		if term != nil {
			m[name] = term
		}
	}
	return Bindings{m: m}
}

// Get returns the term bound to v, or nil if v is unbound.
func (b Bindings) Get(v string) rdf.Term {
	return b.m[v]
}

// Lookup returns the term bound to v and whether it was bound.
func (b Bindings) Lookup(v string) (rdf.Term, bool) {
	t, ok := b.m[v]
	return t, ok
}

// Has reports whether v is bound.
func (b Bindings) Has(v string) bool {
	_, ok := b.m[v]
	return ok
}

// Len returns the number of bound variables.
func (b Bindings) Len() int {
	return len(b.m)
}

// Set returns a copy of b with v bound to t. A nil t unbinds v.
func (b Bindings) Set(v string, t rdf.Term) Bindings {
	if t == nil {
		return b.Delete(v)
	}
	out := make(map[string]rdf.Term, len(b.m)+1)
	for k, x := range b.m {
		out[k] = x
	}
	out[v] = t
	return Bindings{m: out}
}

// Delete returns a copy of b without v.
func (b Bindings) Delete(v string) Bindings {
	if !b.Has(v) {
		return b
	}
	out := make(map[string]rdf.Term, len(b.m))
	for k, x := range b.m {
		if k != v {
			out[k] = x
		}
	}
	return Bindings{m: out}
}

// Variables returns the bound variable names in sorted order.
func (b Bindings) Variables() []string {
	vars := make([]string, 0, len(b.m))
	for k := range b.m {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	return vars
}

// Range calls fn for each binding in variable order until fn returns false.
func (b Bindings) Range(fn func(v string, t rdf.Term) bool) {
	for _, v := range b.Variables() {
		if !fn(v, b.m[v]) {
			return
		}
	}
}

// Filter returns the bindings for which keep returns true.
func (b Bindings) Filter(keep func(v string, t rdf.Term) bool) Bindings {
	out := make(map[string]rdf.Term, len(b.m))
	for k, x := range b.m {
		if keep(k, x) {
			out[k] = x
		}
	}
	return Bindings{m: out}
}

// Project keeps only the named variables.
func (b Bindings) Project(vars ...string) Bindings {
	out := make(map[string]rdf.Term, len(vars))
	for _, v := range vars {
		if t, ok := b.m[v]; ok {
			out[v] = t
		}
	}
	return Bindings{m: out}
}

// Equal reports whether both mappings bind the same variables to
// term-equal values.
func (b Bindings) Equal(o Bindings) bool {
	if len(b.m) != len(o.m) {
		return false
	}
	for k, x := range b.m {
		y, ok := o.m[k]
		if !ok || !rdf.Equal(x, y) {
			return false
		}
	}
	return true
}

// String renders the bindings as {?x=<a>, ?y="1"} in variable order.
// The form is canonical: equal bindings render identically.
func (b Bindings) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range b.Variables() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('?')
		sb.WriteString(v)
		sb.WriteByte('=')
		sb.WriteString(b.m[v].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
