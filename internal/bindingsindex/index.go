// Package bindingsindex indexes values by the terms a row binds for a fixed
// list of key variables.
//
// Two implementations exist. Def is a flat hash map for inputs where every
// key variable is always bound. Undef is a trie that treats unbound key
// variables as wildcards, so a probe finds every stored row it is compatible
// with on the key variables.
package bindingsindex

import (
	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Index maps the key-variable terms of rows to values of type V.
type Index[V any] interface {
	// Put stores v under b's key terms and returns v. Rows that bind none
	// of the key variables are not indexed.
	Put(b bindings.Bindings, v V) V
	// Get returns every value whose stored key is compatible with b.
	Get(b bindings.Bindings) []V
	// GetFirst returns the first matching value. With matchUndefsAsWildcard
	// false only a stored key with exactly the same bound and unbound
	// positions matches.
	GetFirst(b bindings.Bindings, matchUndefsAsWildcard bool) (V, bool)
	// Values returns every stored value in insertion order.
	Values() []V
	// Len returns the number of stored keys.
	Len() int
}

// New returns an Undef trie when canHaveUndefs is set and a Def map otherwise.
func New[V any](keys []string, canHaveUndefs bool) Index[V] {
	if canHaveUndefs {
		return NewUndef[V](keys)
	}
	return NewDef[V](keys)
}

// wildcard is the hash of an unbound key variable.
const wildcard = ""

// defaultGraphHash stands in for the default graph, whose canonical form is
// empty. No canonical term starts with '@'.
const defaultGraphHash = "@default"

// hashTerm maps a term to its bucket key. Unbound positions and variables
// share the wildcard bucket; every other term hashes to a non-empty string.
func hashTerm(t rdf.Term) string {
	switch t.(type) {
	case nil, rdf.Variable:
		return wildcard
	case rdf.DefaultGraph:
		return defaultGraphHash
	}
	return t.String()
}

// bindsAnyKey reports whether b contains at least one key variable, bound
// to any term including a variable.
func bindsAnyKey(b bindings.Bindings, keys []string) bool {
	return b.HasAny(keys)
}
