package bindingsindex

import (
	"strings"

	"github.com/comunica/comunica-sub013/internal/bindings"
)

// Def is a flat hash index for inputs whose key variables are always bound.
// Unbound keys hash like any other position, so lookups are exact matches.
type Def[V any] struct {
	keys  []string
	data  map[string]V
	order []string
}

// NewDef creates an empty index over keys.
func NewDef[V any](keys []string) *Def[V] {
	return &Def[V]{keys: append([]string{}, keys...), data: make(map[string]V)}
}

func (ix *Def[V]) hash(b bindings.Bindings) string {
	var sb strings.Builder
	for i, k := range ix.keys {
		if i > 0 {
			sb.WriteByte(0)
		}
		sb.WriteString(hashTerm(b.Get(k)))
	}
	return sb.String()
}

func (ix *Def[V]) Put(b bindings.Bindings, v V) V {
	if !bindsAnyKey(b, ix.keys) {
		return v
	}
	h := ix.hash(b)
	if _, ok := ix.data[h]; !ok {
		ix.order = append(ix.order, h)
	}
	ix.data[h] = v
	return v
}

func (ix *Def[V]) Get(b bindings.Bindings) []V {
	v, ok := ix.GetFirst(b, true)
	if !ok {
		return nil
	}
	return []V{v}
}

// GetFirst ignores matchUndefsAsWildcard; Def never stores undefined keys.
func (ix *Def[V]) GetFirst(b bindings.Bindings, _ bool) (V, bool) {
	if !bindsAnyKey(b, ix.keys) {
		var zero V
		return zero, false
	}
	v, ok := ix.data[ix.hash(b)]
	return v, ok
}

func (ix *Def[V]) Values() []V {
	out := make([]V, 0, len(ix.order))
	for _, h := range ix.order {
		out = append(out, ix.data[h])
	}
	return out
}

func (ix *Def[V]) Len() int {
	return len(ix.order)
}
