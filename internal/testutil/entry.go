package testutil

import (
	"sort"
	"strings"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/rdf"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// Row builds bindings from alternating variable names and term strings,
// e.g. Row("x", "<http://ex/a>", "n", "1"). It panics on malformed terms.
func Row(pairs ...string) bindings.Bindings {
	if len(pairs)%2 != 0 {
		panic("testutil.Row: odd number of arguments")
	}
	b := bindings.New()
	for i := 0; i < len(pairs); i += 2 {
		b = b.Set(pairs[i], rdf.MustParse(pairs[i+1]))
	}
	return b
}

// Vars builds variables from names. A trailing "?" marks a variable that
// can be unbound: Vars("x", "y?").
func Vars(names ...string) []metadata.Variable {
	vars := make([]metadata.Variable, len(names))
	for i, n := range names {
		if strings.HasSuffix(n, "?") {
			vars[i] = metadata.Variable{Name: strings.TrimSuffix(n, "?"), CanBeUndef: true}
			continue
		}
		vars[i] = metadata.Variable{Name: n}
	}
	return vars
}

// EntrySpec describes an in-memory join entry.
type EntrySpec struct {
	Name        string
	Cardinality metadata.Cardinality
	Variables   []metadata.Variable
	RequestTime float64
	Rows        []bindings.Bindings
	// Stream overrides Rows as the entry's data when set.
	Stream stream.Stream
}

// Entry builds a join entry from spec. The returned TrackedStream observes
// the entry's stream; the metadata has a fresh ValidationState.
func Entry(spec EntrySpec) (join.Entry, *TrackedStream) {
	src := spec.Stream
	if src == nil {
		src = stream.FromSlice(spec.Rows...)
	}
	tracked := Track(src)
	md := &metadata.Metadata{
		State:       metadata.NewValidationState(),
		Cardinality: spec.Cardinality,
		Variables:   spec.Variables,
		RequestTime: spec.RequestTime,
	}
	return join.Entry{
		Operation: spec.Name,
		Output: join.Output{
			Stream:   tracked,
			Metadata: metadata.Static(md),
		},
	}, tracked
}

// ExactEntry builds an entry whose cardinality is exactly len(rows) and
// whose variables are vars.
func ExactEntry(name string, vars []metadata.Variable, rows ...bindings.Bindings) (join.Entry, *TrackedStream) {
	return Entry(EntrySpec{
		Name:        name,
		Cardinality: metadata.ExactCardinality(float64(len(rows))),
		Variables:   vars,
		Rows:        rows,
	})
}

// Canonical renders rows as sorted strings so result multisets compare
// independently of emission order.
func Canonical(rows []bindings.Bindings) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String()
	}
	sort.Strings(out)
	return out
}

// FixedIDGenerator returns the same join ID every time.
//
// Thread-safety: stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id, or "test-join" when
// id is empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-join"
	}
	return &FixedIDGenerator{id: id}
}

// Generate implements join.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
