package bindingsindex

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// parseRow reads "x=<a> y=1" into bindings. An empty line is the empty row.
func parseRow(t *testing.T, line string) bindings.Bindings {
	t.Helper()
	row := bindings.New()
	for _, field := range strings.Fields(line) {
		name, term, ok := strings.Cut(field, "=")
		require.True(t, ok, "malformed binding %q", field)
		row = row.Set(name, rdf.MustParse(term))
	}
	return row
}

func formatValues(vals []string) string {
	if len(vals) == 0 {
		return "<none>"
	}
	return strings.Join(vals, " ")
}

// TestIndexDataDriven runs the scripts under testdata. Commands:
//
//	new keys=(x,y) [undef]    create an Undef (or Def) index
//	put value=v1              store v1 under the row on the input line
//	get                       Get for the row on the input line
//	get-first [wildcard]      GetFirst for the row on the input line
//	values                    Values
func TestIndexDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var ix Index[string]
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "new":
				var keys []string
				d.ScanArgs(t, "keys", &keys)
				ix = New[string](keys, d.HasArg("undef"))
				switch ix.(type) {
				case *Undef[string]:
					return "trie"
				default:
					return "map"
				}
			case "put":
				var value string
				d.ScanArgs(t, "value", &value)
				return ix.Put(parseRow(t, d.Input), value)
			case "get":
				return formatValues(ix.Get(parseRow(t, d.Input)))
			case "get-first":
				v, ok := ix.GetFirst(parseRow(t, d.Input), d.HasArg("wildcard"))
				if !ok {
					return "<none>"
				}
				return v
			case "values":
				return formatValues(ix.Values())
			case "len":
				return fmt.Sprint(ix.Len())
			default:
				d.Fatalf(t, "unknown command %s", d.Cmd)
				return ""
			}
		})
	})
}

func TestPutThenGetIncludesValue(t *testing.T) {
	rows := []bindings.Bindings{
		bindings.Of("x", rdf.NamedNode("a")),
		bindings.Of("y", rdf.NamedNode("b")),
		bindings.Of("x", rdf.NamedNode("a"), "y", rdf.NamedNode("b")),
		bindings.Of("x", rdf.NamedNode("c"), "z", rdf.NamedNode("d")),
	}
	for _, undef := range []bool{true, false} {
		ix := New[int]([]string{"x", "y"}, undef)
		for i, row := range rows {
			ix.Put(row, i)
			assert.Contains(t, ix.Get(row), i, "undef=%v row %s", undef, row)
		}
	}
}

func TestNoKeyVariablesIsNoop(t *testing.T) {
	ix := NewUndef[string]([]string{"x"})
	assert.Equal(t, "v", ix.Put(bindings.Of("y", rdf.NamedNode("a")), "v"))
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Values())
	assert.Nil(t, ix.Get(bindings.Of("y", rdf.NamedNode("a"))))

	_, ok := ix.GetFirst(bindings.New(), true)
	assert.False(t, ok)
}

func TestVariableTermsHashAsWildcard(t *testing.T) {
	ix := NewUndef[string]([]string{"x", "y"})
	ix.Put(bindings.Of("x", rdf.Variable("x"), "y", rdf.NamedNode("b")), "v")

	assert.Equal(t, []string{"v"}, ix.Get(bindings.Of("x", rdf.NamedNode("a"), "y", rdf.NamedNode("b"))))
}

func TestEmptyKeyList(t *testing.T) {
	ix := NewUndef[string](nil)
	ix.Put(bindings.Of("x", rdf.NamedNode("a")), "v")
	assert.Equal(t, 0, ix.Len())
	assert.Nil(t, ix.Values())
}

func TestDefaultGraphIsNotWildcard(t *testing.T) {
	row := bindings.Of("g", rdf.DefaultGraph{}, "s", rdf.NamedNode("s1"))
	for _, undef := range []bool{true, false} {
		ix := New[string]([]string{"g"}, undef)
		ix.Put(row, "v")
		assert.Equal(t, 1, ix.Len(), "undef=%v", undef)
		assert.Equal(t, []string{"v"}, ix.Get(bindings.Of("g", rdf.DefaultGraph{})), "undef=%v", undef)
		assert.Nil(t, ix.Get(bindings.Of("g", rdf.NamedNode("g1"))), "undef=%v", undef)
	}
}
