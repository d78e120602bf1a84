// Package querysql compiles quad patterns to parameterized SQL over the
// quad store's quads table.
package querysql

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Columns of the quads table, in pattern position order.
var Columns = [4]string{"subject", "predicate", "object", "graph"}

// Query is a compiled pattern.
type Query struct {
	// SQL selects the row id followed by one column per variable.
	SQL string

	// CountSQL counts the matching rows.
	CountSQL string

	// Params holds the values of the ? placeholders of both statements.
	Params []any

	// Variables names the selected columns after id, in order.
	Variables []string
}

// Compile converts a pattern to parameterized SQL.
//
// MANDATORY: every query orders by id so results are deterministic.
// MANDATORY: term values are parameterized, never interpolated.
//
// Terms are matched by their canonical string form. A variable repeated in
// several positions constrains those columns to be equal. A nil graph
// matches the default graph only; a graph variable matches named graphs
// only.
func Compile(p *algebra.Pattern) (*Query, error) {
	if p == nil {
		return nil, errors.New("cannot compile nil pattern")
	}
	if res := algebra.Validate(p); !res.Valid {
		return nil, errors.Newf("invalid pattern: %s", strings.Join(res.Problems, "; "))
	}

	var (
		where  []string
		params []any
		vars   []string
		cols   []string
		first  = make(map[string]string)
	)
	for i, t := range p.Terms() {
		col := Columns[i]
		v, isVar := t.(rdf.Variable)
		if !isVar {
			where = append(where, col+" = ?")
			params = append(params, t.String())
			continue
		}
		if col == "graph" {
			where = append(where, "graph <> ''")
		}
		if prev, ok := first[string(v)]; ok {
			where = append(where, fmt.Sprintf("%s = %s", col, prev))
			continue
		}
		first[string(v)] = col
		vars = append(vars, string(v))
		cols = append(cols, col)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}
	selectList := strings.Join(append([]string{"id"}, cols...), ", ")

	return &Query{
		SQL:       fmt.Sprintf("SELECT %s FROM quads%s ORDER BY id ASC", selectList, whereClause),
		CountSQL:  fmt.Sprintf("SELECT COUNT(*) FROM quads%s", whereClause),
		Params:    params,
		Variables: vars,
	}, nil
}
