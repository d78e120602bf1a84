package algebra

import (
	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// ParsePattern reads a pattern written as three or four whitespace
// separated terms, e.g. "?s <http://ex/p> ?o" or "?s ?p ?o ?g".
func ParsePattern(s string) (*Pattern, error) {
	terms, err := rdf.ParseTerms(s)
	if err != nil {
		return nil, errors.Wrapf(err, "pattern %q", s)
	}
	if len(terms) != 3 && len(terms) != 4 {
		return nil, errors.Newf("pattern %q: expected 3 or 4 terms, got %d", s, len(terms))
	}
	p := &Pattern{Subject: terms[0], Predicate: terms[1], Object: terms[2]}
	if len(terms) == 4 {
		p.Graph = terms[3]
	}
	if res := Validate(p); !res.Valid {
		return nil, errors.Newf("pattern %q: %s", s, res.Problems[0])
	}
	return p, nil
}
