package store

import (
	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// encodeTerm converts a concrete term to its column text.
// The default graph is stored as the empty string.
func encodeTerm(t rdf.Term) (string, error) {
	switch t.(type) {
	case nil:
		return "", errors.New("missing term")
	case rdf.Variable:
		return "", errors.Newf("cannot store variable %s", t)
	}
	return t.String(), nil
}

// decodeTerm parses column text back into a term.
func decodeTerm(s string) (rdf.Term, error) {
	if s == "" {
		return rdf.DefaultGraph{}, nil
	}
	t, err := rdf.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "decode stored term %q", s)
	}
	return t, nil
}
