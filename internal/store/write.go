package store

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Quad is a stored statement. A nil Graph means the default graph.
type Quad struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Graph     rdf.Term
}

// Insert adds quads in one transaction and returns how many were new.
// Duplicates are silently ignored. When anything was added, metadata
// handed out before the call is invalidated.
func (s *Store) Insert(ctx context.Context, quads ...Quad) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "insert quads")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quads (subject, predicate, object, graph)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, errors.Wrap(err, "insert quads")
	}
	defer stmt.Close()

	added := 0
	for i, q := range quads {
		g := q.Graph
		if g == nil {
			g = rdf.DefaultGraph{}
		}
		cols := make([]any, 4)
		for j, t := range []rdf.Term{q.Subject, q.Predicate, q.Object, g} {
			v, err := encodeTerm(t)
			if err != nil {
				return 0, errors.Wrapf(err, "quad %d", i)
			}
			cols[j] = v
		}
		res, err := stmt.ExecContext(ctx, cols...)
		if err != nil {
			return 0, errors.Wrapf(err, "insert quad %d", i)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "insert quads")
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit quads")
	}
	if added > 0 {
		s.invalidate()
		s.logger.Debug("quads inserted", "added", added, "given", len(quads))
	}
	return added, nil
}

// ParseQuads reads one statement per line: three or four terms, with an
// optional trailing ".". Blank lines and lines starting with "#" are
// skipped.
func ParseQuads(r io.Reader) ([]Quad, error) {
	var quads []Quad
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		terms, err := rdf.ParseTerms(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(terms) != 3 && len(terms) != 4 {
			return nil, errors.Newf("line %d: expected 3 or 4 terms, got %d", line, len(terms))
		}
		q := Quad{Subject: terms[0], Predicate: terms[1], Object: terms[2]}
		if len(terms) == 4 {
			q.Graph = terms[3]
		}
		quads = append(quads, q)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read quads")
	}
	return quads, nil
}
