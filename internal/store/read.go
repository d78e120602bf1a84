package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/querysql"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// Count returns how many quads match p.
func (s *Store) Count(ctx context.Context, p *algebra.Pattern) (int64, error) {
	q, err := querysql.Compile(p)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, q)
}

func (s *Store) count(ctx context.Context, q *querysql.Query) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, q.CountSQL, q.Params...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count quads")
	}
	return n, nil
}

// Entry returns a join entry matching p.
//
// Nothing is queried until the stream is pulled or the metadata is read.
// The stream runs the query under ctx; closing it cancels the query.
func (s *Store) Entry(ctx context.Context, p *algebra.Pattern) (join.Entry, error) {
	q, err := querysql.Compile(p)
	if err != nil {
		return join.Entry{}, err
	}

	vars := make([]metadata.Variable, len(q.Variables))
	for i, name := range q.Variables {
		vars[i] = metadata.Variable{Name: name}
	}

	cache := metadata.NewCache(func(ctx context.Context) (*metadata.Metadata, error) {
		// State first: an insert racing the count must invalidate the result.
		state := s.currentState()
		n, err := s.count(ctx, q)
		if err != nil {
			return nil, err
		}
		return &metadata.Metadata{
			State:       state,
			Cardinality: metadata.ExactCardinality(float64(n)),
			Variables:   vars,
		}, nil
	})

	return join.Entry{
		Operation: p,
		Output: join.Output{
			Stream: stream.Produce(ctx, func(ctx context.Context, emit func(bindings.Bindings) error) error {
				return s.scan(ctx, q, emit)
			}),
			Metadata: cache.Get,
		},
	}, nil
}

// scan runs q and emits one row per matching quad.
func (s *Store) scan(ctx context.Context, q *querysql.Query, emit func(bindings.Bindings) error) error {
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return errors.Wrap(err, "query quads")
	}
	defer rows.Close()

	cols := make([]string, len(q.Variables))
	dest := make([]any, len(cols)+1)
	var id int64
	dest[0] = &id
	for i := range cols {
		dest[i+1] = &cols[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, "scan quad")
		}
		row := bindings.New()
		for i, name := range q.Variables {
			t, err := decodeTerm(cols[i])
			if err != nil {
				return errors.Wrapf(err, "quad %d", id)
			}
			row = row.Set(name, t)
		}
		if err := emit(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate quads")
	}
	return nil
}
