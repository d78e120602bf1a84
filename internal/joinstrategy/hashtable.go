package joinstrategy

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/bindingsindex"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// buildRow is a build-side row plus whether any probe matched it.
type buildRow struct {
	row     bindings.Bindings
	matched bool
}

// bucket groups build rows with identical key terms.
type bucket struct {
	rows []*buildRow
}

// hashTable is the build side of a hash join.
//
// Rows are grouped per exact key shape in a bindingsindex.Index. Rows that
// bind none of the key variables cannot be indexed; they are kept in
// unkeyed and offered to every probe, since an all-unbound key is
// compatible with anything.
type hashTable struct {
	keys     []string
	undefs   bool
	index    bindingsindex.Index[*bucket]
	unkeyed  []*buildRow
	complete bool
	size     int
}

func newHashTable(keys []string, canHaveUndefs bool) *hashTable {
	return &hashTable{
		keys:   keys,
		undefs: canHaveUndefs,
		index:  bindingsindex.New[*bucket](keys, canHaveUndefs),
	}
}

func (t *hashTable) add(row bindings.Bindings) {
	br := &buildRow{row: row}
	t.size++
	if !row.HasAny(t.keys) {
		t.unkeyed = append(t.unkeyed, br)
		return
	}
	if b, ok := t.index.GetFirst(row, false); ok {
		b.rows = append(b.rows, br)
		return
	}
	t.index.Put(row, &bucket{rows: []*buildRow{br}})
}

// fill drains s into the table. It can be called again after a
// cancellation and resumes where it stopped.
func (t *hashTable) fill(ctx context.Context, s stream.Stream) error {
	for !t.complete {
		row, err := s.Next(ctx)
		if errors.Is(err, stream.Done) {
			t.complete = true
			return nil
		}
		if err != nil {
			return err
		}
		t.add(row)
	}
	return nil
}

// candidates returns the build rows whose keys are compatible with probe.
func (t *hashTable) candidates(probe bindings.Bindings) []*buildRow {
	var buckets []*bucket
	if probe.HasAny(t.keys) {
		buckets = t.index.Get(probe)
	} else {
		buckets = t.index.Values()
	}
	var out []*buildRow
	for _, b := range buckets {
		out = append(out, b.rows...)
	}
	return append(out, t.unkeyed...)
}

// contains reports whether some build row has exactly probe's key terms.
func (t *hashTable) contains(probe bindings.Bindings) bool {
	_, ok := t.index.GetFirst(probe, true)
	return ok
}

// all returns every build row, indexed ones first.
func (t *hashTable) all() []*buildRow {
	out := make([]*buildRow, 0, t.size)
	for _, b := range t.index.Values() {
		out = append(out, b.rows...)
	}
	return append(out, t.unkeyed...)
}
