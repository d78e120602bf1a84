package join

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/comunica/comunica-sub013/internal/metadata"
)

// Unbounded lifts the upper limit on the entry count.
const Unbounded = -1

// Descriptor holds the declarative gates every strategy shares: logical
// type, accepted entry count, and whether it needs shared variables or can
// handle key variables that may be unbound.
//
// Strategies hold a Descriptor and call Gate from their Test method; the
// gate resolves the entry metadata, so strategy-specific checks and the
// cost formula only see well-formed inputs.
type Descriptor struct {
	Name       string
	Type       LogicalType
	MinEntries int
	MaxEntries int

	// RequiresSharedVariables rejects entries with no variable in common.
	RequiresSharedVariables bool

	// CanHandleUndefs allows shared variables that may be unbound.
	CanHandleUndefs bool
}

// Gate checks the action against the descriptor. It returns the resolved
// metadata when the action passes, or a failed TestResult when it does not.
// An error means metadata could not be resolved.
func (d Descriptor) Gate(ctx context.Context, a *Action) ([]*metadata.Metadata, *TestResult, error) {
	if a.Type != d.Type {
		fail := Fail(CodeWrongJoinType, "%s handles %s joins, got %s", d.Name, d.Type, a.Type)
		return nil, &fail, nil
	}
	n := len(a.Entries)
	if n < d.MinEntries || (d.MaxEntries != Unbounded && n > d.MaxEntries) {
		fail := Fail(CodeInvalidEntryCount, "%s requires %s entries, got %d", d.Name, d.entryRange(), n)
		return nil, &fail, nil
	}

	mds, err := Metadatas(ctx, a.Entries)
	if err != nil {
		return nil, nil, err
	}

	if d.RequiresSharedVariables || !d.CanHandleUndefs {
		shared := metadata.SharedVariables(mds...)
		if d.RequiresSharedVariables && len(shared) == 0 {
			fail := Fail(CodeNoSharedVariables, "%s requires shared variables", d.Name)
			return nil, &fail, nil
		}
		if !d.CanHandleUndefs && metadata.AnyUndef(shared, mds...) {
			fail := Fail(CodeUndefNotSupported, "%s cannot join on variables that may be unbound", d.Name)
			return nil, &fail, nil
		}
	}
	return mds, nil, nil
}

func (d Descriptor) entryRange() string {
	switch {
	case d.MaxEntries == Unbounded:
		return fmt.Sprintf("at least %d", d.MinEntries)
	case d.MinEntries == d.MaxEntries:
		return fmt.Sprintf("exactly %d", d.MinEntries)
	default:
		return fmt.Sprintf("%d to %d", d.MinEntries, d.MaxEntries)
	}
}

// Metadatas resolves the metadata of every entry concurrently.
func Metadatas(ctx context.Context, entries []Entry) ([]*metadata.Metadata, error) {
	for i, e := range entries {
		if e.Output.Metadata == nil {
			return nil, NewInvalidInputError("entry %d has no metadata", i)
		}
	}
	mds := make([]*metadata.Metadata, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			md, err := e.Output.Metadata(gctx)
			if err != nil {
				return errors.Wrapf(err, "entry %d metadata", i)
			}
			if err := md.Validate(); err != nil {
				return errors.Mark(errors.Wrapf(err, "entry %d", i), ErrInvalidInput)
			}
			mds[i] = md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mds, nil
}

// Cardinalities returns the cardinality values of mds.
func Cardinalities(mds []*metadata.Metadata) []float64 {
	out := make([]float64, len(mds))
	for i, md := range mds {
		out[i] = md.Cardinality.Value
	}
	return out
}
