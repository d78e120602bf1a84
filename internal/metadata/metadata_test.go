package metadata

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestMetadata(card Cardinality, vars ...Variable) *Metadata {
	return &Metadata{State: NewValidationState(), Cardinality: card, Variables: vars}
}

func TestValidationStateFiresOnce(t *testing.T) {
	s := NewValidationState()
	require.True(t, s.Valid())

	var calls int
	s.AddInvalidateListener(func() { calls++ })
	s.AddInvalidateListener(func() { calls++ })

	s.Invalidate()
	s.Invalidate()

	assert.False(t, s.Valid())
	assert.Equal(t, 2, calls)
}

func TestValidationStateLateListener(t *testing.T) {
	s := NewValidationState()
	s.Invalidate()

	fired := false
	s.AddInvalidateListener(func() { fired = true })
	assert.True(t, fired)
}

func TestValidationStateConcurrent(t *testing.T) {
	s := NewValidationState()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddInvalidateListener(func() { calls.Add(1) })
		}()
		go func() {
			defer wg.Done()
			s.Invalidate()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), calls.Load())
}

func TestChain(t *testing.T) {
	a, b := NewValidationState(), NewValidationState()
	chained := Chain(a, nil, b)
	require.True(t, chained.Valid())

	b.Invalidate()
	assert.False(t, chained.Valid())
	assert.True(t, a.Valid())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		md      *Metadata
		wantErr bool
	}{
		{"valid", makeTestMetadata(ExactCardinality(3), Variables("x", "y")...), false},
		{"nil", nil, true},
		{"no state", &Metadata{Cardinality: ExactCardinality(1)}, true},
		{"negative cardinality", makeTestMetadata(EstimateCardinality(-1)), true},
		{"nan cardinality", makeTestMetadata(EstimateCardinality(math.NaN())), true},
		{"infinite cardinality", makeTestMetadata(EstimateCardinality(math.Inf(1))), false},
		{"duplicate variable", makeTestMetadata(ExactCardinality(1), Variables("x", "x")...), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.md.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductCardinality(t *testing.T) {
	assert.Equal(t, ExactCardinality(1), ProductCardinality())
	assert.Equal(t, ExactCardinality(4), ProductCardinality(makeTestMetadata(ExactCardinality(4))))
	assert.Equal(t, EstimateCardinality(12), ProductCardinality(
		makeTestMetadata(ExactCardinality(3)),
		makeTestMetadata(EstimateCardinality(4)),
	))
	assert.Equal(t, ExactCardinality(0), ProductCardinality(
		makeTestMetadata(EstimateCardinality(math.Inf(1))),
		makeTestMetadata(ExactCardinality(0)),
	))
}

func TestUnionAndSharedVariables(t *testing.T) {
	left := makeTestMetadata(ExactCardinality(1), Variable{Name: "x"}, Variable{Name: "y", CanBeUndef: true})
	right := makeTestMetadata(ExactCardinality(1), Variable{Name: "y"}, Variable{Name: "z"})

	assert.Equal(t, []Variable{
		{Name: "x"},
		{Name: "y", CanBeUndef: true},
		{Name: "z"},
	}, UnionVariables(left, right))

	assert.Equal(t, []string{"y"}, SharedVariables(left, right))
	assert.Nil(t, SharedVariables(left))
	assert.True(t, AnyUndef([]string{"y"}, left, right))
	assert.False(t, AnyUndef([]string{"x", "z"}, left, right))
}

func TestCacheRefetchesAfterInvalidation(t *testing.T) {
	var fetches atomic.Int32
	var current *Metadata
	c := NewCache(func(context.Context) (*Metadata, error) {
		fetches.Add(1)
		current = makeTestMetadata(ExactCardinality(float64(fetches.Load())))
		return current, nil
	})

	ctx := context.Background()
	first, err := c.Get(ctx)
	require.NoError(t, err)
	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int32(1), fetches.Load())

	first.State.Invalidate()

	fresh, err := c.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 2.0, fresh.Cardinality.Value)
}

func TestCacheRejectsInvalidMetadata(t *testing.T) {
	c := NewCache(func(context.Context) (*Metadata, error) {
		return &Metadata{Cardinality: ExactCardinality(1)}, nil
	})
	_, err := c.Get(context.Background())
	assert.Error(t, err)
}

func TestCachePropagatesFetchError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCache(func(context.Context) (*Metadata, error) { return nil, boom })
	_, err := c.Accessor()(context.Background())
	assert.ErrorIs(t, err, boom)
}
