package join

import (
	"context"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Weights scale each coefficient when scoring a strategy.
type Weights struct {
	Iterations     float64 `json:"iterations"`
	PersistedItems float64 `json:"persisted_items"`
	BlockingItems  float64 `json:"blocking_items"`
	RequestTime    float64 `json:"request_time"`
}

// DefaultWeights weighs every coefficient equally.
func DefaultWeights() Weights {
	return Weights{Iterations: 1, PersistedItems: 1, BlockingItems: 1, RequestTime: 1}
}

// Score is the weighted sum of c. Lower is cheaper.
func (w Weights) Score(c Coefficients) float64 {
	return w.Iterations*c.Iterations +
		w.PersistedItems*c.PersistedItems +
		w.BlockingItems*c.BlockingItems +
		w.RequestTime*c.RequestTime
}

// Candidate is one strategy's test outcome for an action.
type Candidate struct {
	Strategy string     `json:"strategy"`
	Result   TestResult `json:"-"`
	Score    float64    `json:"score"`
}

// Mediator picks the cheapest feasible strategy for each action.
//
// Strategies are tested concurrently; the winner is the feasible one with
// the lowest score, ties going to the strategy registered first.
//
// INVARIANTS:
//   - Registration order never changes after construction
//   - Test never consumes entry streams, so a rejected action is still runnable
type Mediator struct {
	strategies []Strategy
	weights    Weights
	logger     *slog.Logger
}

// MediatorOption configures a Mediator.
type MediatorOption func(*Mediator)

// WithWeights sets the coefficient weights.
func WithWeights(w Weights) MediatorOption {
	return func(m *Mediator) {
		m.weights = w
	}
}

// WithLogger sets the logger used for selection decisions.
func WithLogger(l *slog.Logger) MediatorOption {
	return func(m *Mediator) {
		m.logger = l
	}
}

// NewMediator creates a mediator with no strategies.
func NewMediator(opts ...MediatorOption) *Mediator {
	m := &Mediator{
		weights: DefaultWeights(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register appends strategies in priority order.
func (m *Mediator) Register(strategies ...Strategy) {
	m.strategies = append(m.strategies, strategies...)
}

// Strategies returns the registered strategies in order.
func (m *Mediator) Strategies() []Strategy {
	return append([]Strategy{}, m.strategies...)
}

// Weights returns the configured weights.
func (m *Mediator) Weights() Weights {
	return m.weights
}

// Candidates tests every strategy against a. The returned slice follows
// registration order.
func (m *Mediator) Candidates(ctx context.Context, a *Action) ([]Candidate, error) {
	candidates := make([]Candidate, len(m.strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range m.strategies {
		i, s := i, s
		g.Go(func() error {
			res, err := s.Test(gctx, a)
			if err != nil {
				return errors.Wrapf(err, "test %s", s.Name())
			}
			c := Candidate{Strategy: s.Name(), Result: res, Score: math.Inf(1)}
			if res.Passed() {
				c.Score = m.weights.Score(res.Coefficients)
			}
			candidates[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// Select returns the winning strategy and its candidate, plus every
// candidate for diagnostics.
func (m *Mediator) Select(ctx context.Context, a *Action) (Strategy, Candidate, []Candidate, error) {
	candidates, err := m.Candidates(ctx, a)
	if err != nil {
		return nil, Candidate{}, nil, err
	}

	best := -1
	for i, c := range candidates {
		if !c.Result.Passed() {
			continue
		}
		if best < 0 || c.Score < candidates[best].Score {
			best = i
		}
	}
	if best < 0 {
		return nil, Candidate{}, candidates, NewNoFeasibleStrategyError(a, candidates)
	}
	return m.strategies[best], candidates[best], candidates, nil
}

// Result is a join output plus how it was produced.
type Result struct {
	Output
	Strategy     string
	Coefficients Coefficients
}

// Mediate selects a strategy for a and runs it.
//
// When no strategy is feasible the entries are closed and the returned
// error is marked ErrNoFeasibleStrategy.
func (m *Mediator) Mediate(ctx context.Context, a *Action) (*Result, error) {
	if a.ID == "" {
		a.ID = idFromContext(ctx)
	}
	s, winner, candidates, err := m.Select(ctx, a)
	if err != nil {
		if cerr := CloseEntries(a.Entries); cerr != nil {
			m.logger.Warn("closing join entries", "join_id", a.ID, "error", cerr)
		}
		m.logger.Error("join selection failed", "join_id", a.ID, "type", a.Type.String(), "entries", len(a.Entries), "error", err)
		return nil, err
	}

	m.logger.Debug("join strategy selected",
		"join_id", a.ID,
		"type", a.Type.String(),
		"entries", len(a.Entries),
		"strategy", winner.Strategy,
		"score", winner.Score,
	)
	RecordPlan(ctx, PlanNode{
		ActionID:     a.ID,
		Type:         a.Type,
		Entries:      len(a.Entries),
		Strategy:     winner.Strategy,
		Coefficients: winner.Result.Coefficients,
		Score:        winner.Score,
		Candidates:   candidates,
	})

	out, err := s.Run(ctx, a)
	if err != nil {
		return nil, err
	}
	return &Result{Output: *out, Strategy: winner.Strategy, Coefficients: winner.Result.Coefficients}, nil
}
