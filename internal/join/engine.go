package join

import (
	"context"
	"log/slog"
	"time"
)

// Engine is the entry point for join requests: it optionally reorders inner
// join entries, then delegates to the mediator.
//
// Thread-safety: an Engine holds no per-request state and may serve
// concurrent requests.
type Engine struct {
	mediator *Mediator
	sorter   Sorter
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithSorter reorders inner join entries before strategy selection.
// Optional and minus joins are never reordered since their entry order
// carries meaning.
func WithSorter(s Sorter) EngineOption {
	return func(e *Engine) {
		e.sorter = s
	}
}

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine over m.
func NewEngine(m *Mediator, opts ...EngineOption) *Engine {
	e := &Engine{mediator: m, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mediator returns the underlying mediator.
func (e *Engine) Mediator() *Mediator {
	return e.mediator
}

// Join runs a join of type t over entries.
//
// The engine owns the entry streams from this call on: they are closed when
// the returned stream is closed, or before Join returns on failure.
func (e *Engine) Join(ctx context.Context, t LogicalType, entries []Entry) (*Result, error) {
	a := NewAction(ctx, t, entries)
	start := time.Now()

	if e.sorter != nil && t == Inner && len(entries) > 1 {
		sorted, err := e.sorter.Sort(ctx, entries)
		if err != nil {
			if cerr := CloseEntries(entries); cerr != nil {
				e.logger.Warn("closing join entries", "join_id", a.ID, "error", cerr)
			}
			return nil, err
		}
		a.Entries = sorted
	}

	res, err := e.mediator.Mediate(ctx, a)
	if err != nil {
		return nil, err
	}
	e.logger.Info("join planned",
		"join_id", a.ID,
		"type", t.String(),
		"entries", len(entries),
		"strategy", res.Strategy,
		"elapsed", time.Since(start),
	)
	return res, nil
}
