package harness

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/config"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/rdf"
	"github.com/comunica/comunica-sub013/internal/store"
	"github.com/comunica/comunica-sub013/internal/stream"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger *slog.Logger
	config *config.Config
}

// WithLogger routes engine logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConfig overrides the scenario's own engine configuration.
func WithConfig(c *config.Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// Run executes a scenario and evaluates its assertions.
//
// Each run uses a fresh engine and, when the scenario has data, a fresh
// in-memory store. A join failure is not an error: it is recorded in
// Result.Err for the error assertion. Errors are returned only when the
// scenario itself cannot be set up.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.Default()
		if scenario.Config != "" {
			parsed, err := config.Parse([]byte(scenario.Config), scenario.Name+".cue")
			if err != nil {
				return nil, errors.Wrap(err, "scenario config")
			}
			cfg = parsed
		}
	}
	engine, err := cfg.NewEngine(o.logger)
	if err != nil {
		return nil, err
	}
	typ, err := join.ParseLogicalType(scenario.Type)
	if err != nil {
		return nil, err
	}

	var st *store.Store
	if scenario.Data != "" {
		st, err = openStore(ctx, scenario.Data, o.logger)
		if err != nil {
			return nil, err
		}
		defer st.Close()
	}

	plan := &join.PlanLog{}
	ctx = join.WithPlanRecorder(ctx, plan)
	ctx = join.WithIDGenerator(ctx, join.NewSequenceGenerator("join"))

	entries, tracked, err := buildEntries(ctx, scenario, st)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Tracked = tracked
	result.Err = execute(ctx, engine, typ, entries, result)
	result.Plan = plan.Nodes()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func execute(ctx context.Context, engine *join.Engine, typ join.LogicalType, entries []join.Entry, result *Result) error {
	res, err := engine.Join(ctx, typ, entries)
	if err != nil {
		return err
	}
	result.Strategy = res.Strategy

	rows, err := stream.Collect(ctx, res.Stream)
	if err != nil {
		return err
	}
	result.Rows = rows

	md, err := res.Metadata(ctx)
	if err != nil {
		return err
	}
	result.Metadata = md
	return nil
}

func openStore(ctx context.Context, data string, logger *slog.Logger) (*store.Store, error) {
	quads, err := store.ParseQuads(strings.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "scenario data")
	}
	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if _, err := st.Insert(ctx, quads...); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildEntries turns entry specs into join entries. Inline entries are
// tracked so the entries_closed assertion can inspect them.
func buildEntries(ctx context.Context, scenario *Scenario, st *store.Store) ([]join.Entry, []*testutil.TrackedStream, error) {
	var (
		entries []join.Entry
		tracked []*testutil.TrackedStream
	)
	fail := func(err error) ([]join.Entry, []*testutil.TrackedStream, error) {
		if cerr := join.CloseEntries(entries); cerr != nil {
			err = errors.CombineErrors(err, cerr)
		}
		return nil, nil, err
	}

	for i, spec := range scenario.Entries {
		if spec.Pattern != "" {
			if st == nil {
				return fail(errors.Newf("entries[%d]: pattern entries need scenario data", i))
			}
			p, err := algebra.ParsePattern(spec.Pattern)
			if err != nil {
				return fail(errors.Wrapf(err, "entries[%d]", i))
			}
			e, err := st.Entry(ctx, p)
			if err != nil {
				return fail(errors.Wrapf(err, "entries[%d]", i))
			}
			entries = append(entries, e)
			continue
		}

		rows, err := ParseRows(spec.Rows)
		if err != nil {
			return fail(errors.Wrapf(err, "entries[%d]", i))
		}
		typ, err := metadata.ParseCardinalityType(defaultString(spec.CardinalityType, "exact"))
		if err != nil {
			return fail(errors.Wrapf(err, "entries[%d]", i))
		}
		card := metadata.Cardinality{Type: typ, Value: float64(len(rows))}
		if spec.Cardinality != nil {
			card.Value = *spec.Cardinality
		}

		var src stream.Stream
		if spec.FailAfter != "" {
			src = testutil.ErrorAfter(errors.New(spec.FailAfter), rows...)
		}
		e, tr := testutil.Entry(testutil.EntrySpec{
			Name:        spec.Name,
			Cardinality: card,
			Variables:   testutil.Vars(spec.Variables...),
			RequestTime: spec.RequestTime,
			Rows:        rows,
			Stream:      src,
		})
		entries = append(entries, e)
		tracked = append(tracked, tr)
	}
	return entries, tracked, nil
}

// ParseRows converts rows of textual terms into bindings.
func ParseRows(rows []map[string]string) ([]bindings.Bindings, error) {
	out := make([]bindings.Bindings, len(rows))
	for i, row := range rows {
		b := bindings.New()
		for name, text := range row {
			t, err := rdf.Parse(text)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d ?%s", i, name)
			}
			b = b.Set(name, t)
		}
		out[i] = b
	}
	return out, nil
}
