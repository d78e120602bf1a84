package join

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces join request IDs for log and plan correlation.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort by
// creation time in logs.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewID returns a fresh UUIDv7 string.
func NewID() string {
	return UUIDv7Generator{}.Generate()
}

// SequenceGenerator returns "<prefix>-1", "<prefix>-2", ... for
// deterministic output in tests and golden files.
// Safe for concurrent use.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceGenerator creates a generator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

type idGeneratorKey struct{}

// WithIDGenerator makes NewAction draw IDs from gen for requests issued
// under ctx, including nested joins.
func WithIDGenerator(ctx context.Context, gen IDGenerator) context.Context {
	return context.WithValue(ctx, idGeneratorKey{}, gen)
}

// NewAction builds an action with an ID from the generator on ctx, or a
// UUIDv7 when none is set.
func NewAction(ctx context.Context, t LogicalType, entries []Entry) *Action {
	return &Action{ID: idFromContext(ctx), Type: t, Entries: entries}
}

func idFromContext(ctx context.Context) string {
	if gen, ok := ctx.Value(idGeneratorKey{}).(IDGenerator); ok {
		return gen.Generate()
	}
	return NewID()
}
