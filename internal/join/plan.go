package join

import (
	"context"
	"sync"
)

// PlanNode records one selection decision.
type PlanNode struct {
	ActionID     string       `json:"id"`
	Type         LogicalType  `json:"-"`
	Entries      int          `json:"entries"`
	Strategy     string       `json:"strategy"`
	Coefficients Coefficients `json:"coefficients"`
	Score        float64      `json:"score"`
	Candidates   []Candidate  `json:"-"`
}

// PlanRecorder receives selection decisions, including those of nested
// joins issued by multi-way strategies.
type PlanRecorder interface {
	RecordPlan(node PlanNode)
}

type planRecorderKey struct{}

// WithPlanRecorder attaches r to ctx.
func WithPlanRecorder(ctx context.Context, r PlanRecorder) context.Context {
	return context.WithValue(ctx, planRecorderKey{}, r)
}

// RecordPlan forwards node to the recorder on ctx, if any.
func RecordPlan(ctx context.Context, node PlanNode) {
	if r, ok := ctx.Value(planRecorderKey{}).(PlanRecorder); ok {
		r.RecordPlan(node)
	}
}

// PlanLog collects plan nodes in the order they were recorded.
// Safe for concurrent use.
type PlanLog struct {
	mu    sync.Mutex
	nodes []PlanNode
}

func (l *PlanLog) RecordPlan(node PlanNode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes = append(l.nodes, node)
}

// Nodes returns a copy of the recorded nodes.
func (l *PlanLog) Nodes() []PlanNode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PlanNode{}, l.nodes...)
}

// Strategies returns the chosen strategy names in record order.
func (l *PlanLog) Strategies() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.nodes))
	for i, n := range l.nodes {
		names[i] = n.Strategy
	}
	return names
}
