package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comunica/comunica-sub013/internal/join"
)

// ExplainReport is the JSON payload of the explain command.
type ExplainReport struct {
	Scenario string        `json:"scenario"`
	Joins    []ExplainNode `json:"joins"`
	Error    string        `json:"error,omitempty"`
}

// ExplainNode is one strategy selection.
type ExplainNode struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Entries    int                `json:"entries"`
	Strategy   string             `json:"strategy"`
	Score      float64            `json:"score"`
	Candidates []ExplainCandidate `json:"candidates"`
}

// ExplainCandidate is one strategy's verdict. Rejected candidates carry a
// reason instead of a score.
type ExplainCandidate struct {
	Strategy     string             `json:"strategy"`
	Score        *float64           `json:"score,omitempty"`
	Coefficients *join.Coefficients `json:"coefficients,omitempty"`
	Rejected     string             `json:"rejected,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <scenario.yaml>",
		Short: "Show how join strategies were selected",
		Long: `Run a join scenario and print every strategy selection: the
candidates the mediator tested, their scores or rejection reasons, and the
winner. Nested joins issued by the multi-way strategy are listed in the
order they were planned.

Example:
  joinctl explain ./scenarios/multi_way_store.yaml
  joinctl explain ./scenarios/multi_way_store.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runExplain(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, result, err := executeScenario(commandContext(cmd), opts, path, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	report := ExplainReport{Scenario: scenario.Name, Joins: make([]ExplainNode, 0, len(result.Plan))}
	for _, node := range result.Plan {
		report.Joins = append(report.Joins, explainNode(node))
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}

	if formatter.JSON() {
		return formatter.Success(report)
	}
	writeExplainText(formatter.Writer, report)
	return nil
}

func explainNode(node join.PlanNode) ExplainNode {
	out := ExplainNode{
		ID:         node.ActionID,
		Type:       node.Type.String(),
		Entries:    node.Entries,
		Strategy:   node.Strategy,
		Score:      node.Score,
		Candidates: make([]ExplainCandidate, len(node.Candidates)),
	}
	for i, c := range node.Candidates {
		ec := ExplainCandidate{Strategy: c.Strategy}
		if c.Result.Passed() {
			score, coeff := c.Score, c.Result.Coefficients
			ec.Score, ec.Coefficients = &score, &coeff
		} else {
			ec.Rejected = c.Result.Failure.String()
		}
		out.Candidates[i] = ec
	}
	return out
}

func writeExplainText(w io.Writer, report ExplainReport) {
	fmt.Fprintf(w, "scenario: %s\n", report.Scenario)
	for _, node := range report.Joins {
		fmt.Fprintf(w, "\n%s %s join of %d entries -> %s (score %s)\n",
			node.ID, node.Type, node.Entries, node.Strategy, formatScore(node.Score))

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  STRATEGY\tSCORE\tDETAIL")
		for _, c := range node.Candidates {
			if c.Score == nil {
				fmt.Fprintf(tw, "  %s\t-\t%s\n", c.Strategy, c.Rejected)
				continue
			}
			marker := ""
			if c.Strategy == node.Strategy {
				marker = " *"
			}
			fmt.Fprintf(tw, "  %s%s\t%s\titerations=%s persisted=%s blocking=%s request_time=%s\n",
				c.Strategy, marker, formatScore(*c.Score),
				formatScore(c.Coefficients.Iterations),
				formatScore(c.Coefficients.PersistedItems),
				formatScore(c.Coefficients.BlockingItems),
				formatScore(c.Coefficients.RequestTime))
		}
		tw.Flush()
	}
	if report.Error != "" {
		fmt.Fprintf(w, "\njoin failed: %s\n", report.Error)
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
