package harness

import (
	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Outcomes holds one "op: outcome" line per step, in order.
	Outcomes []string `json:"outcomes"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Changes is the pending diff after the last step.
	Changes grid.Changes `json:"changes"`

	// Rows are the grid's rows after the last step, including rows marked
	// for deletion.
	Rows []*ir.Row `json:"rows"`

	// Saves is the number of audit records the store wrote.
	Saves int `json:"saves"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []string{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome records what a step did.
func (r *Result) AddOutcome(op, outcome string) {
	r.Outcomes = append(r.Outcomes, op+": "+outcome)
}
