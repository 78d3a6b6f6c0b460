package harness

import (
	"github.com/roach88/revsim/internal/sim"
	"github.com/roach88/revsim/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string `json:"scenario"`

	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Averages maps each coordinate to its time-averaged position.
	Averages map[string]float64 `json:"averages"`

	// RunID is set when the run was persisted to a trace store.
	RunID string `json:"run_id,omitempty"`

	// Report holds the full per-coordinate statistics.
	Report *sim.Report `json:"report"`

	// Trace holds every sampled state, starting with the initial one.
	Trace *trace.Recorder `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Errors:   []string{},
		Averages: make(map[string]float64),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
