package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/revsim/internal/hamiltonian"
	"github.com/roach88/revsim/internal/netspec"
	"github.com/roach88/revsim/internal/sim"
	"github.com/roach88/revsim/internal/testutil"
	"github.com/roach88/revsim/internal/trace"
)

// Harness holds the collaborators shared by every scenario run.
type Harness struct {
	store  *trace.Store
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithStore persists every run and its samples to st.
func WithStore(st *trace.Store) Option {
	return func(h *Harness) {
		h.store = st
	}
}

// WithLogger sets the logger passed to each simulation context.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the network file and build a fresh context
//  2. Run the scenario's steps, sampling after each one
//  3. Persist the trace when a store is configured
//  4. Evaluate assertions; roundtrip assertions run last, from the final
//     state, so they never disturb the averages
//
// An error is returned only when the scenario cannot be executed; failed
// assertions are reported in the Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	sctx, err := h.Build(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name)
	rec := trace.NewRecorder(sctx.Network().Coordinates()...)
	rec.Sample()
	report, err := sctx.Test(scenario.Steps, rec.Observe)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result.Report = report
	result.Trace = rec
	for _, s := range report.Coordinates {
		result.Averages[s.Name] = s.Mean
	}

	if h.store != nil {
		id, err := h.record(ctx, scenario, sctx, rec)
		if err != nil {
			return nil, err
		}
		result.RunID = id
	}

	for _, msg := range EvaluateAssertions(sctx, report, scenario.Assertions, scenario.Steps) {
		result.AddError(msg)
	}
	h.logger.Debug("scenario complete",
		"scenario", scenario.Name,
		"steps", scenario.Steps,
		"pass", result.Pass)
	return result, nil
}

// Build loads the scenario's network and returns a context ready to step,
// with the scenario's overrides applied.
func (h *Harness) Build(scenario *Scenario) (*sim.Context, error) {
	specs, err := netspec.LoadFile(scenario.Network)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	spec := specs[0]
	if scenario.Select != "" {
		var ok bool
		if spec, ok = netspec.Find(specs, scenario.Select); !ok {
			return nil, fmt.Errorf("scenario %s: network %q not found in %s", scenario.Name, scenario.Select, scenario.Network)
		}
	} else if len(specs) > 1 {
		return nil, fmt.Errorf("scenario %s: %s declares %d networks, set select", scenario.Name, scenario.Network, len(specs))
	}

	opts := []sim.Option{sim.WithLogger(h.logger)}
	if scenario.Seed != nil {
		opts = append(opts, sim.WithSeed(*scenario.Seed))
	}
	if scenario.Temperature != nil {
		opts = append(opts, sim.WithTemperature(*scenario.Temperature))
	}
	if scenario.TimeDelta != nil {
		opts = append(opts, sim.WithTimeDelta(*scenario.TimeDelta))
	}
	sctx, err := netspec.Build(spec, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return sctx, nil
}

func (h *Harness) record(ctx context.Context, scenario *Scenario, sctx *sim.Context, rec *trace.Recorder) (string, error) {
	run := trace.Run{
		ID:          testutil.NewFixedRunIDGenerator(scenario.RunID).Generate(),
		Network:     sctx.Network().Name(),
		Seed:        sctx.Seed(),
		TimeDelta:   sctx.TimeDelta().String(),
		Temperature: sctx.Temperature().String(),
		Steps:       scenario.Steps,
	}
	if err := h.store.Record(ctx, run, rec); err != nil {
		return "", fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return run.ID, nil
}

// RoundTrip steps ctx forward n steps and back again, and returns the names
// of coordinates whose state did not return bit for bit.
func RoundTrip(ctx *sim.Context, n int) ([]string, error) {
	before := ctx.Network().State()
	if err := ctx.StepForward(n); err != nil {
		return nil, fmt.Errorf("roundtrip forward: %w", err)
	}
	if err := ctx.StepBackward(n); err != nil {
		return nil, fmt.Errorf("roundtrip backward: %w", err)
	}
	return diverged(before, ctx.Network().State()), nil
}

func diverged(before, after []hamiltonian.State) []string {
	var names []string
	for i, b := range before {
		if i >= len(after) || !b.Equal(after[i]) {
			names = append(names, b.Name)
		}
	}
	return names
}
