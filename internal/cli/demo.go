package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/gates"
	"github.com/roach88/revsim/internal/sim"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Sim     SimFlags
	A, B, C bool
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts, Sim: defaultSimFlags(), B: true, C: true}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Simulate the full-adder demo network",
		Long: `Build a full adder over input bits A, B and C, simulate it, and print
the time-averaged position of every coordinate.

The sum settles at S0 and the carry at S1, each read as 1 when its
average is at least one half. Inputs default to A=0, B=1, C=1, so S0
averages near 0 and S1 near 1.

Examples:
  revsim demo
  revsim demo --a --b=false --steps 2000
  revsim demo --temperature 0 --csv adder.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.A, "a", opts.A, "input bit A")
	cmd.Flags().BoolVar(&opts.B, "b", opts.B, "input bit B")
	cmd.Flags().BoolVar(&opts.C, "c", opts.C, "input bit C (carry in)")
	opts.Sim.register(cmd)

	return cmd
}

func runDemo(opts *DemoOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	simOpts, err := opts.Sim.options(cmd, true)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidFlag, "invalid flag", err)
	}
	sctx, err := sim.NewContext(append(simOpts, sim.WithLogger(logger))...)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidFlag, "invalid simulation settings", err)
	}
	if _, err := gates.BuildFullAdder(sctx, opts.A, opts.B, opts.C); err != nil {
		return fail(formatter, ExitFailure, ErrCodeSimulation, "failed to build full adder", err)
	}

	summary, err := simulate(commandContext(cmd), sctx, &opts.Sim, logger)
	if err != nil {
		return err
	}
	sum, _ := summary.Mean("S0")
	carry, _ := summary.Mean("S1")
	summary.Adder = &AdderBits{Sum: bit(gates.Level(sum)), Carry: bit(gates.Level(carry))}
	return outputSummary(formatter, summary)
}

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}
