package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/harness"
	"github.com/roach88/revsim/internal/sim"
)

// RoundTripOptions holds flags for the roundtrip command.
type RoundTripOptions struct {
	*RootOptions
	Sim     SimFlags
	Network string
}

// RoundTripResult holds the outcome of a round trip.
type RoundTripResult struct {
	Network   string   `json:"network"`
	Steps     int      `json:"steps"`
	Identical bool     `json:"identical"`
	Diverged  []string `json:"diverged,omitempty"`
}

// NewRoundTripCommand creates the roundtrip command.
func NewRoundTripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoundTripOptions{RootOptions: rootOpts, Sim: defaultSimFlags()}

	cmd := &cobra.Command{
		Use:   "roundtrip <network-path>",
		Short: "Step a network forward and back and compare states",
		Long: `Step a network forward N steps and backward N steps, and check that
every position and momentum returns bit for bit.

Exit codes:
  0 - State restored exactly
  1 - One or more coordinates diverged
  2 - Command error (invalid paths, bad network files, etc.)

Examples:
  revsim roundtrip ./networks --network fulladder --steps 5000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundTrip(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Network, "network", "", "network to run when the path declares several")
	cmd.Flags().IntVar(&opts.Sim.Steps, "steps", opts.Sim.Steps, "number of leapfrog steps each way")
	cmd.Flags().StringVar(&opts.Sim.TimeDelta, "dt", opts.Sim.TimeDelta, "time step Δt")
	cmd.Flags().Uint64Var(&opts.Sim.Seed, "seed", opts.Sim.Seed, "momentum sampling seed")
	cmd.Flags().StringVar(&opts.Sim.Temperature, "temperature", opts.Sim.Temperature, "thermalisation temperature")

	return cmd
}

func runRoundTrip(opts *RoundTripOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	simOpts, err := opts.Sim.options(cmd, false)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidFlag, "invalid flag", err)
	}
	sctx, err := buildNetwork(formatter, path, opts.Network, append(simOpts, sim.WithLogger(logger)))
	if err != nil {
		return err
	}

	diverged, err := harness.RoundTrip(sctx, opts.Sim.Steps)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeSimulation, "round trip failed", err)
	}
	result := RoundTripResult{
		Network:   sctx.Network().Name(),
		Steps:     opts.Sim.Steps,
		Identical: len(diverged) == 0,
		Diverged:  diverged,
	}

	if !result.Identical {
		msg := fmt.Sprintf("state diverged after %d steps: %s", result.Steps, strings.Join(diverged, ", "))
		if formatter.Format == "json" {
			if err := formatter.Error("E_ROUNDTRIP", msg, result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", msg)
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s restored bit for bit after %d steps forward and back\n", result.Network, result.Steps)
	return nil
}
