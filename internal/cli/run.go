package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/netspec"
	"github.com/roach88/revsim/internal/sim"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Sim     SimFlags
	Network string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts, Sim: defaultSimFlags()}

	cmd := &cobra.Command{
		Use:   "run <network-path>",
		Short: "Simulate a network defined in CUE",
		Long: `Load a network from a CUE file or directory, simulate it, and print the
time-averaged position of every coordinate.

The network file's time_delta, seed and temperature apply unless the
matching flag is given.

Examples:
  revsim run ./networks --network fulladder
  revsim run ./networks/memory.cue --steps 5000 --csv memory.csv
  revsim run ./networks --network fulladder --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Network, "network", "", "network to run when the path declares several")
	opts.Sim.register(cmd)

	return cmd
}

func runNetwork(opts *RunOptions, path string, cmd *cobra.Command) error {
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

	summary, err := simulate(commandContext(cmd), sctx, &opts.Sim, logger)
	if err != nil {
		return err
	}
	return outputSummary(formatter, summary)
}

// buildNetwork loads path and builds the selected network. With no name,
// the path must declare exactly one network.
func buildNetwork(f *OutputFormatter, path, name string, opts []sim.Option) (*sim.Context, error) {
	specs, err := netspec.LoadPath(path)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeLoadFailed, "failed to load networks", err)
	}

	var spec *netspec.Spec
	switch {
	case name != "":
		var ok bool
		if spec, ok = netspec.Find(specs, name); !ok {
			return nil, fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("network %q not found in %s", name, path), nil)
		}
	case len(specs) == 1:
		spec = specs[0]
	default:
		return nil, fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("%s declares %d networks; choose one with --network", path, len(specs)), nil)
	}
	f.VerboseLog("Building network %s (%d coordinates, %d gates)", spec.Name, len(spec.Coordinates), len(spec.Gates))

	sctx, err := netspec.Build(spec, opts...)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeLoadFailed, "failed to build network", err)
	}
	return sctx, nil
}
