package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the revsim CLI. Invoked
// without a subcommand it runs the full-adder demo.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	demo := &DemoOptions{RootOptions: opts, Sim: defaultSimFlags(), B: true, C: true}

	cmd := &cobra.Command{
		Use:   "revsim",
		Short: "revsim - reversible Hamiltonian simulator",
		Long: `A reversible simulator for networks of canonical coordinates.

Positions and momenta are exact fixed-point numbers advanced by a
leapfrog integrator, so every run can be stepped backward to its
starting state bit for bit. Logic gates are potential wells; a full
adder settles into its truth table.

Run without a subcommand to simulate the full-adder demo.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(demo, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewRoundTripCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
