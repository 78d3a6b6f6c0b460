package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/netspec"
)

// NetworkSummary describes one valid network.
type NetworkSummary struct {
	Name        string `json:"name"`
	Coordinates int    `json:"coordinates"`
	Gates       int    `json:"gates"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Networks []NetworkSummary `json:"networks,omitempty"`
}

// ValidationError is a positioned definition error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <network-path>",
		Short: "Validate network definitions without simulating",
		Long: `Validate CUE network definitions without building or stepping them.

Checks syntax, numeric fields, gate kinds and arities, and that every
gate refers to a declared coordinate. Errors carry file positions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	specs, err := netspec.LoadPath(path)
	if err != nil {
		var ce *netspec.CompileError
		if !errors.As(err, &ce) {
			return fail(formatter, ExitCommandError, ErrCodeLoadFailed, "failed to load networks", err)
		}
		verr := ValidationError{Field: ce.Field, Message: ce.Message}
		if ce.Pos.IsValid() {
			verr.File = ce.Pos.Filename()
			verr.Line = ce.Pos.Line()
			verr.Column = ce.Pos.Column()
		}
		if outErr := formatter.Error(ErrCodeLoadFailed, "validation failed", verr); outErr != nil {
			return outErr
		}
		if formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "  %v\n", ce)
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	result := ValidationResult{Valid: true}
	for _, s := range specs {
		formatter.VerboseLog("Validated network: %s", s.Name)
		result.Networks = append(result.Networks, NetworkSummary{
			Name:        s.Name,
			Coordinates: len(s.Coordinates),
			Gates:       len(s.Gates),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, n := range result.Networks {
		fmt.Fprintf(formatter.Writer, "  %s: %d coordinates, %d gates\n", n.Name, n.Coordinates, n.Gates)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d network(s) valid\n", len(result.Networks))
	return nil
}
