package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Coord    string // optional - filter to one coordinate
}

// TraceSample is one stored sample in command output.
type TraceSample struct {
	Seq   int    `json:"seq"`
	Coord string `json:"coord"`
	QT    int64  `json:"qt"`
	Q     string `json:"q"`
	PT    int64  `json:"pt"`
	P     string `json:"p"`
}

// TraceResult holds one run and its samples.
type TraceResult struct {
	Run     trace.Run     `json:"run"`
	Samples []TraceSample `json:"samples"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded with --db.

Without --run, lists every recorded run. With --run, prints the run's
samples, optionally restricted to one coordinate.

Examples:
  revsim trace --db runs.db
  revsim trace --db runs.db --run 01912c6e-... --coord S0
  revsim trace --db runs.db --run 01912c6e-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show")
	cmd.Flags().StringVar(&opts.Coord, "coord", "", "only show this coordinate")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := trace.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to list runs", err)
		}
		return outputRuns(formatter, runs)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, trace.ErrRunNotFound) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", opts.RunID), nil)
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to read run", err)
	}

	coords := []string{opts.Coord}
	if opts.Coord == "" {
		if coords, err = st.RunCoordinates(ctx, run.ID); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to read run", err)
		}
	}
	result := TraceResult{Run: run, Samples: []TraceSample{}}
	for _, c := range coords {
		samples, err := st.ReadSamples(ctx, run.ID, c)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to read samples", err)
		}
		for _, s := range samples {
			result.Samples = append(result.Samples, TraceSample{
				Seq: s.Seq, Coord: s.Coord,
				QT: s.QT, Q: s.Q.String(),
				PT: s.PT, P: s.P.String(),
			})
		}
	}
	return outputTrace(formatter, result)
}

func outputRuns(f *OutputFormatter, runs []trace.Run) error {
	if f.Format == "json" {
		if runs == nil {
			runs = []trace.Run{}
		}
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNETWORK\tSTEPS\tDT\tTEMPERATURE\tSEED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\n", r.ID, r.Network, r.Steps, r.TimeDelta, r.Temperature, r.Seed)
	}
	return tw.Flush()
}

func outputTrace(f *OutputFormatter, result TraceResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "run %s: network %s, %d steps\n", result.Run.ID, result.Run.Network, result.Run.Steps)
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tCOORD\tQT\tQ\tPT\tP")
	for _, s := range result.Samples {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%s\n", s.Seq, s.Coord, s.QT, s.Q, s.PT, s.P)
	}
	return tw.Flush()
}
