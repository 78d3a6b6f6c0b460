package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/sim"
	"github.com/roach88/revsim/internal/trace"
)

// SimFlags holds the simulation flags shared by demo and run.
type SimFlags struct {
	Steps       int
	TimeDelta   string
	Seed        uint64
	Temperature string
	CSV         string
	Database    string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs trace.RunIDGenerator
}

func defaultSimFlags() SimFlags {
	return SimFlags{
		Steps:       sim.DefaultSteps,
		TimeDelta:   sim.DefaultTimeDelta.String(),
		Seed:        sim.DefaultSeed,
		Temperature: "1",
	}
}

func (f *SimFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.Steps, "steps", f.Steps, "number of leapfrog steps")
	cmd.Flags().StringVar(&f.TimeDelta, "dt", f.TimeDelta, "time step Δt")
	cmd.Flags().Uint64Var(&f.Seed, "seed", f.Seed, "momentum sampling seed")
	cmd.Flags().StringVar(&f.Temperature, "temperature", f.Temperature, "thermalisation temperature")
	cmd.Flags().StringVar(&f.CSV, "csv", "", "write the trajectory as CSV to this file")
	cmd.Flags().StringVar(&f.Database, "db", "", "record the trajectory in this SQLite database")
}

// options converts flags to context options. Unless all is set, only flags
// given on the command line are converted, so a network file's own settings
// survive.
func (f *SimFlags) options(cmd *cobra.Command, all bool) ([]sim.Option, error) {
	var opts []sim.Option
	if f.Steps < 0 {
		return nil, fmt.Errorf("--steps must not be negative")
	}
	if all || cmd.Flags().Changed("dt") {
		dt, err := fixed.Parse(f.TimeDelta)
		if err != nil {
			return nil, fmt.Errorf("--dt: %w", err)
		}
		opts = append(opts, sim.WithTimeDelta(dt))
	}
	if all || cmd.Flags().Changed("seed") {
		opts = append(opts, sim.WithSeed(f.Seed))
	}
	if all || cmd.Flags().Changed("temperature") {
		t, err := fixed.Parse(f.Temperature)
		if err != nil {
			return nil, fmt.Errorf("--temperature: %w", err)
		}
		opts = append(opts, sim.WithTemperature(t))
	}
	return opts, nil
}

// newLogger returns a text logger writing to w at Info level, or Debug when
// verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// AdderBits is the demo's reading of the full adder's averaged outputs.
type AdderBits struct {
	Sum   int `json:"sum"`
	Carry int `json:"carry"`
}

// Summary is the output of a simulation command.
type Summary struct {
	*sim.Report
	RunID string     `json:"run_id,omitempty"`
	CSV   string     `json:"csv,omitempty"`
	Adder *AdderBits `json:"adder,omitempty"`
}

// simulate runs the attached network for f.Steps steps and writes the
// requested outputs.
func simulate(ctx context.Context, sctx *sim.Context, f *SimFlags, logger *slog.Logger) (*Summary, error) {
	rec := trace.NewRecorder(sctx.Network().Coordinates()...)
	rec.Sample()
	logger.Info("simulating",
		"network", sctx.Network().Name(),
		"steps", f.Steps,
		"dt", sctx.TimeDelta().String(),
		"temperature", sctx.Temperature().String())
	report, err := sctx.Test(f.Steps, rec.Observe)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "simulation failed", err)
	}
	summary := &Summary{Report: report}

	if f.CSV != "" {
		if err := writeCSV(f.CSV, rec); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to write CSV", err)
		}
		summary.CSV = f.CSV
		logger.Info("trajectory written", "path", f.CSV, "samples", rec.Len())
	}

	if f.Database != "" {
		id, err := record(ctx, f, sctx, rec)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to record run", err)
		}
		summary.RunID = id
		logger.Info("run recorded", "db", f.Database, "run_id", id)
	}
	return summary, nil
}

func writeCSV(path string, rec *trace.Recorder) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rec.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func record(ctx context.Context, f *SimFlags, sctx *sim.Context, rec *trace.Recorder) (string, error) {
	st, err := trace.Open(f.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	gen := f.RunIDs
	if gen == nil {
		gen = trace.UUIDv7Generator{}
	}
	run := trace.Run{
		ID:          gen.Generate(),
		Network:     sctx.Network().Name(),
		Seed:        sctx.Seed(),
		TimeDelta:   sctx.TimeDelta().String(),
		Temperature: sctx.Temperature().String(),
		Steps:       f.Steps,
	}
	if err := st.Record(ctx, run, rec); err != nil {
		return "", err
	}
	return run.ID, nil
}

// outputSummary prints the per-coordinate statistics.
func outputSummary(f *OutputFormatter, s *Summary) error {
	if f.Format == "json" {
		return f.Success(s)
	}
	fmt.Fprintf(f.Writer, "network %s: %d steps, t=%d\n", s.Network, s.Steps, s.Time)
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  coordinate\tmean\tstddev\tfinal")
	for _, c := range s.Coordinates {
		fmt.Fprintf(tw, "  %s\t%.6f\t%.6f\t%s\n", c.Name, c.Mean, c.StdDev, c.Final)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if s.Adder != nil {
		fmt.Fprintf(f.Writer, "sum S0=%d carry S1=%d\n", s.Adder.Sum, s.Adder.Carry)
	}
	if s.RunID != "" {
		fmt.Fprintf(f.Writer, "run %s recorded\n", s.RunID)
	}
	return nil
}

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// fail reports an error in the configured format and returns it as an
// ExitError.
func fail(f *OutputFormatter, exit int, code, message string, err error) error {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, detail, nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, fmt.Sprintf("%s [%s]", message, code), err)
}
