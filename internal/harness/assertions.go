package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/revsim/internal/sim"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// assertAverage checks that a coordinate's mean position is within
// tolerance of the expected value.
func assertAverage(report *sim.Report, a Assertion) error {
	mean, ok := report.Mean(a.Coordinate)
	if !ok {
		return fmt.Errorf("average: unknown coordinate %q", a.Coordinate)
	}
	return within(AssertAverage, "mean of "+a.Coordinate, mean, a)
}

// assertSumAverage checks the sum of several coordinates' means.
func assertSumAverage(report *sim.Report, a Assertion) error {
	var sum float64
	for _, name := range a.Coordinates {
		mean, ok := report.Mean(name)
		if !ok {
			return fmt.Errorf("sum_average: unknown coordinate %q", name)
		}
		sum += mean
	}
	return within(AssertSumAverage, "sum of means of "+strings.Join(a.Coordinates, "+"), sum, a)
}

// assertFinal checks a coordinate's position after the run.
func assertFinal(report *sim.Report, a Assertion) error {
	s, ok := report.Stats(a.Coordinate)
	if !ok {
		return fmt.Errorf("final: unknown coordinate %q", a.Coordinate)
	}
	got := s.Final.Sub(a.Value).Abs()
	if got.Cmp(a.Tolerance) <= 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinal,
		Expected: fmt.Sprintf("final %s = %s ± %s", a.Coordinate, a.Value, a.Tolerance),
		Actual:   s.Final.String(),
	}
}

// assertRoundTrip steps forward and back and requires a bit-identical
// state.
func assertRoundTrip(ctx *sim.Context, a Assertion, defaultSteps int) error {
	n := a.Steps
	if n == 0 {
		n = defaultSteps
	}
	bad, err := RoundTrip(ctx, n)
	if err != nil {
		return err
	}
	if len(bad) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRoundTrip,
		Expected: fmt.Sprintf("bit-identical state after %d steps forward and back", n),
		Actual:   "diverged: " + strings.Join(bad, ", "),
	}
}

func within(typ, what string, got float64, a Assertion) error {
	want, tol := a.Value.Float64(), a.Tolerance.Float64()
	if math.Abs(got-want) <= tol {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s = %s ± %s", what, a.Value, a.Tolerance),
		Actual:   fmt.Sprintf("%.6f", got),
	}
}

// EvaluateAssertions evaluates all assertions against a finished run.
// Returns a slice of error messages for failed assertions. Round-trip
// assertions are evaluated after every other kind because they step ctx.
func EvaluateAssertions(ctx *sim.Context, report *sim.Report, assertions []Assertion, steps int) []string {
	var errors []string
	var roundtrips []Assertion

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertAverage:
			err = assertAverage(report, assertion)
		case AssertSumAverage:
			err = assertSumAverage(report, assertion)
		case AssertFinal:
			err = assertFinal(report, assertion)
		case AssertRoundTrip:
			roundtrips = append(roundtrips, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	for _, assertion := range roundtrips {
		if err := assertRoundTrip(ctx, assertion, steps); err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
