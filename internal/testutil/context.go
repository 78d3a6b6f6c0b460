package testutil

import (
	"testing"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/sim"
)

// ColdContext returns a context at temperature zero, so every sampled
// momentum is 0, with any extra options applied after.
func ColdContext(t testing.TB, opts ...sim.Option) *sim.Context {
	t.Helper()
	opts = append([]sim.Option{sim.WithTemperature(fixed.Zero)}, opts...)
	ctx, err := sim.NewContext(opts...)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	return ctx
}
