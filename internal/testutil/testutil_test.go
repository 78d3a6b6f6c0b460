package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/sim"
)

func TestFixedRunIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-123")

	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())
}

func TestFixedRunIDGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedRunIDGenerator("")

	assert.Equal(t, "test-run-default", gen.Generate())
}

func TestColdContext(t *testing.T) {
	ctx := ColdContext(t, sim.WithSeed(9))
	assert.True(t, ctx.Temperature().IsZero())
	assert.Equal(t, uint64(9), ctx.Seed())

	n := sim.NewNetwork("cold")
	c, err := n.AddCoordinate("X", fixed.One)
	require.NoError(t, err)
	ctx.SetNetwork(n)
	assert.True(t, c.P().Value().IsZero())
}
