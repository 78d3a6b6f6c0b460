package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_FreeParticles(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "free_particles"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors=%v", result.Errors)
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	result, err := Run(loadScenario(t, "free_particles"))
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "free_particles", result))
}
