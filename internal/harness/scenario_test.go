package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/fixed"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "free_particles.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "free_particles", s.Name)
	assert.NotEmpty(t, s.Description)
	assert.Equal(t, filepath.Join("testdata", "networks", "free.cue"), s.Network)
	assert.Equal(t, 3, s.Steps)
	assert.Nil(t, s.Seed)
	assert.Nil(t, s.Temperature)

	require.Len(t, s.Assertions, 4)
	assert.Equal(t, AssertFinal, s.Assertions[0].Type)
	assert.Equal(t, "0.030000000", s.Assertions[0].Value.String())
	assert.True(t, s.Assertions[0].Tolerance.IsZero())
	assert.Equal(t, "0.000000001", s.Assertions[2].Tolerance.String())
	assert.Equal(t, AssertRoundTrip, s.Assertions[3].Type)
	assert.Zero(t, s.Assertions[3].Steps)
}

func TestLoadScenario_Overrides(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "notpair_cold.yaml"))
	require.NoError(t, err)
	require.NotNil(t, s.Seed)
	assert.Equal(t, uint64(3), *s.Seed)
	assert.Equal(t, []string{"X", "Y"}, s.Assertions[0].Coordinates)
	assert.True(t, fixed.One.Equal(s.Assertions[0].Value))
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"typo.yaml", "field assertion not found"},
		{"bad_type.yaml", `unknown assertion type "median"`},
		{"missing_network.yaml", "network file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata", "invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadScenario(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateScenario(t *testing.T) {
	network := filepath.Join("testdata", "networks", "free.cue")
	neg := fixed.MustParse("-1")

	tests := []struct {
		name     string
		scenario Scenario
		want     string
	}{
		{"no name", Scenario{Network: network, Steps: 1}, "name is required"},
		{"no network", Scenario{Name: "n", Steps: 1}, "network is required"},
		{"no steps", Scenario{Name: "n", Network: network}, "steps must be positive"},
		{"negative temperature", Scenario{Name: "n", Network: network, Steps: 1, Temperature: &neg}, "temperature"},
		{"no assertions", Scenario{Name: "n", Network: network, Steps: 1}, "assertions list is required"},
		{
			"average without coordinate",
			Scenario{Name: "n", Network: network, Steps: 1, Assertions: []Assertion{{Type: AssertAverage}}},
			"coordinate is required",
		},
		{
			"sum without coordinates",
			Scenario{Name: "n", Network: network, Steps: 1, Assertions: []Assertion{{Type: AssertSumAverage}}},
			"coordinates list is required",
		},
		{
			"negative tolerance",
			Scenario{Name: "n", Network: network, Steps: 1, Assertions: []Assertion{{Type: AssertFinal, Coordinate: "X", Tolerance: neg}}},
			"tolerance",
		},
		{
			"missing type",
			Scenario{Name: "n", Network: network, Steps: 1, Assertions: []Assertion{{}}},
			"type is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScenario(&tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_Directory(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"free_particles", "fulladder_011", "notpair_cold"}, names)

	_, err = LoadScenarios(filepath.Join("testdata", "invalid"))
	assert.Error(t, err)
}
