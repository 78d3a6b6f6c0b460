package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/revsim/internal/fixed"
)

// Scenario defines a simulation test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Network is the path of the CUE file defining the network.
	// Relative paths are resolved against the scenario file's directory.
	Network string `yaml:"network"`

	// Select names the network to run when the file declares several.
	Select string `yaml:"select,omitempty"`

	// Steps is the number of leapfrog steps to run.
	Steps int `yaml:"steps"`

	// Seed, Temperature and TimeDelta override the network file.
	Seed        *uint64      `yaml:"seed,omitempty"`
	Temperature *fixed.Fixed `yaml:"temperature,omitempty"`
	TimeDelta   *fixed.Fixed `yaml:"time_delta,omitempty"`

	// RunID is the fixed run ID used when the run is persisted. If empty,
	// defaults to "test-run-default" for deterministic stores.
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the run.
	// Supported types: average, sum_average, final, roundtrip
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "average": a coordinate's mean position is within tolerance of value
	// - "sum_average": the sum of several coordinates' means is within
	//   tolerance of value
	// - "final": a coordinate's final position is within tolerance of value
	// - "roundtrip": stepping forward then backward restores every
	//   coordinate bit for bit
	Type string `yaml:"type"`

	// Coordinate is used by average and final.
	Coordinate string `yaml:"coordinate,omitempty"`

	// Coordinates is used by sum_average.
	Coordinates []string `yaml:"coordinates,omitempty"`

	// Value and Tolerance bound the measured quantity.
	Value     fixed.Fixed `yaml:"value,omitempty"`
	Tolerance fixed.Fixed `yaml:"tolerance,omitempty"`

	// Steps is the round-trip length (used by roundtrip). Zero means the
	// scenario's step count.
	Steps int `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertAverage    = "average"
	AssertSumAverage = "sum_average"
	AssertFinal      = "final"
	AssertRoundTrip  = "roundtrip"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Network != "" && !filepath.IsAbs(scenario.Network) {
		scenario.Network = filepath.Join(filepath.Dir(path), scenario.Network)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml or .yml file in dir, in file name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Network == "" {
		return fmt.Errorf("network is required")
	}
	if _, err := os.Stat(s.Network); err != nil {
		return fmt.Errorf("network file not found: %s", s.Network)
	}
	if s.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if s.Temperature != nil && s.Temperature.Sign() < 0 {
		return fmt.Errorf("temperature must not be negative")
	}
	if s.TimeDelta != nil && s.TimeDelta.Sign() <= 0 {
		return fmt.Errorf("time_delta must be positive")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertAverage, AssertFinal:
		if a.Coordinate == "" {
			return fmt.Errorf("assertions[%d]: coordinate is required for %s", index, a.Type)
		}
	case AssertSumAverage:
		if len(a.Coordinates) == 0 {
			return fmt.Errorf("assertions[%d]: coordinates list is required for sum_average", index)
		}
	case AssertRoundTrip:
		if a.Steps < 0 {
			return fmt.Errorf("assertions[%d]: steps must be non-negative for roundtrip", index)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Tolerance.Sign() < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must not be negative", index)
	}
	return nil
}
