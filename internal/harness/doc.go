// Package harness runs simulation scenarios described in YAML and checks
// their time-averaged behaviour.
//
// A scenario names a CUE network file, a step count, and assertions:
//
//	name: fulladder_011
//	network: ../networks/fulladder.cue
//	steps: 1000
//	assertions:
//	  - type: average
//	    coordinate: S0
//	    value: 0
//	    tolerance: 0.15
//	  - type: roundtrip
//	    steps: 200
//
// Network paths are resolved relative to the scenario file. Every run
// records a full trace so results can be compared against golden CSV files
// or persisted to a trace store.
package harness
