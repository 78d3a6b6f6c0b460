// Package netspec loads network definitions written in CUE and builds them
// into ready-to-step simulation contexts.
//
// A file declares one or more networks under the top-level "network" field:
//
//	network: notpair: {
//		time_delta:  0.01
//		seed:        1
//		temperature: 0
//		coordinates: {
//			X: {position: 1, bias: 1}
//			Y: {position: 0, bias: 0}
//		}
//		gates: [{kind: "not", inputs: ["X"], output: "Y"}]
//	}
//
// Coordinates are created in declaration order, which fixes the order in
// which momenta are thermalised.
package netspec
