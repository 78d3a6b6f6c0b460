// Package testutil provides deterministic helpers shared by tests: a fixed
// run-ID generator and a zero-temperature simulation context whose runs are
// reproducible bit for bit.
package testutil
