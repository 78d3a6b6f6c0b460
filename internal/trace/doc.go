// Package trace records coordinate trajectories for diagnostics.
//
// Recorder samples the full (qt, q, pt, p) state of selected coordinates
// and writes it as CSV: one header row naming "<var>.qt,<var>.q,<var>.pt,<var>.p"
// per coordinate, then one row per sample with integer times and Fixed
// values at full precision.
//
// Store keeps runs and their samples in SQLite for later analysis. It is
// write-mostly diagnostics storage: nothing read back from it is ever fed
// into a simulation.
//
// The store is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
package trace
