// Package sim drives simulations: a Context owns the time step, the current
// time index and the random source; a Network owns coordinates and the
// Hamiltonian that couples them.
//
// One step is one full leapfrog cycle, two time indices. Stepping moves
// every momentum to the midpoint first, then every position to the new
// time, so each phase reads only state that is already in place:
//
//	forward from t:  p → t+1, then q → t+2
//	backward from t: p → t-1, then q → t-2
//
// Momenta are thermalised from N(0, √(T·m)) when a network is attached to a
// context, in coordinate-creation order, using the context's seeded source.
// Two contexts with the same seed produce bit-identical runs.
//
// The package is single-threaded; callers that want to abort a long run do
// so between StepForward calls.
package sim
