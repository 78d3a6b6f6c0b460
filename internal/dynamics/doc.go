// Package dynamics implements functions of simulated time and the lazy
// leapfrog integrator that drives them.
//
// A Func can be asked for its value at any integer time index. Asking first
// evolves whatever state the function reads to that time, then evaluates.
// Var is the only stateful Func: it holds a Fixed value at an integer time
// and steps itself by centred differences of its time derivative, which is
// itself a Func:
//
//	forward:  value += 2Δt · deriv(time+1); time += 2
//	backward: value -= 2Δt · deriv(time-1); time -= 2
//
// Both updates read the derivative at the same midpoint for a given pair of
// states, so a backward step cancels the matching forward step bit for bit.
//
// PARITY:
//
// A Var only ever visits times of the parity it was created with. A request
// for a time of the other parity is nudged one index towards the Var's
// current time; it is never an error.
//
// LIGHT CONE:
//
// Evaluating a derivative pulls its operands to the midpoint, which may step
// neighbouring variables, which pull their own derivatives, and so on. Only
// variables coupled to the one being stepped are touched.
//
// DIFFERENTIATION:
//
// Derived composes a diff.Func with underlying Funcs. DiffDerived also
// answers DynPartial(v): the total derivative with respect to v through any
// depth of intermediate DiffDerived arguments, memoised per target.
//
// Everything here is single-threaded. A Var that is asked to move while it
// is already mid-step reports REENTRANT_STEP instead of corrupting state.
package dynamics
