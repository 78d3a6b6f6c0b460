// Package hamiltonian assembles energy terms into a Hamiltonian and wires
// canonical coordinates to its partial derivatives.
//
// A Term is one additive summand: a differentiable function of time over
// specific variables. The Hamiltonian indexes every term under each
// variable it reaches, directly or through intermediate functions such as a
// velocity p/m, so that ∂H/∂v sums only the terms that mention v.
//
// A Coord is a conjugate pair (q, p) with
//
//	dq/dt = +∂H/∂p    q on even time indices
//	dp/dt = −∂H/∂q    p on odd time indices
//
// and a kinetic term ½·m·v² over its velocity v = p/m. Coordinates watch the
// Hamiltonian and rewire their derivatives whenever a new term touches them.
package hamiltonian
