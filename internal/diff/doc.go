// Package diff provides static differentiable functions: pure functions of N
// named formal arguments that know their N partial derivatives.
//
// Two representations satisfy Func:
//
//   - Poly, an exact multivariate polynomial with Fixed coefficients. Every
//     potential used by the simulator (quadratic and quartic wells, the
//     logic-gate residuals, kinetic energy, the double well) is a polynomial,
//     so partials are derived symbolically and are correct by construction.
//     Evaluation is exact over the common denominator and rounds once.
//
//   - Custom, a closure-backed function whose partials are supplied by the
//     caller. This is the escape hatch for embedders with non-polynomial
//     interactions.
package diff
