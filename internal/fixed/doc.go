// Package fixed implements the signed fixed-point rational used by every
// simulated quantity.
//
// A Fixed is N/D where D is the process-wide Denominator and N is an
// arbitrary-precision integer. Addition, subtraction and negation act on N
// alone and are therefore exact and exactly invertible:
//
//	(x + y) - y == x   // bit-identical numerator, for all x, y
//
// Multiplication and division re-round the result to the quantum 1/D, half
// away from zero. Construction from a float or a decimal string rounds the
// same way.
//
// The zero value is 0 and is ready to use. Values are immutable; every
// operation returns a fresh Fixed.
package fixed
