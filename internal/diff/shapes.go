package diff

import (
	"math/big"

	"github.com/roach88/revsim/internal/fixed"
)

var half = big.NewRat(1, 2)

var (
	unary   = []string{"x"}
	binary  = []string{"x", "y"}
	ternary = []string{"x", "y", "z"}
)

// Constant returns the nullary function c.
func Constant(c fixed.Fixed) *Poly {
	return constant(0, c.Rat()).build("constant", nil)
}

// Quadratic returns c2·x² + c1·x + c0.
func Quadratic(c2, c1, c0 fixed.Fixed) *Poly {
	return univariate("quadratic", c2, c1, c0)
}

// Quartic returns c4·x⁴ + c3·x³ + c2·x² + c1·x + c0.
func Quartic(c4, c3, c2, c1, c0 fixed.Fixed) *Poly {
	return univariate("quartic", c4, c3, c2, c1, c0)
}

// StandardQuartic returns x⁴, the quartic with coefficients (1, 0, 0, 0, 0).
func StandardQuartic() *Poly {
	return Quartic(fixed.One, fixed.Zero, fixed.Zero, fixed.Zero, fixed.Zero)
}

// Proportional returns k·x. It is used for velocities, v = p/m.
func Proportional(k fixed.Fixed) *Poly {
	return univariate("proportional", k, fixed.Zero)
}

// Kinetic returns ½·m·v² over the argument "v".
func Kinetic(m fixed.Fixed) *Poly {
	v := variable(1, 0)
	return v.mul(v).scale(halfOf(m)).build("kinetic", []string{"v"})
}

// Bias returns the memory-cell potential ½·k·(x−b)².
func Bias(k, b fixed.Fixed) *Poly {
	r := variable(1, 0).add(constant(1, b.Neg().Rat()))
	return r.mul(r).scale(halfOf(k)).build("memory", unary)
}

// DoubleWell returns the range binder ½·k·(x−b1)²·(x−b2)², whose minima
// sit at b1 and b2.
func DoubleWell(k, b1, b2 fixed.Fixed) *Poly {
	r1 := variable(1, 0).add(constant(1, b1.Neg().Rat()))
	r2 := variable(1, 0).add(constant(1, b2.Neg().Rat()))
	r := r1.mul(r2)
	return r.mul(r).scale(halfOf(k)).build("doublewell", unary)
}

// NotPair returns ½·k·(x+y−1)², minimised when y = ¬x.
func NotPair(k fixed.Fixed) *Poly {
	r := variable(2, 0).add(variable(2, 1)).add(constant(2, big.NewRat(-1, 1)))
	return r.mul(r).scale(halfOf(k)).build("not", binary)
}

// AndGate returns ½·k·(z−xy)², minimised when z = x∧y.
func AndGate(k fixed.Fixed) *Poly {
	return gate("and", k, variable(3, 0).mul(variable(3, 1)))
}

// OrGate returns ½·k·(z−x−y+xy)², minimised when z = x∨y.
func OrGate(k fixed.Fixed) *Poly {
	x, y := variable(3, 0), variable(3, 1)
	or := x.add(y).add(x.mul(y).scale(big.NewRat(-1, 1)))
	return gate("or", k, or)
}

// XorGate returns ½·k·(z−x−y+2xy)², minimised when z = x⊕y.
func XorGate(k fixed.Fixed) *Poly {
	x, y := variable(3, 0), variable(3, 1)
	xor := x.add(y).add(x.mul(y).scale(big.NewRat(-2, 1)))
	return gate("xor", k, xor)
}

// gate returns ½·k·(z − g(x, y))².
func gate(name string, k fixed.Fixed, g *builder) *Poly {
	r := variable(3, 2).add(g.scale(big.NewRat(-1, 1)))
	return r.mul(r).scale(halfOf(k)).build(name, ternary)
}

// univariate builds Σ c[i]·x^(n-1-i) from highest power to constant.
func univariate(name string, coeffs ...fixed.Fixed) *Poly {
	b := newBuilder(1)
	n := len(coeffs)
	for i, c := range coeffs {
		b.addTerm(c.Rat(), []int{n - 1 - i})
	}
	return b.build(name, unary)
}

func halfOf(k fixed.Fixed) *big.Rat {
	return new(big.Rat).Mul(k.Rat(), half)
}
