package gates

import (
	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/hamiltonian"
	"github.com/roach88/revsim/internal/sim"
)

// DefaultStiffness is the well stiffness k used when callers have no
// preference.
var DefaultStiffness = fixed.One

// AdderStiffness is the gate stiffness BuildFullAdder wires its gates
// with. Stiffer wells oscillate faster, so a 1000-step average covers
// enough periods to settle near the gate's logic level.
var AdderStiffness = fixed.FromInt(50)

// ClampStiffness is the memory-cell stiffness BuildFullAdder holds its
// inputs with. It keeps the inputs near their bits while the gates swing.
var ClampStiffness = fixed.FromInt(2500)

// Undecided is the position every gate output node starts from, whatever
// the inputs.
var Undecided = fixed.MustRatio(1, 2)

// Memory holds c near bias.
//
//	Function: ½k(c−bias)²
func Memory(n *sim.Network, c *hamiltonian.Coord, bias, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.Bias(k, bias), c)
}

// Not couples y to the complement of x.
//
//	Function: ½k(x+y−1)²
func Not(n *sim.Network, x, y *hamiltonian.Coord, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.NotPair(k), x, y)
}

// And drives z towards x∧y.
//
//	Function: ½k(z−xy)²
func And(n *sim.Network, x, y, z *hamiltonian.Coord, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.AndGate(k), x, y, z)
}

// Or drives z towards x∨y.
//
//	Function: ½k(z−x−y+xy)²
func Or(n *sim.Network, x, y, z *hamiltonian.Coord, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.OrGate(k), x, y, z)
}

// Xor drives z towards x⊕y.
//
//	Function: ½k(z−x−y+2xy)²
func Xor(n *sim.Network, x, y, z *hamiltonian.Coord, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.XorGate(k), x, y, z)
}

// RangeBinder confines c to the neighbourhood of lo and hi.
//
//	Function: ½k(c−lo)²(c−hi)²
func RangeBinder(n *sim.Network, c *hamiltonian.Coord, lo, hi, k fixed.Fixed) (*hamiltonian.Term, error) {
	return n.AddInteraction(diff.DoubleWell(k, lo, hi), c)
}

// Bit adds an input coordinate sitting exactly at logical v, held there by
// a memory cell of stiffness k.
func Bit(n *sim.Network, name string, v bool, k fixed.Fixed) (*hamiltonian.Coord, error) {
	b := level(v)
	c, err := n.AddCoordinate(name, b)
	if err != nil {
		return nil, err
	}
	if _, err := Memory(n, c, b, k); err != nil {
		return nil, err
	}
	return c, nil
}

// Level reads a position, typically a time average, as a logic level:
// true at or above one half.
func Level(x float64) bool {
	return x >= 0.5
}

func level(v bool) fixed.Fixed {
	if v {
		return fixed.One
	}
	return fixed.Zero
}

// node returns the named coordinate, creating it at Undecided when
// missing.
func node(n *sim.Network, name string) (*hamiltonian.Coord, error) {
	if c, ok := n.Coordinate(name); ok {
		return c, nil
	}
	return n.AddCoordinate(name, Undecided)
}
