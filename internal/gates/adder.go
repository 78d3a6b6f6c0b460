package gates

import (
	"fmt"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/hamiltonian"
	"github.com/roach88/revsim/internal/sim"
)

// HalfAdder wires a half adder over a and b, creating "<prefix>S" and
// "<prefix>C" at Undecided unless they already exist.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = a ⊕ b
//	          c = a ∧ b
func HalfAdder(n *sim.Network, prefix string, a, b *hamiltonian.Coord, k fixed.Fixed) (sum, carry *hamiltonian.Coord, err error) {
	if sum, err = node(n, prefix+"S"); err != nil {
		return nil, nil, err
	}
	if carry, err = node(n, prefix+"C"); err != nil {
		return nil, nil, err
	}
	if _, err = Xor(n, a, b, sum, k); err != nil {
		return nil, nil, fmt.Errorf("half adder %s: %w", prefix, err)
	}
	if _, err = And(n, a, b, carry, k); err != nil {
		return nil, nil, fmt.Errorf("half adder %s: %w", prefix, err)
	}
	return sum, carry, nil
}

// FullAdder wires a full adder out of two XORs, two ANDs and an OR:
//
//	X  = a ⊕ b     S0 = X ⊕ cin
//	A1 = a ∧ b     A2 = X ∧ cin
//	S1 = A1 ∨ A2
//
// Internal nodes are named "<prefix>X", "<prefix>S0" and so on. They are
// reused when they already exist and otherwise start at Undecided.
//
//	Inputs: a, b, cin
//	Outputs: s (S0), cout (S1)
func FullAdder(n *sim.Network, prefix string, a, b, cin *hamiltonian.Coord, k fixed.Fixed) (sum, carry *hamiltonian.Coord, err error) {
	names := []string{"X", "S0", "A1", "A2", "S1"}
	c := make(map[string]*hamiltonian.Coord, len(names))
	for _, name := range names {
		if c[name], err = node(n, prefix+name); err != nil {
			return nil, nil, err
		}
	}

	wire := []struct {
		gate    func(*sim.Network, *hamiltonian.Coord, *hamiltonian.Coord, *hamiltonian.Coord, fixed.Fixed) (*hamiltonian.Term, error)
		x, y, z *hamiltonian.Coord
	}{
		{Xor, a, b, c["X"]},
		{Xor, c["X"], cin, c["S0"]},
		{And, a, b, c["A1"]},
		{And, c["X"], cin, c["A2"]},
		{Or, c["A1"], c["A2"], c["S1"]},
	}
	for _, w := range wire {
		if _, err = w.gate(n, w.x, w.y, w.z, k); err != nil {
			return nil, nil, fmt.Errorf("full adder %s: %w", prefix, err)
		}
	}
	return c["S0"], c["S1"], nil
}

// BuildFullAdder builds the demo network and attaches it to ctx. Inputs A,
// B and C are held at the given bits by ClampStiffness memory cells and a
// full adder of AdderStiffness gates runs over them. The sum is node S0
// and the carry S1.
func BuildFullAdder(ctx *sim.Context, a, b, c bool) (*sim.Network, error) {
	n := sim.NewNetwork("fulladder")
	inputs := make([]*hamiltonian.Coord, 3)
	for i, in := range []struct {
		name string
		v    bool
	}{{"A", a}, {"B", b}, {"C", c}} {
		coord, err := Bit(n, in.name, in.v, ClampStiffness)
		if err != nil {
			return nil, err
		}
		inputs[i] = coord
	}
	if _, _, err := FullAdder(n, "", inputs[0], inputs[1], inputs[2], AdderStiffness); err != nil {
		return nil, err
	}
	ctx.SetNetwork(n)
	return n, nil
}
