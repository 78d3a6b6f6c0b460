package hamiltonian

import (
	"fmt"

	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/dynamics"
	"github.com/roach88/revsim/internal/fixed"
)

// Coord is a canonical coordinate pair (q, p) with velocity v = p/m.
type Coord struct {
	name    string
	mass    fixed.Fixed
	h       *Hamiltonian
	q       *dynamics.Var
	p       *dynamics.Var
	v       *dynamics.DiffDerived
	kinetic *Term
}

// NewCoord creates the pair "q<name>" at time 0 and "p<name>" at time 1,
// registers both with h, adds the kinetic term ½·m·v² and wires
// dq/dt = ∂H/∂p and dp/dt = −∂H/∂q. Later terms touching the pair rewire it
// automatically.
func NewCoord(h *Hamiltonian, name string, q0, p0, mass fixed.Fixed) (*Coord, error) {
	return NewCoordAt(h, name, 0, q0, p0, mass)
}

// NewCoordAt is NewCoord for a pair joining a network already at time t:
// q starts at t and p at t+1. An odd t is rounded down to even.
func NewCoordAt(h *Hamiltonian, name string, t int64, q0, p0, mass fixed.Fixed) (*Coord, error) {
	if t%2 != 0 {
		t--
	}
	inv, err := fixed.One.Div(mass)
	if err != nil {
		return nil, &dynamics.Error{
			Code:    dynamics.ErrCodeDivideByZero,
			Message: "coordinate mass must be non-zero",
			Func:    name,
			Err:     err,
		}
	}
	c := &Coord{
		name: name,
		mass: mass,
		h:    h,
		q:    dynamics.NewVar("q"+name, q0, t),
		p:    dynamics.NewVar("p"+name, p0, t+1),
	}
	c.v, err = dynamics.NewNamedDiffDerived("v"+name, diff.Proportional(inv), c.p)
	if err != nil {
		return nil, err
	}
	c.kinetic, err = NewTerm(diff.Kinetic(mass), c.v)
	if err != nil {
		return nil, err
	}

	h.Register(c.q)
	h.Register(c.p)
	h.Watch(c)
	if err := h.AddTerm(c.kinetic); err != nil {
		return nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	if err := c.Rewire(); err != nil {
		return nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	return c, nil
}

func (c *Coord) Name() string { return c.name }

// Q returns the position variable.
func (c *Coord) Q() *dynamics.Var { return c.q }

// P returns the momentum variable.
func (c *Coord) P() *dynamics.Var { return c.p }

// V returns the velocity p/m.
func (c *Coord) V() *dynamics.DiffDerived { return c.v }

// Mass returns m.
func (c *Coord) Mass() fixed.Fixed { return c.mass }

// Kinetic returns the ½·m·v² term.
func (c *Coord) Kinetic() *Term { return c.kinetic }

// Bind attaches the time base to both variables.
func (c *Coord) Bind(tb dynamics.Timebase) {
	c.q.Bind(tb)
	c.p.Bind(tb)
}

// Rewire sets dq/dt = ∂H/∂p and dp/dt = −∂H/∂q from the current
// Hamiltonian.
func (c *Coord) Rewire() error {
	dq, err := c.h.DynPartial(c.p)
	if err != nil {
		return err
	}
	dp, err := c.h.DynPartial(c.q)
	if err != nil {
		return err
	}
	c.q.SetDerivative(dq)
	c.p.SetDerivative(dynamics.NewNeg(dp))
	c.h.logger.Debug("coordinate rewired",
		"coord", c.name,
		"q_terms", len(dp.Terms()),
		"p_terms", len(dq.Terms()))
	return nil
}

// TermsChanged rewires the coordinate when a new term reaches q, p or v.
func (c *Coord) TermsChanged(affected []dynamics.Func) error {
	for _, f := range affected {
		if f == dynamics.Func(c.q) || f == dynamics.Func(c.p) || f == dynamics.Func(c.v) {
			return c.Rewire()
		}
	}
	return nil
}

// State is the full (q, p, qt, pt) state of a coordinate.
type State struct {
	Name string
	Q    dynamics.VarState
	P    dynamics.VarState
}

// State captures the coordinate's current state.
func (c *Coord) State() State {
	return State{Name: c.name, Q: c.q.Snapshot(), P: c.p.Snapshot()}
}

// Restore resets both variables to s.
func (c *Coord) Restore(s State) {
	c.q.Restore(s.Q)
	c.p.Restore(s.P)
}

// Equal reports whether two states are bit-identical.
func (s State) Equal(o State) bool {
	return s.Name == o.Name &&
		s.Q.Time == o.Q.Time && s.Q.Value.Equal(o.Q.Value) &&
		s.P.Time == o.P.Time && s.P.Value.Equal(o.P.Value)
}
