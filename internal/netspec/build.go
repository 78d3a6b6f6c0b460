package netspec

import (
	"fmt"

	"github.com/roach88/revsim/internal/gates"
	"github.com/roach88/revsim/internal/hamiltonian"
	"github.com/roach88/revsim/internal/sim"
)

// BuildNetwork creates the coordinates and interactions of s. Coordinates
// with a bias get a memory cell before any gate is wired.
func BuildNetwork(s *Spec, opts ...sim.NetworkOption) (*sim.Network, error) {
	n := sim.NewNetwork(s.Name, opts...)
	for _, cs := range s.Coordinates {
		copts := []sim.CoordOption{sim.WithMass(cs.Mass)}
		if cs.Momentum != nil {
			copts = append(copts, sim.WithMomentum(*cs.Momentum))
		}
		c, err := n.AddCoordinate(cs.Name, cs.Position, copts...)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", s.Name, err)
		}
		if cs.Bias != nil {
			if _, err := gates.Memory(n, c, *cs.Bias, cs.Stiffness); err != nil {
				return nil, fmt.Errorf("network %s: memory %s: %w", s.Name, cs.Name, err)
			}
		}
	}

	for i, g := range s.Gates {
		names := g.wired()
		cs := make([]*hamiltonian.Coord, len(names))
		for j, name := range names {
			c, ok := n.Coordinate(name)
			if !ok {
				return nil, &CompileError{Field: fmt.Sprintf("gates[%d]", i), Message: fmt.Sprintf("unknown coordinate %q", name), Pos: g.Pos}
			}
			cs[j] = c
		}

		var err error
		switch g.Kind {
		case KindNot:
			_, err = gates.Not(n, cs[0], cs[1], g.Stiffness)
		case KindAnd:
			_, err = gates.And(n, cs[0], cs[1], cs[2], g.Stiffness)
		case KindOr:
			_, err = gates.Or(n, cs[0], cs[1], cs[2], g.Stiffness)
		case KindXor:
			_, err = gates.Xor(n, cs[0], cs[1], cs[2], g.Stiffness)
		case KindRange:
			_, err = gates.RangeBinder(n, cs[0], g.Low, g.High, g.Stiffness)
		default:
			err = &CompileError{Field: fmt.Sprintf("gates[%d].kind", i), Message: fmt.Sprintf("unknown gate kind %q", g.Kind), Pos: g.Pos}
		}
		if err != nil {
			return nil, fmt.Errorf("network %s: gate %d: %w", s.Name, i, err)
		}
	}
	return n, nil
}

// Build creates the network of s and attaches it to a new context
// configured from s. Options in opts are applied after the spec's own and
// so override them.
func Build(s *Spec, opts ...sim.Option) (*sim.Context, error) {
	n, err := BuildNetwork(s)
	if err != nil {
		return nil, err
	}
	base := []sim.Option{
		sim.WithTimeDelta(s.TimeDelta),
		sim.WithSeed(s.Seed),
		sim.WithTemperature(s.Temperature),
	}
	ctx, err := sim.NewContext(append(append(base, opts...), sim.WithNetwork(n))...)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", s.Name, err)
	}
	return ctx, nil
}
