package hamiltonian

import (
	"github.com/roach88/revsim/internal/dynamics"
	"github.com/roach88/revsim/internal/fixed"
)

// Partial is ∂H/∂v: a lazy sum of ∂term/∂v over the terms that reach v.
// Terms that do not mention v are never visited.
type Partial struct {
	v     dynamics.Func
	terms []*Term
	parts []dynamics.Func
}

func (p *Partial) Name() string { return "dH/d" + p.v.Name() }

// Terms returns the terms summed by p.
func (p *Partial) Terms() []*Term {
	return append([]*Term(nil), p.terms...)
}

func (p *Partial) resolve() ([]dynamics.Func, error) {
	if p.parts != nil || len(p.terms) == 0 {
		return p.parts, nil
	}
	parts := make([]dynamics.Func, 0, len(p.terms))
	for _, t := range p.terms {
		d, err := t.DynPartial(p.v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}
	p.parts = parts
	return parts, nil
}

// EvolveTo evolves every contributing term partial to t.
func (p *Partial) EvolveTo(t int64) error {
	parts, err := p.resolve()
	if err != nil {
		return err
	}
	for _, d := range parts {
		if err := d.EvolveTo(t); err != nil {
			return err
		}
	}
	return nil
}

// Eval sums the contributing term partials at their current state.
func (p *Partial) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	parts, err := p.resolve()
	if err != nil {
		return fixed.Zero, err
	}
	total := fixed.Zero
	for _, d := range parts {
		x, err := d.Eval(extra...)
		if err != nil {
			return fixed.Zero, err
		}
		total = total.Add(x)
	}
	return total, nil
}

// At sums the contributing term partials at t.
func (p *Partial) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	parts, err := p.resolve()
	if err != nil {
		return fixed.Zero, err
	}
	total := fixed.Zero
	for _, d := range parts {
		x, err := d.At(t, extra...)
		if err != nil {
			return fixed.Zero, err
		}
		total = total.Add(x)
	}
	return total, nil
}
