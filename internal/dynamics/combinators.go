package dynamics

import (
	"fmt"
	"strings"

	"github.com/roach88/revsim/internal/fixed"
)

// Constant is a Func with the same value at every time.
type Constant struct {
	value fixed.Fixed
}

// NewConstant returns the constant c.
func NewConstant(c fixed.Fixed) *Constant { return &Constant{value: c} }

// One returns the constant 1.
func One() *Constant { return NewConstant(fixed.One) }

// Zero returns the constant 0.
func Zero() *Constant { return NewConstant(fixed.Zero) }

func (c *Constant) Name() string         { return c.value.String() }
func (c *Constant) EvolveTo(int64) error { return nil }
func (c *Constant) Args() []Func         { return nil }
func (c *Constant) DependsOn(Func) bool  { return false }
func (c *Constant) Value() fixed.Fixed   { return c.value }
func (c *Constant) DynPartial(v Func) (Func, error) {
	return nil, newNoIntermediateError(c.Name(), v.Name())
}

func (c *Constant) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	return c.value, nil
}

func (c *Constant) At(_ int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	return c.value, nil
}

// Neg is the negation combinator, (−f)(t) = −(f(t)).
type Neg struct {
	f Func
}

// NewNeg returns −f.
func NewNeg(f Func) *Neg { return &Neg{f: f} }

func (n *Neg) Name() string           { return "-" + n.f.Name() }
func (n *Neg) Args() []Func           { return []Func{n.f} }
func (n *Neg) EvolveTo(t int64) error { return n.f.EvolveTo(t) }
func (n *Neg) DependsOn(v Func) bool  { return DependsOn(n.f, v) }

func (n *Neg) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := n.f.Eval(extra...)
	return x.Neg(), err
}

func (n *Neg) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := n.f.At(t, extra...)
	return x.Neg(), err
}

// DynPartial returns −∂f/∂v.
func (n *Neg) DynPartial(v Func) (Func, error) {
	p, err := PartialOf(n.f, v)
	if err != nil {
		return nil, err
	}
	return NewNeg(p), nil
}

// Sum is the N-ary sum combinator. The empty sum is 0.
type Sum struct {
	name  string
	terms []Func
}

// NewSum returns f₁ + f₂ + … + fₙ.
func NewSum(terms ...Func) *Sum {
	return &Sum{terms: append([]Func(nil), terms...)}
}

// NewNamedSum returns a Sum with an explicit display name.
func NewNamedSum(name string, terms ...Func) *Sum {
	s := NewSum(terms...)
	s.name = name
	return s
}

func (s *Sum) Name() string {
	if s.name != "" {
		return s.name
	}
	names := make([]string, len(s.terms))
	for i, f := range s.terms {
		names[i] = f.Name()
	}
	return "(" + strings.Join(names, " + ") + ")"
}

func (s *Sum) Args() []Func { return append([]Func(nil), s.terms...) }

// Len returns the number of summands.
func (s *Sum) Len() int { return len(s.terms) }

func (s *Sum) EvolveTo(t int64) error {
	for _, f := range s.terms {
		if err := f.EvolveTo(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sum) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	total := fixed.Zero
	for _, f := range s.terms {
		x, err := f.Eval(extra...)
		if err != nil {
			return fixed.Zero, err
		}
		total = total.Add(x)
	}
	return total, nil
}

func (s *Sum) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	total := fixed.Zero
	for _, f := range s.terms {
		x, err := f.At(t, extra...)
		if err != nil {
			return fixed.Zero, err
		}
		total = total.Add(x)
	}
	return total, nil
}

func (s *Sum) DependsOn(v Func) bool {
	for _, f := range s.terms {
		if DependsOn(f, v) {
			return true
		}
	}
	return false
}

// DynPartial returns the sum of the partials of the summands that depend on
// v.
func (s *Sum) DynPartial(v Func) (Func, error) {
	parts, _, err := partialsOf(s.terms, v)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, newNoIntermediateError(s.Name(), v.Name())
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return NewSum(parts...), nil
}

// Product is the binary product combinator, (f·g)(t) = f(t)·g(t).
type Product struct {
	f, g Func
}

// NewProduct returns f·g.
func NewProduct(f, g Func) *Product { return &Product{f: f, g: g} }

func (p *Product) Name() string { return p.f.Name() + "*" + p.g.Name() }
func (p *Product) Args() []Func { return []Func{p.f, p.g} }

func (p *Product) EvolveTo(t int64) error {
	if err := p.f.EvolveTo(t); err != nil {
		return err
	}
	return p.g.EvolveTo(t)
}

func (p *Product) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := p.f.Eval(extra...)
	if err != nil {
		return fixed.Zero, err
	}
	y, err := p.g.Eval(extra...)
	if err != nil {
		return fixed.Zero, err
	}
	return x.Mul(y), nil
}

func (p *Product) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := p.f.At(t, extra...)
	if err != nil {
		return fixed.Zero, err
	}
	y, err := p.g.At(t, extra...)
	if err != nil {
		return fixed.Zero, err
	}
	return x.Mul(y), nil
}

func (p *Product) DependsOn(v Func) bool {
	return DependsOn(p.f, v) || DependsOn(p.g, v)
}

// DynPartial applies the product rule, f'·g + f·g'.
func (p *Product) DynPartial(v Func) (Func, error) {
	var parts []Func
	if DependsOn(p.f, v) {
		df, err := PartialOf(p.f, v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewProduct(df, p.g))
	}
	if DependsOn(p.g, v) {
		dg, err := PartialOf(p.g, v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewProduct(p.f, dg))
	}
	switch len(parts) {
	case 0:
		return nil, newNoIntermediateError(p.Name(), v.Name())
	case 1:
		return parts[0], nil
	}
	return NewSum(parts...), nil
}

// Scale is the scalar-multiple combinator, (k·f)(t) = k·f(t).
type Scale struct {
	k fixed.Fixed
	f Func
}

// NewScale returns k·f.
func NewScale(k fixed.Fixed, f Func) *Scale { return &Scale{k: k, f: f} }

func (s *Scale) Name() string           { return fmt.Sprintf("%s*%s", s.k, s.f.Name()) }
func (s *Scale) Args() []Func           { return []Func{s.f} }
func (s *Scale) EvolveTo(t int64) error { return s.f.EvolveTo(t) }
func (s *Scale) DependsOn(v Func) bool  { return DependsOn(s.f, v) }

func (s *Scale) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := s.f.Eval(extra...)
	return s.k.Mul(x), err
}

func (s *Scale) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	x, err := s.f.At(t, extra...)
	return s.k.Mul(x), err
}

// DynPartial returns k·∂f/∂v.
func (s *Scale) DynPartial(v Func) (Func, error) {
	p, err := PartialOf(s.f, v)
	if err != nil {
		return nil, err
	}
	return NewScale(s.k, p), nil
}
