package diff

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/revsim/internal/fixed"
)

// Monomial is Coef · Π args[i]^Exp[i].
type Monomial struct {
	Coef fixed.Fixed
	Exp  []int
}

func (m Monomial) degree() int {
	d := 0
	for _, e := range m.Exp {
		d += e
	}
	return d
}

// Poly is an exact multivariate polynomial over named arguments.
//
// Terms are kept canonical: no zero coefficients, one term per exponent
// vector, highest total degree first. Evaluation order is therefore fixed,
// which keeps results bit-identical from run to run.
type Poly struct {
	name   string
	args   []string
	terms  []Monomial
	degree int
	pows   []*big.Int // D^0 .. D^degree
}

// NewPoly builds a polynomial from explicit monomials. Every exponent vector
// must have one non-negative entry per argument.
func NewPoly(name string, args []string, terms ...Monomial) (*Poly, error) {
	if err := checkArgs(args); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b := newBuilder(len(args))
	for _, m := range terms {
		if len(m.Exp) != len(args) {
			return nil, fmt.Errorf("%s: exponent vector %v for %d arguments: %w", name, m.Exp, len(args), ErrArity)
		}
		for _, e := range m.Exp {
			if e < 0 {
				return nil, fmt.Errorf("%s: negative exponent in %v", name, m.Exp)
			}
		}
		b.addTerm(m.Coef.Rat(), m.Exp)
	}
	return b.build(name, args), nil
}

func (p *Poly) Name() string   { return p.name }
func (p *Poly) Args() []string { return append([]string(nil), p.args...) }
func (p *Poly) Arity() int     { return len(p.args) }

// Degree returns the highest total degree among the terms (0 for the zero
// polynomial).
func (p *Poly) Degree() int { return p.degree }

// Terms returns a copy of the canonical terms.
func (p *Poly) Terms() []Monomial {
	out := make([]Monomial, len(p.terms))
	for i, m := range p.terms {
		out[i] = Monomial{Coef: m.Coef, Exp: append([]int(nil), m.Exp...)}
	}
	return out
}

// Eval evaluates the polynomial exactly and rounds the result once.
func (p *Poly) Eval(args []fixed.Fixed) (fixed.Fixed, error) {
	if len(args) != len(p.args) {
		return fixed.Zero, fmt.Errorf("%s: got %d values for %d arguments: %w", p.name, len(args), len(p.args), ErrArity)
	}
	nums := make([]*big.Int, len(args))
	for i, a := range args {
		nums[i] = a.Numerator()
	}
	total := new(big.Int)
	for _, m := range p.terms {
		prod := m.Coef.Numerator()
		for i, e := range m.Exp {
			for k := 0; k < e; k++ {
				prod.Mul(prod, nums[i])
			}
		}
		prod.Mul(prod, p.pows[p.degree-m.degree()])
		total.Add(total, prod)
	}
	return fixed.FromScaledNumerator(total, p.degree), nil
}

// Partial differentiates symbolically with respect to args[i].
func (p *Poly) Partial(i int) (Func, error) {
	if i < 0 || i >= len(p.args) {
		return nil, fmt.Errorf("%s: index %d: %w", p.name, i, ErrArgIndex)
	}
	b := newBuilder(len(p.args))
	for _, m := range p.terms {
		e := m.Exp[i]
		if e == 0 {
			continue
		}
		exp := append([]int(nil), m.Exp...)
		exp[i]--
		b.addTerm(new(big.Rat).Mul(m.Coef.Rat(), big.NewRat(int64(e), 1)), exp)
	}
	return b.build(partialName(p.name, p.args[i]), p.args), nil
}

// String renders the polynomial, e.g. "0.5*x^2 - 1*x + 0.5".
func (p *Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, m := range p.terms {
		c := m.Coef
		switch {
		case i == 0 && c.Sign() < 0:
			sb.WriteString("-")
			c = c.Neg()
		case i > 0 && c.Sign() < 0:
			sb.WriteString(" - ")
			c = c.Neg()
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(trimZeros(c.String()))
		for j, e := range m.Exp {
			switch {
			case e == 1:
				sb.WriteString("*" + p.args[j])
			case e > 1:
				sb.WriteString("*" + p.args[j] + "^" + strconv.Itoa(e))
			}
		}
	}
	return sb.String()
}

func trimZeros(s string) string {
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// builder accumulates a polynomial with exact rational coefficients. Each
// coefficient is rounded to the quantum only once, in build.
type builder struct {
	n     int
	terms map[string]*ratTerm
}

type ratTerm struct {
	coef *big.Rat
	exp  []int
}

func newBuilder(n int) *builder {
	return &builder{n: n, terms: make(map[string]*ratTerm)}
}

func expKey(exp []int) string {
	parts := make([]string, len(exp))
	for i, e := range exp {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

func (b *builder) addTerm(c *big.Rat, exp []int) {
	if c.Sign() == 0 {
		return
	}
	k := expKey(exp)
	if t, ok := b.terms[k]; ok {
		t.coef.Add(t.coef, c)
		return
	}
	b.terms[k] = &ratTerm{coef: new(big.Rat).Set(c), exp: append([]int(nil), exp...)}
}

func (b *builder) add(o *builder) *builder {
	out := b.clone()
	for _, t := range o.terms {
		out.addTerm(t.coef, t.exp)
	}
	return out
}

func (b *builder) scale(c *big.Rat) *builder {
	out := newBuilder(b.n)
	for _, t := range b.terms {
		out.addTerm(new(big.Rat).Mul(t.coef, c), t.exp)
	}
	return out
}

func (b *builder) mul(o *builder) *builder {
	out := newBuilder(b.n)
	for _, x := range b.terms {
		for _, y := range o.terms {
			exp := make([]int, b.n)
			for i := range exp {
				exp[i] = x.exp[i] + y.exp[i]
			}
			out.addTerm(new(big.Rat).Mul(x.coef, y.coef), exp)
		}
	}
	return out
}

func (b *builder) clone() *builder {
	out := newBuilder(b.n)
	for _, t := range b.terms {
		out.addTerm(t.coef, t.exp)
	}
	return out
}

func (b *builder) build(name string, args []string) *Poly {
	var terms []Monomial
	for _, t := range b.terms {
		c := fixed.FromRat(t.coef)
		if c.IsZero() {
			continue
		}
		terms = append(terms, Monomial{Coef: c, Exp: t.exp})
	}
	sort.Slice(terms, func(i, j int) bool {
		di, dj := terms[i].degree(), terms[j].degree()
		if di != dj {
			return di > dj
		}
		for k := range terms[i].Exp {
			if terms[i].Exp[k] != terms[j].Exp[k] {
				return terms[i].Exp[k] > terms[j].Exp[k]
			}
		}
		return false
	})
	deg := 0
	for _, m := range terms {
		if d := m.degree(); d > deg {
			deg = d
		}
	}
	pows := make([]*big.Int, deg+1)
	for k := range pows {
		pows[k] = fixed.DenominatorPower(k)
	}
	return &Poly{
		name:   name,
		args:   append([]string(nil), args...),
		terms:  terms,
		degree: deg,
		pows:   pows,
	}
}

// variable returns the polynomial args[i] over n arguments.
func variable(n, i int) *builder {
	exp := make([]int, n)
	exp[i] = 1
	b := newBuilder(n)
	b.addTerm(big.NewRat(1, 1), exp)
	return b
}

// constant returns the polynomial c over n arguments.
func constant(n int, c *big.Rat) *builder {
	b := newBuilder(n)
	b.addTerm(c, make([]int, n))
	return b
}
