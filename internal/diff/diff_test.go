package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/fixed"
)

func vals(xs ...string) []fixed.Fixed {
	out := make([]fixed.Fixed, len(xs))
	for i, x := range xs {
		out[i] = fixed.MustParse(x)
	}
	return out
}

func evalAt(t *testing.T, f Func, xs ...string) fixed.Fixed {
	t.Helper()
	v, err := f.Eval(vals(xs...))
	require.NoError(t, err)
	return v
}

func partialAt(t *testing.T, f Func, i int, xs ...string) fixed.Fixed {
	t.Helper()
	p, err := f.Partial(i)
	require.NoError(t, err)
	assert.Equal(t, f.Arity(), p.Arity())
	return evalAt(t, p, xs...)
}

func assertFixed(t *testing.T, want string, got fixed.Fixed) {
	t.Helper()
	assert.True(t, fixed.MustParse(want).Equal(got), "want %s, got %s", want, got)
}

func TestShapes(t *testing.T) {
	one := fixed.One

	tests := []struct {
		name    string
		f       Func
		at      []string
		value   string
		partial []string
	}{
		{"quadratic", Quadratic(one, fixed.Two, fixed.FromInt(3)), []string{"2"}, "11", []string{"6"}},
		{"standard quartic", StandardQuartic(), []string{"2"}, "16", []string{"32"}},
		{"proportional", Proportional(fixed.MustParse("0.25")), []string{"8"}, "2", []string{"0.25"}},
		{"kinetic", Kinetic(fixed.Two), []string{"3"}, "9", []string{"6"}},
		{"memory", Bias(one, one), []string{"3"}, "2", []string{"2"}},
		{"double well", DoubleWell(one, fixed.Zero, one), []string{"2"}, "2", []string{"6"}},
		{"not pair", NotPair(one), []string{"1", "1"}, "0.5", []string{"1", "1"}},
		{"and high", AndGate(one), []string{"1", "1", "0"}, "0.5", []string{"1", "1", "-1"}},
		{"and satisfied", AndGate(one), []string{"1", "0", "0"}, "0", []string{"0", "0", "0"}},
		{"or", OrGate(one), []string{"1", "0", "0"}, "0.5", []string{"1", "0", "-1"}},
		{"xor", XorGate(one), []string{"1", "1", "1"}, "0.5", []string{"1", "1", "1"}},
		{"xor satisfied", XorGate(one), []string{"1", "0", "1"}, "0", []string{"0", "0", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFixed(t, tt.value, evalAt(t, tt.f, tt.at...))
			require.Len(t, tt.partial, tt.f.Arity())
			for i, want := range tt.partial {
				assertFixed(t, want, partialAt(t, tt.f, i, tt.at...))
			}
		})
	}
}

func TestPartialsMatchCentralDifference(t *testing.T) {
	k := fixed.MustParse("1.5")
	h := fixed.MustParse("0.001")
	funcs := []Func{AndGate(k), OrGate(k), XorGate(k), NotPair(k), Bias(k, fixed.MustParse("0.75"))}
	points := [][]string{{"0.2", "0.9", "0.4"}, {"-0.3", "1.1", "0.6"}, {"0.5", "0.5", "0.5"}}

	for _, f := range funcs {
		for _, pt := range points {
			at := vals(pt[:f.Arity()]...)
			for i := 0; i < f.Arity(); i++ {
				up := append([]fixed.Fixed(nil), at...)
				down := append([]fixed.Fixed(nil), at...)
				up[i] = up[i].Add(h)
				down[i] = down[i].Sub(h)
				fu, err := f.Eval(up)
				require.NoError(t, err)
				fd, err := f.Eval(down)
				require.NoError(t, err)
				numeric := (fu.Float64() - fd.Float64()) / (2 * h.Float64())

				p, err := f.Partial(i)
				require.NoError(t, err)
				symbolic, err := p.Eval(at)
				require.NoError(t, err)
				assert.InDelta(t, numeric, symbolic.Float64(), 1e-5, "%s ∂/∂%s at %v", f.Name(), f.Args()[i], pt)
			}
		}
	}
}

func TestPolyCanonicalForm(t *testing.T) {
	p, err := NewPoly("p", []string{"x", "y"},
		Monomial{Coef: fixed.One, Exp: []int{1, 0}},
		Monomial{Coef: fixed.Two, Exp: []int{1, 0}},
		Monomial{Coef: fixed.Zero, Exp: []int{0, 1}},
		Monomial{Coef: fixed.One, Exp: []int{0, 2}},
	)
	require.NoError(t, err)
	terms := p.Terms()
	require.Len(t, terms, 2)
	assert.Equal(t, []int{0, 2}, terms[0].Exp)
	assert.Equal(t, []int{1, 0}, terms[1].Exp)
	assertFixed(t, "3", terms[1].Coef)
	assert.Equal(t, 2, p.Degree())

	assert.Equal(t, "0.5*x^2 - 1*x + 0.5", Bias(fixed.One, fixed.One).String())
	assert.Equal(t, "1*x^4", StandardQuartic().String())
	assert.Equal(t, "0", Constant(fixed.Zero).String())

	_, err = NewPoly("bad", []string{"x"}, Monomial{Coef: fixed.One, Exp: []int{1, 1}})
	assert.ErrorIs(t, err, ErrArity)
	_, err = NewPoly("bad", []string{"x", "x"})
	assert.ErrorIs(t, err, ErrDuplicateArg)
	_, err = NewPoly("bad", []string{"x"}, Monomial{Coef: fixed.One, Exp: []int{-1}})
	assert.Error(t, err)
}

func TestPolyErrors(t *testing.T) {
	f := AndGate(fixed.One)
	_, err := f.Eval(vals("1", "1"))
	assert.ErrorIs(t, err, ErrArity)

	_, err = f.Partial(3)
	assert.ErrorIs(t, err, ErrArgIndex)

	p, err := f.Partial(2)
	require.NoError(t, err)
	assert.Equal(t, "dand/dz", p.Name())
	assert.Equal(t, []string{"x", "y", "z"}, p.Args())

	c := Constant(fixed.MustParse("4.2"))
	assert.Equal(t, 0, c.Arity())
	v, err := c.Eval(nil)
	require.NoError(t, err)
	assertFixed(t, "4.2", v)
}

func TestSecondPartialIsSymbolic(t *testing.T) {
	f := StandardQuartic()
	d1, err := f.Partial(0)
	require.NoError(t, err)
	d2, err := d1.Partial(0)
	require.NoError(t, err)
	assertFixed(t, "48", evalAt(t, d2, "2"))
}

func TestCustom(t *testing.T) {
	square := func(args []fixed.Fixed) (fixed.Fixed, error) { return args[0].Mul(args[0]), nil }
	twice := func(args []fixed.Fixed) (fixed.Fixed, error) { return args[0].MulInt(2), nil }

	f, err := New("square", []string{"a"}, square, twice)
	require.NoError(t, err)
	assert.Equal(t, "square(a)", f.String())
	assertFixed(t, "2.25", evalAt(t, f, "1.5"))
	assertFixed(t, "3", partialAt(t, f, 0, "1.5"))

	d, err := f.Partial(0)
	require.NoError(t, err)
	_, err = d.Partial(0)
	assert.ErrorIs(t, err, ErrNotDifferentiable)

	_, err = f.Partial(1)
	assert.ErrorIs(t, err, ErrArgIndex)

	_, err = f.Eval(nil)
	assert.ErrorIs(t, err, ErrArity)

	_, err = New("bad", []string{"a", "b"}, square, twice)
	assert.ErrorIs(t, err, ErrArity)

	_, err = New("bad", []string{"a", "a"}, square)
	assert.ErrorIs(t, err, ErrDuplicateArg)

	_, err = New("bad", []string{"a"}, nil)
	assert.Error(t, err)

	opaque, err := New("opaque", []string{"a"}, square)
	require.NoError(t, err)
	_, err = opaque.Partial(0)
	assert.ErrorIs(t, err, ErrNotDifferentiable)
}
