package dynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/fixed"
)

type timebase struct{ dt fixed.Fixed }

func (tb timebase) TimeDelta() fixed.Fixed { return tb.dt }

var hundredth = timebase{dt: fixed.MustRatio(1, 100)}

// lookahead reads f two indices ahead of the requested time.
type lookahead struct{ f Func }

func (l lookahead) Name() string                                   { return "ahead(" + l.f.Name() + ")" }
func (l lookahead) EvolveTo(t int64) error                         { return l.f.EvolveTo(t + 2) }
func (l lookahead) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) { return l.f.Eval(extra...) }
func (l lookahead) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	return l.f.At(t+2, extra...)
}

func num(s string) fixed.Fixed { return fixed.MustParse(s) }

func assertFixed(t *testing.T, want string, got fixed.Fixed) {
	t.Helper()
	assert.True(t, num(want).Equal(got), "want %s, got %s", want, got)
}

// oscillator wires H = ½q² + ½p² by hand: dq/dt = p, dp/dt = -q.
func oscillator(q0, p0 string) (q, p *Var) {
	q = NewVar("q", num(q0), 0)
	p = NewVar("p", num(p0), 1)
	q.SetDerivative(p)
	p.SetDerivative(NewNeg(q))
	q.Bind(hundredth)
	p.Bind(hundredth)
	return q, p
}

func TestVar_ConstantVelocity(t *testing.T) {
	x := NewVar("x", fixed.Zero, 0)
	x.SetDerivative(NewConstant(num("0.5")))
	x.Bind(hundredth)

	for i := 0; i < 10; i++ {
		require.NoError(t, x.StepForward())
	}
	assert.Equal(t, int64(20), x.Time())
	assertFixed(t, "0.1", x.Value())

	require.NoError(t, x.StepBackward())
	assert.Equal(t, int64(18), x.Time())
	assertFixed(t, "0.09", x.Value())
}

func TestVar_Target(t *testing.T) {
	v := NewVar("v", fixed.Zero, 4)
	tests := []struct {
		requested int64
		want      int64
	}{
		{4, 4},
		{6, 6},
		{0, 0},
		{5, 4},
		{3, 4},
		{7, 6},
		{1, 2},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.Target(tt.requested), "target(%d)", tt.requested)
	}
}

func TestVar_EvolveToKeepsParity(t *testing.T) {
	q, p := oscillator("1", "0")

	for _, target := range []int64{7, 12, 3, 40, 41, 0} {
		require.NoError(t, q.EvolveTo(target))
		assert.Zero(t, q.Time()%2, "q at %d", q.Time())
		assert.NotZero(t, p.Time()%2, "p at %d", p.Time())
		assert.Equal(t, q.Target(target), q.Time())
	}
}

func TestVar_PullsConjugate(t *testing.T) {
	q, p := oscillator("1", "0")

	require.NoError(t, q.EvolveTo(10))
	assert.Equal(t, int64(10), q.Time())
	assert.Equal(t, int64(9), p.Time(), "q's last step reads p at the midpoint")
	assert.Contains(t, []int64{q.Time() - 1, q.Time() + 1}, p.Time())
}

func TestVar_RoundTrip(t *testing.T) {
	q, p := oscillator("0.9", "0.1")
	q0, p0 := q.Snapshot(), p.Snapshot()

	require.NoError(t, q.EvolveTo(1000))
	assert.False(t, q.Value().Equal(q0.Value))

	require.NoError(t, q.EvolveTo(0))
	assert.Equal(t, q0.Time, q.Time())
	assert.Equal(t, p0.Time, p.Time())
	assert.Zero(t, q0.Value.Cmp(q.Value()), "q: %s vs %s", q0.Value, q.Value())
	assert.Zero(t, p0.Value.Cmp(p.Value()), "p: %s vs %s", p0.Value, p.Value())
}

func TestVar_OscillatorConservesEnergy(t *testing.T) {
	q, p := oscillator("1", "0")
	require.NoError(t, q.EvolveTo(628))
	e := q.Value().Mul(q.Value()).Add(p.Value().Mul(p.Value()))
	assert.InDelta(t, 1.0, e.Float64(), 1e-2)
	// 314 steps of 2Δt is one period, so q is back near its start
	assert.InDelta(t, 1.0, q.Value().Float64(), 1e-2)
}

func TestVar_SnapshotRestore(t *testing.T) {
	q, _ := oscillator("1", "0")
	s := q.Snapshot()
	require.NoError(t, q.EvolveTo(8))
	q.Restore(s)
	assert.Equal(t, int64(0), q.Time())
	assertFixed(t, "1", q.Value())
}

func TestVar_Errors(t *testing.T) {
	t.Run("unset derivative", func(t *testing.T) {
		v := NewVar("v", fixed.Zero, 0)
		v.Bind(hundredth)
		err := v.StepForward()
		require.Error(t, err)
		assert.True(t, IsUnsetDerivative(err))
		assert.Contains(t, err.Error(), "UNSET_TIME_DERIVATIVE")
		assert.Contains(t, err.Error(), "func=v")
	})

	t.Run("no context", func(t *testing.T) {
		v := NewVar("v", fixed.Zero, 0)
		v.SetDerivative(Zero())
		err := v.EvolveTo(2)
		require.Error(t, err)
		assert.True(t, IsNoContext(err))
		assert.False(t, v.Bound())
	})

	t.Run("arguments to a variable", func(t *testing.T) {
		v := NewVar("v", fixed.Zero, 0)
		_, err := v.Eval(fixed.One)
		assert.True(t, IsArityMismatch(err))
		_, err = v.At(0, fixed.One)
		assert.True(t, IsArityMismatch(err))
	})

	t.Run("reentrant step", func(t *testing.T) {
		a := NewVar("a", fixed.Zero, 0)
		b := NewVar("b", fixed.Zero, -1)
		a.SetDerivative(b)
		b.SetDerivative(lookahead{f: a})
		a.Bind(hundredth)
		b.Bind(hundredth)

		err := a.StepForward()
		require.Error(t, err)
		assert.True(t, IsReentrantStep(err))
		assert.Equal(t, int64(0), a.Time(), "failed step leaves the variable in place")
	})
}

func linear(name string, v0, rate string) *Var {
	x := NewVar(name, num(v0), 0)
	x.SetDerivative(NewConstant(num(rate)))
	x.Bind(hundredth)
	return x
}

func TestCombinators_Laws(t *testing.T) {
	x := linear("x", "1", "0.5")
	y := linear("y", "-2", "1.5")
	z := linear("z", "0.25", "-3")

	for _, at := range []int64{0, 4, 10, 2} {
		xv, err := x.At(at)
		require.NoError(t, err)
		yv, err := y.At(at)
		require.NoError(t, err)
		zv, err := z.At(at)
		require.NoError(t, err)

		neg, err := NewNeg(x).At(at)
		require.NoError(t, err)
		assert.True(t, neg.Equal(xv.Neg()))

		sum, err := NewSum(x, y).At(at)
		require.NoError(t, err)
		assert.True(t, sum.Equal(xv.Add(yv)))

		comm, err := NewSum(y, x).At(at)
		require.NoError(t, err)
		assert.True(t, comm.Equal(sum))

		left, err := NewSum(NewSum(x, y), z).At(at)
		require.NoError(t, err)
		right, err := NewSum(x, NewSum(y, z)).At(at)
		require.NoError(t, err)
		flat, err := NewSum(x, y, z).At(at)
		require.NoError(t, err)
		assert.True(t, left.Equal(right))
		assert.True(t, left.Equal(flat))

		prod, err := NewProduct(x, y).At(at)
		require.NoError(t, err)
		assert.True(t, prod.Equal(xv.Mul(yv)))

		scaled, err := NewScale(fixed.Two, z).At(at)
		require.NoError(t, err)
		assert.True(t, scaled.Equal(zv.MulInt(2)))
	}

	empty, err := NewSum().At(6)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestCombinators_PartialOfSelfIsOne(t *testing.T) {
	x := linear("x", "3", "0")
	p, err := PartialOf(x, x)
	require.NoError(t, err)
	v, err := p.At(0)
	require.NoError(t, err)
	assertFixed(t, "1", v)

	p, err = NewScale(num("2.5"), NewNeg(x)).DynPartial(x)
	require.NoError(t, err)
	v, err = p.At(0)
	require.NoError(t, err)
	assertFixed(t, "-2.5", v)

	_, err = NewConstant(fixed.One).DynPartial(x)
	assert.True(t, IsNoIntermediate(err))
}

func TestCombinators_ProductRule(t *testing.T) {
	x := linear("x", "1.5", "0")
	sq, err := NewDiffDerived(diff.Quadratic(fixed.One, fixed.Zero, fixed.Zero), x)
	require.NoError(t, err)

	// d/dx (x · x²) = 3x²
	p, err := NewProduct(x, sq).DynPartial(x)
	require.NoError(t, err)
	v, err := p.At(0)
	require.NoError(t, err)
	assertFixed(t, "6.75", v)
}

func TestDiffDerived_Linearity(t *testing.T) {
	x := linear("x", "0.3", "0.7")
	f, err := NewDiffDerived(diff.Quadratic(fixed.One, fixed.Zero, fixed.Zero), x)
	require.NoError(t, err)
	g, err := NewDiffDerived(diff.Bias(fixed.Two, fixed.One), x)
	require.NoError(t, err)

	sumPartial, err := NewSum(f, g).DynPartial(x)
	require.NoError(t, err)
	fp, err := f.DynPartial(x)
	require.NoError(t, err)
	gp, err := g.DynPartial(x)
	require.NoError(t, err)

	for _, at := range []int64{0, 2, 8} {
		whole, err := sumPartial.At(at)
		require.NoError(t, err)
		a, err := fp.At(at)
		require.NoError(t, err)
		b, err := gp.At(at)
		require.NoError(t, err)
		assert.True(t, whole.Equal(a.Add(b)), "t=%d", at)
	}
}

func TestDiffDerived_ChainRule(t *testing.T) {
	square := diff.Quadratic(fixed.One, fixed.Zero, fixed.Zero)
	v := linear("v", "1.5", "0")

	u, err := NewDiffDerived(square, v)
	require.NoError(t, err)
	f, err := NewDiffDerived(square, u)
	require.NoError(t, err)

	viaChain, err := f.DynPartial(v)
	require.NoError(t, err)
	got, err := viaChain.At(0)
	require.NoError(t, err)

	direct, err := NewDiffDerived(diff.StandardQuartic(), v)
	require.NoError(t, err)
	dd, err := direct.DynPartial(v)
	require.NoError(t, err)
	want, err := dd.At(0)
	require.NoError(t, err)

	assertFixed(t, "13.5", got)
	assert.True(t, want.Equal(got))

	fu, err := f.DynPartial(u)
	require.NoError(t, err)
	uv, err := u.DynPartial(v)
	require.NoError(t, err)
	product, err := NewProduct(fu, uv).At(0)
	require.NoError(t, err)
	assert.True(t, product.Equal(got))
}

func TestDiffDerived_DeepChain(t *testing.T) {
	square := diff.Quadratic(fixed.One, fixed.Zero, fixed.Zero)
	v := linear("v", "1.5", "0")

	u1, err := NewDiffDerived(square, v)
	require.NoError(t, err)
	u2, err := NewDiffDerived(square, u1)
	require.NoError(t, err)
	f, err := NewDiffDerived(diff.Proportional(fixed.One), u2)
	require.NoError(t, err)

	assert.True(t, f.DependsOn(v))
	p, err := f.DynPartial(v)
	require.NoError(t, err)
	got, err := p.At(0)
	require.NoError(t, err)
	assertFixed(t, "13.5", got)
}

func TestDiffDerived_RepeatedArgument(t *testing.T) {
	x := linear("x", "1", "0")
	f, err := NewDiffDerived(diff.NotPair(fixed.One), x, x)
	require.NoError(t, err)
	i, ok := f.Index(x)
	require.True(t, ok)
	assert.Equal(t, 0, i)

	// ½(2x−1)² has derivative 2(2x−1)
	p, err := f.DynPartial(x)
	require.NoError(t, err)
	got, err := p.At(0)
	require.NoError(t, err)
	assertFixed(t, "2", got)
}

func TestDiffDerived_Memo(t *testing.T) {
	x := linear("x", "1", "0")
	f, err := NewDiffDerived(diff.Bias(fixed.One, fixed.Zero), x)
	require.NoError(t, err)
	assert.Equal(t, "memory(x)", f.Name())

	a, err := f.DynPartial(x)
	require.NoError(t, err)
	b, err := f.DynPartial(x)
	require.NoError(t, err)
	assert.Same(t, a, b)

	f.Invalidate()
	c, err := f.DynPartial(x)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestDiffDerived_NoIntermediate(t *testing.T) {
	x := linear("x", "1", "0")
	y := linear("y", "1", "0")
	f, err := NewDiffDerived(diff.Bias(fixed.One, fixed.Zero), x)
	require.NoError(t, err)

	assert.False(t, f.DependsOn(y))
	_, err = f.DynPartial(y)
	require.Error(t, err)
	assert.True(t, IsNoIntermediate(err))
	assert.Contains(t, err.Error(), "memory(x) does not depend on y")
}

func TestDerived_ExtraArguments(t *testing.T) {
	x := linear("x", "1", "0")
	y := linear("y", "1", "0")
	d, err := NewDerived(diff.AndGate(fixed.One), x, y)
	require.NoError(t, err)

	v, err := d.Eval(fixed.Zero)
	require.NoError(t, err)
	assertFixed(t, "0.5", v)

	v, err = d.At(4, fixed.One)
	require.NoError(t, err)
	assertFixed(t, "0", v)

	_, err = d.Eval()
	assert.True(t, IsArityMismatch(err))

	_, err = NewDerived(diff.Bias(fixed.One, fixed.Zero), x, y)
	assert.True(t, IsArityMismatch(err))

	_, err = NewDiffDerived(diff.AndGate(fixed.One), x, y)
	assert.True(t, IsArityMismatch(err))
}

func TestDerived_DivideByZero(t *testing.T) {
	inv, err := diff.New("inv", []string{"x"}, func(a []fixed.Fixed) (fixed.Fixed, error) {
		return fixed.One.Div(a[0])
	})
	require.NoError(t, err)

	x := linear("x", "0", "0")
	d, err := NewDerived(inv, x)
	require.NoError(t, err)

	_, err = d.At(2)
	require.Error(t, err)
	assert.True(t, IsDivideByZero(err))

	x.Set(fixed.Two)
	v, err := d.Eval()
	require.NoError(t, err)
	assertFixed(t, "0.5", v)

	df, err := NewDiffDerived(inv, x)
	require.NoError(t, err)
	_, err = df.DynPartial(x)
	assert.ErrorIs(t, err, diff.ErrNotDifferentiable)
}
