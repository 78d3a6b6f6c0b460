package dynamics

import (
	"github.com/roach88/revsim/internal/fixed"
)

// Func is a function of simulated time.
//
// EvolveTo brings every piece of state the function reads to time t. Eval
// evaluates against that state as it stands, with extra trailing arguments
// for functions that take them. At(t) is EvolveTo(t) followed by Eval, except
// that each operand is read immediately after it is evolved.
type Func interface {
	Name() string
	EvolveTo(t int64) error
	Eval(extra ...fixed.Fixed) (fixed.Fixed, error)
	At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error)
}

// Composite is a Func built from other Funcs.
type Composite interface {
	Func
	Args() []Func
}

// Differentiable is a Func that can produce its partial derivative with
// respect to a variable as another Func of time.
type Differentiable interface {
	Func
	DynPartial(v Func) (Func, error)
	DependsOn(v Func) bool
}

// Timebase supplies the time step Δt to variables.
type Timebase interface {
	TimeDelta() fixed.Fixed
}

// DependsOn reports whether f is v or reaches v through differentiable
// arguments.
func DependsOn(f, v Func) bool {
	if f == v {
		return true
	}
	if d, ok := f.(Differentiable); ok {
		return d.DependsOn(v)
	}
	return false
}

// PartialOf returns ∂f/∂v. The partial of a Func with respect to itself is
// the constant 1. It fails with NO_INTERMEDIATE_VARIABLE when f does not
// depend on v.
func PartialOf(f, v Func) (Func, error) {
	if f == v {
		return One(), nil
	}
	if d, ok := f.(Differentiable); ok && d.DependsOn(v) {
		return d.DynPartial(v)
	}
	return nil, newNoIntermediateError(f.Name(), v.Name())
}

// partialsOf collects ∂f/∂v for every f in fs that depends on v.
func partialsOf(fs []Func, v Func) ([]Func, []int, error) {
	var parts []Func
	var idx []int
	for i, f := range fs {
		if !DependsOn(f, v) {
			continue
		}
		p, err := PartialOf(f, v)
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, p)
		idx = append(idx, i)
	}
	return parts, idx, nil
}

func noExtra(name string, extra []fixed.Fixed) error {
	if len(extra) != 0 {
		return NewArityError(name, 0, len(extra))
	}
	return nil
}
