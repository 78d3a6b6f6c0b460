package dynamics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/fixed"
)

// Derived applies a static diff.Func to the current values of underlying
// Funcs. The first len(Args()) formal arguments of the function are bound to
// them; any remaining arguments are supplied by the caller at evaluation.
type Derived struct {
	name string
	fn   diff.Func
	args []Func
}

// NewDerived binds fn's leading arguments to args. It fails with
// ARITY_MISMATCH when fn takes fewer arguments than supplied.
func NewDerived(fn diff.Func, args ...Func) (*Derived, error) {
	return NewNamedDerived("", fn, args...)
}

// NewNamedDerived is NewDerived with an explicit display name. An empty name
// yields the default "fn(arg1,arg2)".
func NewNamedDerived(name string, fn diff.Func, args ...Func) (*Derived, error) {
	if len(args) > fn.Arity() {
		return nil, NewArityError(fn.Name(), fn.Arity(), len(args))
	}
	if name == "" {
		name = signature(fn.Name(), args)
	}
	return &Derived{name: name, fn: fn, args: append([]Func(nil), args...)}, nil
}

func (d *Derived) Name() string { return d.name }

// Fn returns the underlying static function.
func (d *Derived) Fn() diff.Func { return d.fn }

// Args returns the bound underlying Funcs in argument order.
func (d *Derived) Args() []Func { return append([]Func(nil), d.args...) }

// EvolveTo evolves every underlying Func to t.
func (d *Derived) EvolveTo(t int64) error {
	for _, a := range d.args {
		if err := a.EvolveTo(t); err != nil {
			return err
		}
	}
	return nil
}

// Eval applies the function to the underlying Funcs' current values followed
// by extra.
func (d *Derived) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	vals := make([]fixed.Fixed, 0, len(d.args)+len(extra))
	for _, a := range d.args {
		x, err := a.Eval()
		if err != nil {
			return fixed.Zero, err
		}
		vals = append(vals, x)
	}
	return d.apply(0, false, append(vals, extra...))
}

// At reads each underlying Func at t, in argument order, and applies the
// function. Each value is captured as soon as its operand reaches t.
func (d *Derived) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	vals := make([]fixed.Fixed, 0, len(d.args)+len(extra))
	for _, a := range d.args {
		x, err := a.At(t)
		if err != nil {
			return fixed.Zero, err
		}
		vals = append(vals, x)
	}
	return d.apply(t, true, append(vals, extra...))
}

func (d *Derived) apply(t int64, timed bool, vals []fixed.Fixed) (fixed.Fixed, error) {
	y, err := d.fn.Eval(vals)
	if err == nil {
		return y, nil
	}
	de := &Error{Message: err.Error(), Err: err}
	if timed {
		de.Func, de.Time = d.name, t
	}
	switch {
	case errors.Is(err, fixed.ErrDivideByZero):
		de.Code = ErrCodeDivideByZero
	case errors.Is(err, diff.ErrArity):
		de.Code = ErrCodeArityMismatch
	default:
		return fixed.Zero, fmt.Errorf("evaluate %s: %w", d.name, err)
	}
	return fixed.Zero, de
}

// DiffDerived is a Derived whose every argument is bound, and which can
// differentiate itself with respect to any variable it reaches.
type DiffDerived struct {
	*Derived

	index map[Func]int
	slots []*DiffDerived
	memo  map[Func]Func
	deps  map[Func]bool
}

// NewDiffDerived binds all of fn's arguments to args. It fails with
// ARITY_MISMATCH unless len(args) == fn.Arity().
func NewDiffDerived(fn diff.Func, args ...Func) (*DiffDerived, error) {
	return NewNamedDiffDerived("", fn, args...)
}

// NewNamedDiffDerived is NewDiffDerived with an explicit display name.
func NewNamedDiffDerived(name string, fn diff.Func, args ...Func) (*DiffDerived, error) {
	if len(args) != fn.Arity() {
		return nil, NewArityError(fn.Name(), fn.Arity(), len(args))
	}
	d, err := NewNamedDerived(name, fn, args...)
	if err != nil {
		return nil, err
	}
	index := make(map[Func]int, len(args))
	for i, a := range args {
		if _, ok := index[a]; !ok {
			index[a] = i
		}
	}
	return &DiffDerived{
		Derived: d,
		index:   index,
		slots:   make([]*DiffDerived, len(args)),
		memo:    make(map[Func]Func),
		deps:    make(map[Func]bool),
	}, nil
}

// Index returns the first argument position bound to f.
func (d *DiffDerived) Index(f Func) (int, bool) {
	i, ok := d.index[f]
	return i, ok
}

// DependsOn reports whether v is an argument or is reached through a
// differentiable argument at any depth.
func (d *DiffDerived) DependsOn(v Func) bool {
	if dep, ok := d.deps[v]; ok {
		return dep
	}
	dep := false
	if _, ok := d.index[v]; ok {
		dep = true
	} else {
		for _, a := range d.args {
			if DependsOn(a, v) {
				dep = true
				break
			}
		}
	}
	d.deps[v] = dep
	return dep
}

// SlotPartial returns ∂f/∂args[i] as a Func of time over the same arguments.
func (d *DiffDerived) SlotPartial(i int) (*DiffDerived, error) {
	if i < 0 || i >= len(d.slots) {
		return nil, NewArityError(d.name, len(d.slots), i+1)
	}
	if d.slots[i] != nil {
		return d.slots[i], nil
	}
	pf, err := d.fn.Partial(i)
	if err != nil {
		return nil, fmt.Errorf("partial of %s: %w", d.name, err)
	}
	p, err := NewDiffDerived(pf, d.args...)
	if err != nil {
		return nil, err
	}
	d.slots[i] = p
	return p, nil
}

// DynPartial returns the total derivative ∂f/∂v: the direct partial for
// every slot bound to v, plus ∂f/∂u·∂u/∂v for every other argument u that
// reaches v. The result is memoised until Invalidate.
func (d *DiffDerived) DynPartial(v Func) (Func, error) {
	if p, ok := d.memo[v]; ok {
		return p, nil
	}
	var parts []Func
	for i, a := range d.args {
		if a != v && !DependsOn(a, v) {
			continue
		}
		fu, err := d.SlotPartial(i)
		if err != nil {
			return nil, err
		}
		if a == v {
			parts = append(parts, fu)
			continue
		}
		uv, err := PartialOf(a, v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewProduct(fu, uv))
	}
	var p Func
	switch len(parts) {
	case 0:
		return nil, newNoIntermediateError(d.name, v.Name())
	case 1:
		p = parts[0]
	default:
		p = NewSum(parts...)
	}
	d.memo[v] = p
	return p, nil
}

// Invalidate drops memoised partials, slot partials and dependency answers.
func (d *DiffDerived) Invalidate() {
	clear(d.slots)
	clear(d.memo)
	clear(d.deps)
}

func signature(name string, args []Func) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name()
	}
	return name + "(" + strings.Join(names, ",") + ")"
}
