package dynamics

import (
	"fmt"

	"github.com/roach88/revsim/internal/fixed"
)

// Var is a dynamical variable: a Fixed value at an integer time index,
// advanced by leapfrog steps of its time derivative.
type Var struct {
	name     string
	value    fixed.Fixed
	time     int64
	deriv    Func
	base     Timebase
	stepping bool
}

// VarState is a Var's value and time. It is used to compare and restore
// states in diagnostics; it is never persisted.
type VarState struct {
	Value fixed.Fixed
	Time  int64
}

// NewVar creates a variable holding value at time. Its parity is fixed by
// time for the rest of its life.
func NewVar(name string, value fixed.Fixed, time int64) *Var {
	return &Var{name: name, value: value, time: time}
}

func (v *Var) Name() string { return v.name }

// Value returns the current value without evolving.
func (v *Var) Value() fixed.Fixed { return v.value }

// Time returns the current time index.
func (v *Var) Time() int64 { return v.time }

// Bind attaches the time base that supplies Δt.
func (v *Var) Bind(tb Timebase) { v.base = tb }

// Bound reports whether a time base is attached.
func (v *Var) Bound() bool { return v.base != nil }

// SetDerivative replaces the time-derivative function.
func (v *Var) SetDerivative(d Func) { v.deriv = d }

// Derivative returns the time-derivative function, or nil when unwired.
func (v *Var) Derivative() Func { return v.deriv }

// Set overwrites the value in place, keeping the time. Used to thermalise
// momenta before the first step.
func (v *Var) Set(value fixed.Fixed) { v.value = value }

// Snapshot returns the current value and time.
func (v *Var) Snapshot() VarState {
	return VarState{Value: v.value, Time: v.time}
}

// Restore resets the value and time to s.
func (v *Var) Restore(s VarState) {
	v.value = s.Value
	v.time = s.Time
}

// Target returns the time EvolveTo(t) would actually reach: t itself when
// its parity matches, otherwise the neighbour of t closer to the current
// time.
func (v *Var) Target(t int64) int64 {
	if (t-v.time)%2 == 0 {
		return t
	}
	if t > v.time {
		return t - 1
	}
	return t + 1
}

// EvolveTo steps the variable until it sits at Target(t).
func (v *Var) EvolveTo(t int64) error {
	target := v.Target(t)
	for v.time < target {
		if err := v.StepForward(); err != nil {
			return err
		}
	}
	for v.time > target {
		if err := v.StepBackward(); err != nil {
			return err
		}
	}
	return nil
}

// Eval returns the current value. Variables take no arguments.
func (v *Var) Eval(extra ...fixed.Fixed) (fixed.Fixed, error) {
	if err := noExtra(v.name, extra); err != nil {
		return fixed.Zero, err
	}
	return v.value, nil
}

// At evolves to t and returns the value there.
func (v *Var) At(t int64, extra ...fixed.Fixed) (fixed.Fixed, error) {
	if err := noExtra(v.name, extra); err != nil {
		return fixed.Zero, err
	}
	if err := v.EvolveTo(t); err != nil {
		return fixed.Zero, err
	}
	return v.value, nil
}

// StepForward applies value += 2Δt·deriv(time+1) and advances time by 2.
func (v *Var) StepForward() error {
	return v.step(1)
}

// StepBackward applies value -= 2Δt·deriv(time-1) and retreats time by 2.
func (v *Var) StepBackward() error {
	return v.step(-1)
}

func (v *Var) step(dir int64) error {
	if v.deriv == nil {
		return &Error{
			Code:    ErrCodeUnsetDerivative,
			Message: "time derivative has not been wired",
			Func:    v.name,
			Time:    v.time,
		}
	}
	if v.base == nil {
		return &Error{
			Code:    ErrCodeNoContext,
			Message: "variable is not bound to a simulation context",
			Func:    v.name,
			Time:    v.time,
		}
	}
	if v.stepping {
		return &Error{
			Code:    ErrCodeReentrantStep,
			Message: "variable asked to move while stepping",
			Func:    v.name,
			Time:    v.time,
		}
	}
	v.stepping = true
	defer func() { v.stepping = false }()

	d, err := v.deriv.At(v.time + dir)
	if err != nil {
		return fmt.Errorf("step %s from t=%d: %w", v.name, v.time, err)
	}
	delta := d.Mul(v.base.TimeDelta().MulInt(2))
	if dir > 0 {
		v.value = v.value.Add(delta)
	} else {
		v.value = v.value.Sub(delta)
	}
	v.time += 2 * dir
	return nil
}

func (v *Var) String() string {
	return fmt.Sprintf("%s@%d=%s", v.name, v.time, v.value)
}
