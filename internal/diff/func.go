package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/revsim/internal/fixed"
)

var (
	// ErrArity is returned when the number of values (or partials) does not
	// match the number of formal arguments.
	ErrArity = errors.New("diff: argument count mismatch")

	// ErrDuplicateArg is returned when two formal arguments share a name.
	ErrDuplicateArg = errors.New("diff: duplicate argument name")

	// ErrArgIndex is returned for a partial index outside [0, Arity).
	ErrArgIndex = errors.New("diff: argument index out of range")

	// ErrNotDifferentiable is returned when a Custom function was built
	// without partial derivatives.
	ErrNotDifferentiable = errors.New("diff: partial derivative not available")
)

// Func is a pure differentiable function of named formal arguments.
//
// Partial(i) returns ∂f/∂args[i] as another Func of the same arity.
type Func interface {
	Name() string
	Args() []string
	Arity() int
	Eval(args []fixed.Fixed) (fixed.Fixed, error)
	Partial(i int) (Func, error)
}

// ValueFunc evaluates a function at the given argument values.
type ValueFunc func(args []fixed.Fixed) (fixed.Fixed, error)

// Custom is a Func backed by caller-supplied closures.
type Custom struct {
	name     string
	args     []string
	value    ValueFunc
	partials []ValueFunc
}

// New builds a Custom function. partials must be empty (not differentiable)
// or have exactly one entry per argument.
func New(name string, args []string, value ValueFunc, partials ...ValueFunc) (*Custom, error) {
	if err := checkArgs(args); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if value == nil {
		return nil, fmt.Errorf("%s: nil value function", name)
	}
	if len(partials) != 0 && len(partials) != len(args) {
		return nil, fmt.Errorf("%s: %d partials for %d arguments: %w", name, len(partials), len(args), ErrArity)
	}
	return &Custom{
		name:     name,
		args:     append([]string(nil), args...),
		value:    value,
		partials: append([]ValueFunc(nil), partials...),
	}, nil
}

func (c *Custom) Name() string   { return c.name }
func (c *Custom) Args() []string { return append([]string(nil), c.args...) }
func (c *Custom) Arity() int     { return len(c.args) }

func (c *Custom) String() string { return signature(c.name, c.args) }

// Eval applies the value closure.
func (c *Custom) Eval(args []fixed.Fixed) (fixed.Fixed, error) {
	if len(args) != len(c.args) {
		return fixed.Zero, fmt.Errorf("%s: got %d values: %w", c.name, len(args), ErrArity)
	}
	return c.value(args)
}

// Partial returns the i-th supplied partial. The result has no partials of
// its own.
func (c *Custom) Partial(i int) (Func, error) {
	if i < 0 || i >= len(c.args) {
		return nil, fmt.Errorf("%s: index %d: %w", c.name, i, ErrArgIndex)
	}
	if len(c.partials) == 0 || c.partials[i] == nil {
		return nil, fmt.Errorf("%s/%s: %w", c.name, c.args[i], ErrNotDifferentiable)
	}
	return &Custom{
		name:  partialName(c.name, c.args[i]),
		args:  c.args,
		value: c.partials[i],
	}, nil
}

func checkArgs(args []string) error {
	seen := make(map[string]bool, len(args))
	for _, a := range args {
		if seen[a] {
			return fmt.Errorf("%q: %w", a, ErrDuplicateArg)
		}
		seen[a] = true
	}
	return nil
}

func partialName(name, arg string) string {
	return "d" + name + "/d" + arg
}

func signature(name string, args []string) string {
	return name + "(" + strings.Join(args, ",") + ")"
}
