package hamiltonian

import (
	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/dynamics"
)

// Term is a single additive summand of a Hamiltonian. Its name is
// "fn(var1,var2,...)".
type Term struct {
	*dynamics.DiffDerived
}

// NewTerm binds every argument of fn to vars. It fails with ARITY_MISMATCH
// when the counts differ.
func NewTerm(fn diff.Func, vars ...dynamics.Func) (*Term, error) {
	d, err := dynamics.NewDiffDerived(fn, vars...)
	if err != nil {
		return nil, err
	}
	return &Term{DiffDerived: d}, nil
}
