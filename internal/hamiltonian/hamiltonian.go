package hamiltonian

import (
	"io"
	"log/slog"

	"github.com/roach88/revsim/internal/dynamics"
	"github.com/roach88/revsim/internal/fixed"
)

// Watcher is notified after each AddTerm with the variables whose term sets
// changed.
type Watcher interface {
	TermsChanged(affected []dynamics.Func) error
}

// Hamiltonian is a set of terms indexed by the variables they reach.
type Hamiltonian struct {
	terms    []*Term
	termSet  map[*Term]bool
	vars     []dynamics.Func
	varTerms map[dynamics.Func][]*Term
	partials map[dynamics.Func]*Partial
	watchers []Watcher
	logger   *slog.Logger
}

// Option configures a Hamiltonian.
type Option func(*Hamiltonian)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hamiltonian) {
		h.logger = l
	}
}

// New creates an empty Hamiltonian.
func New(opts ...Option) *Hamiltonian {
	h := &Hamiltonian{
		termSet:  make(map[*Term]bool),
		varTerms: make(map[dynamics.Func][]*Term),
		partials: make(map[dynamics.Func]*Partial),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register makes v known to the Hamiltonian with no terms, so that ∂H/∂v is
// defined (and zero) before any term mentions it.
func (h *Hamiltonian) Register(v dynamics.Func) {
	if _, ok := h.varTerms[v]; ok {
		return
	}
	h.vars = append(h.vars, v)
	h.varTerms[v] = nil
}

// Registered reports whether v is indexed.
func (h *Hamiltonian) Registered(v dynamics.Func) bool {
	_, ok := h.varTerms[v]
	return ok
}

// Vars returns every indexed variable in registration order.
func (h *Hamiltonian) Vars() []dynamics.Func {
	return append([]dynamics.Func(nil), h.vars...)
}

// AddTerm adds term and indexes it under every variable it reaches,
// recursing through composite arguments. Cached partials for those
// variables are dropped, the chain-rule memo of every term touching them is
// invalidated, and watchers are notified. Adding the same term twice is a
// no-op.
func (h *Hamiltonian) AddTerm(term *Term) error {
	if h.termSet[term] {
		return nil
	}
	h.termSet[term] = true
	h.terms = append(h.terms, term)

	var affected []dynamics.Func
	seen := make(map[dynamics.Func]bool)
	var visit func(f dynamics.Func)
	visit = func(f dynamics.Func) {
		c, ok := f.(dynamics.Composite)
		if !ok {
			return
		}
		for _, a := range c.Args() {
			if seen[a] {
				continue
			}
			seen[a] = true
			h.Register(a)
			h.varTerms[a] = append(h.varTerms[a], term)
			affected = append(affected, a)
			visit(a)
		}
	}
	visit(term)

	for _, v := range affected {
		delete(h.partials, v)
		for _, t := range h.varTerms[v] {
			t.Invalidate()
		}
	}
	h.logger.Debug("term added",
		"term", term.Name(),
		"affected", len(affected),
		"terms", len(h.terms))

	for _, w := range h.watchers {
		if err := w.TermsChanged(affected); err != nil {
			return err
		}
	}
	return nil
}

// Terms returns every term in insertion order.
func (h *Hamiltonian) Terms() []*Term {
	return append([]*Term(nil), h.terms...)
}

// TermsFor returns the terms that reach v, in insertion order.
func (h *Hamiltonian) TermsFor(v dynamics.Func) []*Term {
	return append([]*Term(nil), h.varTerms[v]...)
}

// Watch registers w for AddTerm notifications.
func (h *Hamiltonian) Watch(w Watcher) {
	h.watchers = append(h.watchers, w)
}

// DynPartial returns ∂H/∂v as a Func of time. It fails with
// UNINDEXED_VARIABLE when v has never been registered or reached by a term.
// The result is cached until a new term reaches v.
func (h *Hamiltonian) DynPartial(v dynamics.Func) (*Partial, error) {
	if p, ok := h.partials[v]; ok {
		return p, nil
	}
	terms, ok := h.varTerms[v]
	if !ok {
		return nil, dynamics.NewUnindexedError(v.Name())
	}
	p := &Partial{v: v, terms: append([]*Term(nil), terms...)}
	h.partials[v] = p
	return p, nil
}

// Energy evaluates every term at t and returns the sum.
func (h *Hamiltonian) Energy(t int64) (fixed.Fixed, error) {
	total := fixed.Zero
	for _, term := range h.terms {
		e, err := term.At(t)
		if err != nil {
			return fixed.Zero, err
		}
		total = total.Add(e)
	}
	return total, nil
}
