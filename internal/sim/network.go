package sim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/revsim/internal/diff"
	"github.com/roach88/revsim/internal/dynamics"
	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/hamiltonian"
)

var (
	// ErrEmptyName is returned for a coordinate name that is blank after
	// normalisation.
	ErrEmptyName = errors.New("sim: empty coordinate name")

	// ErrDuplicateCoordinate is returned when a name is already taken.
	ErrDuplicateCoordinate = errors.New("sim: duplicate coordinate")

	// ErrForeignCoordinate is returned when an interaction names a
	// coordinate that belongs to another network.
	ErrForeignCoordinate = errors.New("sim: coordinate belongs to another network")

	// ErrInvalidMass is returned for a non-positive mass.
	ErrInvalidMass = errors.New("sim: mass must be positive")
)

// Network is the façade external builders use: it creates coordinates,
// wraps interactions as Hamiltonian terms and exposes coordinates by name.
type Network struct {
	name    string
	h       *hamiltonian.Hamiltonian
	coords  []*hamiltonian.Coord
	byName  map[string]*hamiltonian.Coord
	pending map[*hamiltonian.Coord]bool
	ctx     *Context
	logger  *slog.Logger
}

// NetworkOption configures a Network.
type NetworkOption func(*Network)

// WithNetworkLogger sets the logger used by the network and its
// Hamiltonian.
func WithNetworkLogger(l *slog.Logger) NetworkOption {
	return func(n *Network) {
		n.logger = l
	}
}

// NewNetwork creates an empty network.
func NewNetwork(name string, opts ...NetworkOption) *Network {
	n := &Network{
		name:    name,
		byName:  make(map[string]*hamiltonian.Coord),
		pending: make(map[*hamiltonian.Coord]bool),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.h = hamiltonian.New(hamiltonian.WithLogger(n.logger))
	return n
}

func (n *Network) Name() string { return n.name }

// Hamiltonian returns the network's Hamiltonian.
func (n *Network) Hamiltonian() *hamiltonian.Hamiltonian { return n.h }

// Context returns the attached context, or nil.
func (n *Network) Context() *Context { return n.ctx }

// CoordOption configures a single coordinate.
type CoordOption func(*coordConfig)

type coordConfig struct {
	mass     fixed.Fixed
	momentum *fixed.Fixed
}

// WithMass sets the coordinate's mass. The default is 1.
func WithMass(m fixed.Fixed) CoordOption {
	return func(c *coordConfig) {
		c.mass = m
	}
}

// WithMomentum fixes the initial momentum instead of sampling it.
func WithMomentum(p fixed.Fixed) CoordOption {
	return func(c *coordConfig) {
		c.momentum = &p
	}
}

// AddCoordinate creates a coordinate with initial position q0. Unless
// WithMomentum is given, its momentum is sampled when the network is
// attached to a context, or immediately if it already is. A coordinate
// added to an attached network starts at the context's current time.
func (n *Network) AddCoordinate(name string, q0 fixed.Fixed, opts ...CoordOption) (*hamiltonian.Coord, error) {
	key := CanonicalName(name)
	if key == "" {
		return nil, ErrEmptyName
	}
	if _, ok := n.byName[key]; ok {
		return nil, fmt.Errorf("%q: %w", key, ErrDuplicateCoordinate)
	}
	cfg := coordConfig{mass: fixed.One}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mass.Sign() <= 0 {
		return nil, fmt.Errorf("%q: mass %s: %w", key, cfg.mass, ErrInvalidMass)
	}
	p0 := fixed.Zero
	if cfg.momentum != nil {
		p0 = *cfg.momentum
	}

	var start int64
	if n.ctx != nil {
		start = n.ctx.time
	}
	c, err := hamiltonian.NewCoordAt(n.h, key, start, q0, p0, cfg.mass)
	if err != nil {
		return nil, err
	}
	n.coords = append(n.coords, c)
	n.byName[key] = c
	if cfg.momentum == nil {
		n.pending[c] = true
	}
	n.logger.Debug("coordinate added", "network", n.name, "coord", key, "q0", q0.String())

	if n.ctx != nil {
		n.ctx.attach(n, c)
	}
	return c, nil
}

// AddInteraction wraps fn as a Hamiltonian term over the coordinates'
// position variables, in order, and registers it. It fails with
// ARITY_MISMATCH when fn's arity differs from the number of coordinates.
func (n *Network) AddInteraction(fn diff.Func, coords ...*hamiltonian.Coord) (*hamiltonian.Term, error) {
	if fn.Arity() != len(coords) {
		return nil, dynamics.NewArityError(fn.Name(), fn.Arity(), len(coords))
	}
	vars := make([]dynamics.Func, len(coords))
	for i, c := range coords {
		if n.byName[c.Name()] != c {
			return nil, fmt.Errorf("%s: %w", c.Name(), ErrForeignCoordinate)
		}
		vars[i] = c.Q()
	}
	term, err := hamiltonian.NewTerm(fn, vars...)
	if err != nil {
		return nil, err
	}
	if err := n.h.AddTerm(term); err != nil {
		return nil, err
	}
	return term, nil
}

// Coordinate looks a coordinate up by name.
func (n *Network) Coordinate(name string) (*hamiltonian.Coord, bool) {
	c, ok := n.byName[CanonicalName(name)]
	return c, ok
}

// Coordinates returns every coordinate in creation order.
func (n *Network) Coordinates() []*hamiltonian.Coord {
	return append([]*hamiltonian.Coord(nil), n.coords...)
}

// State captures every coordinate's (q, p, qt, pt) in creation order.
func (n *Network) State() []hamiltonian.State {
	out := make([]hamiltonian.State, len(n.coords))
	for i, c := range n.coords {
		out[i] = c.State()
	}
	return out
}
