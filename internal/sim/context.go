package sim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/hamiltonian"
)

// DefaultSteps is the number of steps the demo and Test run by default.
const DefaultSteps = 1000

// DefaultSeed seeds momentum sampling when no seed is given.
const DefaultSeed uint64 = 1

// DefaultTimeDelta is Δt = 1/100.
var DefaultTimeDelta = fixed.MustRatio(1, 100)

var (
	// ErrNoNetwork is returned when stepping a context with no network.
	ErrNoNetwork = errors.New("sim: no network attached")

	// ErrInvalidTimeDelta is returned for a non-positive Δt.
	ErrInvalidTimeDelta = errors.New("sim: time delta must be positive")

	// ErrInvalidTemperature is returned for a negative temperature.
	ErrInvalidTemperature = errors.New("sim: temperature must not be negative")
)

// Context holds Δt, the current time index and the attached network.
type Context struct {
	dt          fixed.Fixed
	time        int64
	seed        uint64
	temperature fixed.Fixed
	src         rand.Source
	network     *Network
	logger      *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithTimeDelta sets Δt. The default is 1/100.
func WithTimeDelta(dt fixed.Fixed) Option {
	return func(c *Context) {
		c.dt = dt
	}
}

// WithSeed sets the seed for momentum sampling.
func WithSeed(seed uint64) Option {
	return func(c *Context) {
		c.seed = seed
	}
}

// WithTemperature sets the thermalisation temperature. Zero gives every
// sampled momentum the value 0.
func WithTemperature(t fixed.Fixed) Option {
	return func(c *Context) {
		c.temperature = t
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// WithNetwork attaches n once the context is constructed.
func WithNetwork(n *Network) Option {
	return func(c *Context) {
		c.network = n
	}
}

// NewContext creates a context at time 0.
func NewContext(opts ...Option) (*Context, error) {
	c := &Context{
		dt:          DefaultTimeDelta,
		seed:        DefaultSeed,
		temperature: fixed.One,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dt.Sign() <= 0 {
		return nil, fmt.Errorf("%s: %w", c.dt, ErrInvalidTimeDelta)
	}
	if c.temperature.Sign() < 0 {
		return nil, fmt.Errorf("%s: %w", c.temperature, ErrInvalidTemperature)
	}
	c.src = rand.NewPCG(c.seed, c.seed)
	if n := c.network; n != nil {
		c.network = nil
		c.SetNetwork(n)
	}
	return c, nil
}

// TimeDelta returns Δt.
func (c *Context) TimeDelta() fixed.Fixed { return c.dt }

// Seed returns the momentum-sampling seed.
func (c *Context) Seed() uint64 { return c.seed }

// Temperature returns the thermalisation temperature.
func (c *Context) Temperature() fixed.Fixed { return c.temperature }

// CurrentTime returns the current time index.
func (c *Context) CurrentTime() int64 { return c.time }

// Network returns the attached network, or nil.
func (c *Context) Network() *Network { return c.network }

// SetNetwork attaches n: every coordinate is bound to this context and
// momenta not fixed with WithMomentum are sampled, in creation order. The
// current time becomes the network's time.
func (c *Context) SetNetwork(n *Network) {
	c.network = n
	n.ctx = c
	for _, coord := range n.coords {
		c.attach(n, coord)
	}
	if len(n.coords) > 0 {
		c.time = n.coords[0].Q().Time()
	}
	c.logger.Debug("network attached",
		"network", n.name,
		"coordinates", len(n.coords),
		"time", c.time)
}

func (c *Context) attach(n *Network, coord *hamiltonian.Coord) {
	coord.Bind(c)
	if !n.pending[coord] {
		return
	}
	delete(n.pending, coord)
	coord.P().Set(c.sampleMomentum(coord.Mass()))
}

func (c *Context) sampleMomentum(m fixed.Fixed) fixed.Fixed {
	if c.temperature.IsZero() {
		return fixed.Zero
	}
	d := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(c.temperature.Float64() * m.Float64()),
		Src:   c.src,
	}
	return fixed.FromFloat(d.Rand())
}

// StepForward advances the network by n full leapfrog steps.
func (c *Context) StepForward(n int) error {
	return c.stepN(n, 1)
}

// StepBackward retreats the network by n full leapfrog steps.
func (c *Context) StepBackward(n int) error {
	return c.stepN(n, -1)
}

func (c *Context) stepN(n int, dir int64) error {
	if c.network == nil {
		return ErrNoNetwork
	}
	if n < 0 {
		return fmt.Errorf("sim: negative step count %d", n)
	}
	c.logger.Debug("step request", "from", c.time, "steps", n, "direction", dir)
	for i := 0; i < n; i++ {
		if err := c.step(dir); err != nil {
			return err
		}
	}
	return nil
}

// step moves the network one leapfrog step. Between steps q sits at the
// current time t and p at t+1. Forward, every q moves to t+2 using p at t+1,
// then every p moves to t+3 using q at t+2. Backward undoes the same two
// phases in reverse order.
func (c *Context) step(dir int64) error {
	next := c.time + 2*dir
	if dir > 0 {
		if err := c.evolveQ(next); err != nil {
			return err
		}
		if err := c.evolveP(next + 1); err != nil {
			return err
		}
	} else {
		if err := c.evolveP(next + 1); err != nil {
			return err
		}
		if err := c.evolveQ(next); err != nil {
			return err
		}
	}
	c.time = next
	return nil
}

func (c *Context) evolveQ(t int64) error {
	for _, coord := range c.network.coords {
		if err := coord.Q().EvolveTo(t); err != nil {
			return fmt.Errorf("coordinate %s: %w", coord.Name(), err)
		}
	}
	return nil
}

func (c *Context) evolveP(t int64) error {
	for _, coord := range c.network.coords {
		if err := coord.P().EvolveTo(t); err != nil {
			return fmt.Errorf("coordinate %s: %w", coord.Name(), err)
		}
	}
	return nil
}

// SetCurrentTime evolves every coordinate to t. An odd t is nudged one
// index towards the current time.
func (c *Context) SetCurrentTime(t int64) error {
	if c.network == nil {
		return ErrNoNetwork
	}
	if (t-c.time)%2 != 0 {
		if t > c.time {
			t--
		} else {
			t++
		}
	}
	switch {
	case t > c.time:
		return c.StepForward(int((t - c.time) / 2))
	case t < c.time:
		return c.StepBackward(int((c.time - t) / 2))
	}
	return nil
}

// Run steps forward n times, calling observe after each step with the new
// time. A nil observe is allowed.
func (c *Context) Run(n int, observe func(t int64) error) error {
	if c.network == nil {
		return ErrNoNetwork
	}
	c.logger.Debug("run", "from", c.time, "steps", n)
	for i := 0; i < n; i++ {
		if err := c.step(1); err != nil {
			return err
		}
		if observe == nil {
			continue
		}
		if err := observe(c.time); err != nil {
			return err
		}
	}
	return nil
}
