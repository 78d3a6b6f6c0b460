package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/revsim/internal/fixed"
)

// CoordStats summarises one coordinate's position over a run.
type CoordStats struct {
	Name   string      `json:"name"`
	Mean   float64     `json:"mean"`
	StdDev float64     `json:"stddev"`
	Final  fixed.Fixed `json:"final"`
}

// Report is the result of Test: per-coordinate position statistics sampled
// after every step.
type Report struct {
	Network     string       `json:"network"`
	Steps       int          `json:"steps"`
	Time        int64        `json:"time"`
	Coordinates []CoordStats `json:"coordinates"`
}

// Stats returns the statistics for the named coordinate.
func (r *Report) Stats(name string) (CoordStats, bool) {
	key := CanonicalName(name)
	for _, s := range r.Coordinates {
		if s.Name == key {
			return s, true
		}
	}
	return CoordStats{}, false
}

// Mean returns the time-averaged position of the named coordinate.
func (r *Report) Mean(name string) (float64, bool) {
	s, ok := r.Stats(name)
	return s.Mean, ok
}

// Test runs steps forward steps, sampling every coordinate's position after
// each one, and reports the mean and standard deviation of each. Observers
// are called after each sample, in order.
func (c *Context) Test(steps int, observers ...func(t int64) error) (*Report, error) {
	if c.network == nil {
		return nil, ErrNoNetwork
	}
	coords := c.network.coords
	samples := make([][]float64, len(coords))
	for i := range samples {
		samples[i] = make([]float64, 0, steps)
	}
	err := c.Run(steps, func(t int64) error {
		for i, coord := range coords {
			samples[i] = append(samples[i], coord.Q().Value().Float64())
		}
		for _, observe := range observers {
			if err := observe(t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("test run: %w", err)
	}

	r := &Report{
		Network:     c.network.name,
		Steps:       steps,
		Time:        c.time,
		Coordinates: make([]CoordStats, len(coords)),
	}
	for i, coord := range coords {
		s := CoordStats{Name: coord.Name(), Final: coord.Q().Value()}
		switch len(samples[i]) {
		case 0:
		case 1:
			s.Mean = samples[i][0]
		default:
			s.Mean, s.StdDev = stat.MeanStdDev(samples[i], nil)
		}
		r.Coordinates[i] = s
	}
	c.logger.Debug("test complete", "network", r.Network, "steps", steps, "time", r.Time)
	return r, nil
}
