package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/hamiltonian"
)

// Sample is one coordinate's state at one sampling point.
type Sample struct {
	Seq   int
	Coord string
	QT    int64
	Q     fixed.Fixed
	PT    int64
	P     fixed.Fixed
}

// Recorder samples a fixed set of coordinates.
type Recorder struct {
	coords []*hamiltonian.Coord
	rows   [][]Sample
}

// NewRecorder observes coords in the given order.
func NewRecorder(coords ...*hamiltonian.Coord) *Recorder {
	return &Recorder{coords: append([]*hamiltonian.Coord(nil), coords...)}
}

// Sample appends the current state of every observed coordinate.
func (r *Recorder) Sample() {
	seq := len(r.rows)
	row := make([]Sample, len(r.coords))
	for i, c := range r.coords {
		s := c.State()
		row[i] = Sample{
			Seq:   seq,
			Coord: c.Name(),
			QT:    s.Q.Time,
			Q:     s.Q.Value,
			PT:    s.P.Time,
			P:     s.P.Value,
		}
	}
	r.rows = append(r.rows, row)
}

// Observe samples and never fails. Its signature matches the observer taken
// by sim.Context.Run.
func (r *Recorder) Observe(int64) error {
	r.Sample()
	return nil
}

// Len returns the number of sampling points recorded.
func (r *Recorder) Len() int { return len(r.rows) }

// Samples returns every sample, row by row.
func (r *Recorder) Samples() []Sample {
	var out []Sample
	for _, row := range r.rows {
		out = append(out, row...)
	}
	return out
}

// Header returns the CSV header row.
func (r *Recorder) Header() []string {
	h := make([]string, 0, 4*len(r.coords))
	for _, c := range r.coords {
		n := c.Name()
		h = append(h, n+".qt", n+".q", n+".pt", n+".p")
	}
	return h
}

// WriteCSV writes the header and one row per sampling point.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range r.rows {
		rec := make([]string, 0, 4*len(row))
		for _, s := range row {
			rec = append(rec,
				strconv.FormatInt(s.QT, 10), s.Q.String(),
				strconv.FormatInt(s.PT, 10), s.P.String())
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
