package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/revsim/internal/fixed"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("trace: run not found")

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var seed int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, network, seed, time_delta, temperature, steps
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Network, &seed, &run.TimeDelta, &run.Temperature, &run.Steps)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	run.Seed = uint64(seed)
	return run, nil
}

// ListRuns returns every run ordered by ID. UUIDv7 IDs sort by creation
// time.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, network, seed, time_delta, temperature, steps
		FROM runs ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var seed int64
		if err := rows.Scan(&run.ID, &run.Network, &seed, &run.TimeDelta, &run.Temperature, &run.Steps); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		run.Seed = uint64(seed)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ReadSamples returns the samples of one coordinate in a run, in sampling
// order.
func (s *Store) ReadSamples(ctx context.Context, runID, coord string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, coord, qt, q, pt, p
		FROM samples
		WHERE run_id = ? AND coord = ?
		ORDER BY seq ASC
	`, runID, coord)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		var q, p string
		if err := rows.Scan(&sm.Seq, &sm.Coord, &sm.QT, &q, &sm.PT, &p); err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
		if sm.Q, err = fixed.Parse(q); err != nil {
			return nil, fmt.Errorf("sample %d q: %w", sm.Seq, err)
		}
		if sm.P, err = fixed.Parse(p); err != nil {
			return nil, fmt.Errorf("sample %d p: %w", sm.Seq, err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// RunCoordinates returns the coordinates sampled in a run, in the order
// they were recorded.
func (s *Store) RunCoordinates(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT coord FROM samples
		WHERE run_id = ? AND seq = 0
		ORDER BY rowid ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run coordinates: %w", err)
	}
	defer rows.Close()

	var coords []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("run coordinates: %w", err)
		}
		coords = append(coords, c)
	}
	return coords, rows.Err()
}
