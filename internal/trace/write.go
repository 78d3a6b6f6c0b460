package trace

import (
	"context"
	"fmt"
)

// Run describes one recorded simulation run.
type Run struct {
	ID          string
	Network     string
	Seed        uint64
	TimeDelta   string
	Temperature string
	Steps       int
}

// WriteRun inserts a run record. Duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, network, seed, time_delta, temperature, steps)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Network,
		int64(run.Seed),
		run.TimeDelta,
		run.Temperature,
		run.Steps,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSamples inserts samples for runID in a single transaction. The run
// must already exist.
func (s *Store) WriteSamples(ctx context.Context, runID string, samples []Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, seq, coord, qt, q, pt, p)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq, coord) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	defer stmt.Close()

	for _, sm := range samples {
		if _, err := stmt.ExecContext(ctx,
			runID, sm.Seq, sm.Coord, sm.QT, sm.Q.String(), sm.PT, sm.P.String(),
		); err != nil {
			return fmt.Errorf("write sample %d/%s: %w", sm.Seq, sm.Coord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// Record writes run and every sample from rec.
func (s *Store) Record(ctx context.Context, run Run, rec *Recorder) error {
	if err := s.WriteRun(ctx, run); err != nil {
		return err
	}
	return s.WriteSamples(ctx, run.ID, rec.Samples())
}
