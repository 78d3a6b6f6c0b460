package trace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/sim"
	"github.com/roach88/revsim/internal/testutil"
)

// freeParticles records two unforced coordinates for three steps.
func freeParticles(t *testing.T) *Recorder {
	t.Helper()
	n := sim.NewNetwork("free")
	x, err := n.AddCoordinate("X", fixed.Zero, sim.WithMomentum(fixed.MustParse("0.5")))
	require.NoError(t, err)
	y, err := n.AddCoordinate("Y", fixed.One, sim.WithMomentum(fixed.MustParse("-0.25")))
	require.NoError(t, err)
	ctx := testutil.ColdContext(t, sim.WithNetwork(n))

	rec := NewRecorder(x, y)
	rec.Sample()
	require.NoError(t, ctx.Run(3, rec.Observe))
	return rec
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecorder_CSVGolden(t *testing.T) {
	rec := freeParticles(t)
	assert.Equal(t, 4, rec.Len())

	var buf bytes.Buffer
	require.NoError(t, rec.WriteCSV(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "free_particles", buf.Bytes())
}

func TestRecorder_Header(t *testing.T) {
	rec := freeParticles(t)
	assert.Equal(t, []string{"X.qt", "X.q", "X.pt", "X.p", "Y.qt", "Y.q", "Y.pt", "Y.p"}, rec.Header())

	samples := rec.Samples()
	require.Len(t, samples, 8)
	last := samples[len(samples)-1]
	assert.Equal(t, 3, last.Seq)
	assert.Equal(t, "Y", last.Coord)
	assert.Equal(t, int64(6), last.QT)
	assert.Equal(t, int64(7), last.PT)
	assert.Equal(t, "0.985000000", last.Q.String())
}

func TestOpen_CreatesDatabaseWithPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	for _, table := range []string{"runs", "samples"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/trace.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestStore_RecordAndRead(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	rec := freeParticles(t)

	run := Run{
		ID:          testutil.NewFixedRunIDGenerator("run-1").Generate(),
		Network:     "free",
		Seed:        1,
		TimeDelta:   "0.010000000",
		Temperature: "0.000000000",
		Steps:       3,
	}
	require.NoError(t, s.Record(ctx, run, rec))
	// idempotent
	require.NoError(t, s.Record(ctx, run, rec))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	ys, err := s.ReadSamples(ctx, "run-1", "Y")
	require.NoError(t, err)
	require.Len(t, ys, 4)
	for i, sm := range ys {
		assert.Equal(t, i, sm.Seq)
		assert.Equal(t, int64(2*i), sm.QT)
		assert.Equal(t, int64(2*i+1), sm.PT)
		assert.True(t, fixed.MustParse("-0.25").Equal(sm.P))
	}
	assert.Equal(t, "0.985000000", ys[3].Q.String())

	coords, err := s.RunCoordinates(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, coords)

	_, err = s.ReadRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_SamplesNeedRun(t *testing.T) {
	s := openStore(t)
	err := s.WriteSamples(context.Background(), "ghost", []Sample{{Coord: "X"}})
	assert.Error(t, err, "foreign key enforcement rejects samples without a run")
}

func TestStore_ListRunsInCreationOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	gen := UUIDv7Generator{}

	var ids []string
	for i := 0; i < 3; i++ {
		id := gen.Generate()
		ids = append(ids, id)
		require.NoError(t, s.WriteRun(ctx, Run{ID: id, Network: "n", TimeDelta: "0.01", Temperature: "1", Steps: i}))
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, r := range runs {
		assert.Equal(t, ids[i], r.ID)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	assert.Len(t, id, 36)
	u, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}
