package netspec

import (
	"errors"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/gates"
	"github.com/roach88/revsim/internal/sim"
	"github.com/roach88/revsim/internal/testutil"
)

func num(s string) fixed.Fixed { return fixed.MustParse(s) }

func compileString(t *testing.T, src string) ([]*Spec, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return compileAll(v)
}

func TestCompile_Defaults(t *testing.T) {
	v := cuecontext.New().CompileString(`
		network: single: coordinates: X: position: 0.5
	`)
	require.NoError(t, v.Err())

	s, err := Compile(v.LookupPath(cue.ParsePath("network.single")))
	require.NoError(t, err)

	assert.Equal(t, "single", s.Name)
	assert.True(t, sim.DefaultTimeDelta.Equal(s.TimeDelta))
	assert.Equal(t, sim.DefaultSeed, s.Seed)
	assert.True(t, fixed.One.Equal(s.Temperature))
	require.Len(t, s.Coordinates, 1)

	c := s.Coordinates[0]
	assert.Equal(t, "X", c.Name)
	assert.Equal(t, "0.500000000", c.Position.String())
	assert.True(t, fixed.One.Equal(c.Mass))
	assert.True(t, fixed.One.Equal(c.Stiffness))
	assert.Nil(t, c.Momentum)
	assert.Nil(t, c.Bias)
	assert.Empty(t, s.Gates)
}

func TestLoad_Directory(t *testing.T) {
	specs, err := Load(filepath.Join("testdata", "networks"))
	require.NoError(t, err)

	var names []string
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"fulladder", "notpair", "drift"}, names)

	drift, ok := Find(specs, "drift")
	require.True(t, ok)
	assert.Equal(t, "0.500000000", drift.TimeDelta.String())
	assert.Equal(t, uint64(7), drift.Seed)

	p, ok := drift.Coordinate("P")
	require.True(t, ok)
	assert.Equal(t, "2.000000000", p.Mass.String())
	require.NotNil(t, p.Momentum)
	assert.True(t, fixed.One.Equal(*p.Momentum))

	require.Len(t, drift.Gates, 1)
	g := drift.Gates[0]
	assert.Equal(t, KindRange, g.Kind)
	assert.Equal(t, []string{"Q"}, g.Inputs)
	assert.Empty(t, g.Output)
	assert.Equal(t, "-1.000000000", g.Low.String())
	assert.Equal(t, "0.500000000", g.Stiffness.String())

	_, ok = Find(specs, "missing")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope"))
	assert.Error(t, err)

	_, err = Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = LoadPath(filepath.Join("testdata", "networks", "small.cue"))
	assert.NoError(t, err)
}

func TestLoadFile_PositionedErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "invalid", "unknown_kind.cue"))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "gates[0].kind", ce.Field)
	assert.Contains(t, ce.Message, `"nand"`)
	assert.Equal(t, 6, ce.Pos.Line())
	assert.Contains(t, err.Error(), "unknown_kind.cue:6:")

	_, err = LoadFile(filepath.Join("testdata", "invalid", "syntax.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax.cue")
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "no coordinates",
			src:   `network: n: time_delta: 0.1`,
			field: "coordinates",
		},
		{
			name:  "missing position",
			src:   `network: n: coordinates: X: mass: 1`,
			field: "coordinates.X.position",
		},
		{
			name:  "non-numeric position",
			src:   `network: n: coordinates: X: position: "zero"`,
			field: "coordinates.X.position",
		},
		{
			name:  "zero time delta",
			src:   `network: n: {time_delta: 0, coordinates: X: position: 0}`,
			field: "time_delta",
		},
		{
			name:  "negative temperature",
			src:   `network: n: {temperature: -1, coordinates: X: position: 0}`,
			field: "temperature",
		},
		{
			name:  "zero mass",
			src:   `network: n: coordinates: X: {position: 0, mass: 0}`,
			field: "coordinates.X.mass",
		},
		{
			name:  "arity",
			src:   `network: n: {coordinates: {X: position: 0, Y: position: 0}, gates: [{kind: "and", inputs: ["X"], output: "Y"}]}`,
			field: "gates[0].inputs",
		},
		{
			name:  "missing output",
			src:   `network: n: {coordinates: {X: position: 0}, gates: [{kind: "not", inputs: ["X"]}]}`,
			field: "gates[0].output",
		},
		{
			name:  "output on range",
			src:   `network: n: {coordinates: {X: position: 0}, gates: [{kind: "range", inputs: ["X"], output: "X"}]}`,
			field: "gates[0].output",
		},
		{
			name:  "unknown coordinate",
			src:   `network: n: {coordinates: {X: position: 0}, gates: [{kind: "not", inputs: ["X"], output: "Z"}]}`,
			field: "gates[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src)
			require.Error(t, err)
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestLoad_DuplicateNetwork(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join("testdata", "networks", "small.cue")
	for _, name := range []string{"a.cue", "b.cue"} {
		copyFile(t, src, filepath.Join(dir, name))
	}
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrDuplicateNetwork)
}

func TestBuild_StaticNotPair(t *testing.T) {
	specs, err := LoadFile(filepath.Join("testdata", "networks", "small.cue"))
	require.NoError(t, err)
	s, ok := Find(specs, "notpair")
	require.True(t, ok)

	ctx, err := Build(s)
	require.NoError(t, err)
	n := ctx.Network()
	require.NotNil(t, n)
	assert.Equal(t, "notpair", n.Name())
	// two kinetic terms, two memory cells, one NOT
	assert.Len(t, n.Hamiltonian().Terms(), 5)

	// Every well is at its minimum and no momentum was sampled.
	require.NoError(t, ctx.StepForward(100))
	x, _ := n.Coordinate("X")
	y, _ := n.Coordinate("Y")
	assert.True(t, fixed.One.Equal(x.Q().Value()))
	assert.True(t, fixed.Zero.Equal(y.Q().Value()))
	assert.Equal(t, int64(200), ctx.CurrentTime())
}

func TestBuild_OptionsOverrideSpec(t *testing.T) {
	specs, err := LoadFile(filepath.Join("testdata", "networks", "small.cue"))
	require.NoError(t, err)
	s, _ := Find(specs, "drift")

	ctx, err := Build(s, sim.WithTimeDelta(num("0.25")), sim.WithTemperature(fixed.Zero))
	require.NoError(t, err)
	assert.Equal(t, "0.250000000", ctx.TimeDelta().String())
	assert.Equal(t, uint64(7), ctx.Seed())

	p, _ := ctx.Network().Coordinate("P")
	q, _ := ctx.Network().Coordinate("Q")
	assert.True(t, fixed.One.Equal(p.P().Value()), "momentum fixed by the spec")
	assert.True(t, fixed.Zero.Equal(q.P().Value()), "cold context samples zero")
	assert.Equal(t, "2.000000000", p.Mass().String())

	// Round trip is exact whatever the wiring.
	before := ctx.Network().State()
	require.NoError(t, ctx.StepForward(40))
	require.NoError(t, ctx.StepBackward(40))
	after := ctx.Network().State()
	for i := range before {
		assert.True(t, before[i].Equal(after[i]), before[i].Name)
	}
}

func TestBuild_MatchesFullAdderBuilder(t *testing.T) {
	specs, err := LoadFile(filepath.Join("testdata", "networks", "fulladder.cue"))
	require.NoError(t, err)
	fromFile, err := Build(specs[0])
	require.NoError(t, err)

	built := testutil.ColdContext(t)
	_, err = gates.BuildFullAdder(built, false, true, true)
	require.NoError(t, err)

	require.Len(t, fromFile.Network().Coordinates(), len(built.Network().Coordinates()))
	assert.Len(t, fromFile.Network().Hamiltonian().Terms(), len(built.Network().Hamiltonian().Terms()))

	require.NoError(t, fromFile.StepForward(25))
	require.NoError(t, built.StepForward(25))
	for _, c := range built.Network().Coordinates() {
		other, ok := fromFile.Network().Coordinate(c.Name())
		require.True(t, ok, c.Name())
		assert.Equal(t, c.Q().Value().String(), other.Q().Value().String(), c.Name())
		assert.Equal(t, c.P().Value().String(), other.P().Value().String(), c.Name())
	}
}
