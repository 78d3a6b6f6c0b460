package netspec

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/revsim/internal/fixed"
	"github.com/roach88/revsim/internal/gates"
	"github.com/roach88/revsim/internal/sim"
)

// Gate kinds understood by Build.
const (
	KindNot   = "not"
	KindAnd   = "and"
	KindOr    = "or"
	KindXor   = "xor"
	KindRange = "range"
)

// gateArity is the number of inputs each kind takes, and whether it drives
// an output coordinate.
var gateArity = map[string]struct {
	inputs int
	output bool
}{
	KindNot:   {1, true},
	KindAnd:   {2, true},
	KindOr:    {2, true},
	KindXor:   {2, true},
	KindRange: {1, false},
}

// Spec is a compiled network definition.
type Spec struct {
	Name        string
	TimeDelta   fixed.Fixed
	Seed        uint64
	Temperature fixed.Fixed
	Coordinates []CoordSpec
	Gates       []GateSpec
	Pos         token.Pos
}

// CoordSpec declares one canonical coordinate.
type CoordSpec struct {
	Name     string
	Position fixed.Fixed
	Mass     fixed.Fixed
	// Momentum fixes p at creation instead of thermalising it.
	Momentum *fixed.Fixed
	// Bias adds a memory cell holding the coordinate near this value.
	Bias      *fixed.Fixed
	Stiffness fixed.Fixed
	Pos       token.Pos
}

// GateSpec declares one interaction between coordinates.
type GateSpec struct {
	Kind      string
	Inputs    []string
	Output    string
	Stiffness fixed.Fixed
	// Low and High are the wells of a range binder.
	Low  fixed.Fixed
	High fixed.Fixed
	Pos  token.Pos
}

// Coordinate returns the named coordinate declaration.
func (s *Spec) Coordinate(name string) (CoordSpec, bool) {
	for _, c := range s.Coordinates {
		if c.Name == name {
			return c, true
		}
	}
	return CoordSpec{}, false
}

// CompileError is a definition error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses a single network value, the struct under network.<name>.
// The network name is the value's last path selector.
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Spec{
		TimeDelta:   sim.DefaultTimeDelta,
		Seed:        sim.DefaultSeed,
		Temperature: fixed.One,
		Pos:         v.Pos(),
	}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		s.Name = sim.CanonicalName(sels[len(sels)-1].Unquoted())
	}
	if s.Name == "" {
		return nil, &CompileError{Field: "network", Message: "network name is required", Pos: v.Pos()}
	}

	var err error
	if f := v.LookupPath(cue.ParsePath("time_delta")); f.Exists() {
		if s.TimeDelta, err = number(f, "time_delta"); err != nil {
			return nil, err
		}
		if s.TimeDelta.Sign() <= 0 {
			return nil, &CompileError{Field: "time_delta", Message: "must be positive", Pos: f.Pos()}
		}
	}
	if f := v.LookupPath(cue.ParsePath("seed")); f.Exists() {
		if s.Seed, err = f.Uint64(); err != nil {
			return nil, &CompileError{Field: "seed", Message: "must be a non-negative integer", Pos: f.Pos()}
		}
	}
	if f := v.LookupPath(cue.ParsePath("temperature")); f.Exists() {
		if s.Temperature, err = number(f, "temperature"); err != nil {
			return nil, err
		}
		if s.Temperature.Sign() < 0 {
			return nil, &CompileError{Field: "temperature", Message: "must not be negative", Pos: f.Pos()}
		}
	}

	if s.Coordinates, err = parseCoordinates(v); err != nil {
		return nil, err
	}
	if s.Gates, err = parseGates(v, s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseCoordinates(v cue.Value) ([]CoordSpec, error) {
	cv := v.LookupPath(cue.ParsePath("coordinates"))
	if !cv.Exists() {
		return nil, &CompileError{Field: "coordinates", Message: "at least one coordinate is required", Pos: v.Pos()}
	}
	iter, err := cv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var coords []CoordSpec
	seen := make(map[string]bool)
	for iter.Next() {
		name := sim.CanonicalName(iter.Selector().Unquoted())
		field := "coordinates." + name
		val := iter.Value()
		if seen[name] {
			return nil, &CompileError{Field: field, Message: "duplicate coordinate", Pos: val.Pos()}
		}
		seen[name] = true

		c := CoordSpec{
			Name:      name,
			Mass:      fixed.One,
			Stiffness: gates.DefaultStiffness,
			Pos:       val.Pos(),
		}
		pf := val.LookupPath(cue.ParsePath("position"))
		if !pf.Exists() {
			return nil, &CompileError{Field: field + ".position", Message: "position is required", Pos: val.Pos()}
		}
		if c.Position, err = number(pf, field+".position"); err != nil {
			return nil, err
		}
		if f := val.LookupPath(cue.ParsePath("mass")); f.Exists() {
			if c.Mass, err = number(f, field+".mass"); err != nil {
				return nil, err
			}
			if c.Mass.Sign() <= 0 {
				return nil, &CompileError{Field: field + ".mass", Message: "must be positive", Pos: f.Pos()}
			}
		}
		if f := val.LookupPath(cue.ParsePath("momentum")); f.Exists() {
			p, err := number(f, field+".momentum")
			if err != nil {
				return nil, err
			}
			c.Momentum = &p
		}
		if f := val.LookupPath(cue.ParsePath("bias")); f.Exists() {
			b, err := number(f, field+".bias")
			if err != nil {
				return nil, err
			}
			c.Bias = &b
		}
		if f := val.LookupPath(cue.ParsePath("stiffness")); f.Exists() {
			if c.Stiffness, err = number(f, field+".stiffness"); err != nil {
				return nil, err
			}
		}
		coords = append(coords, c)
	}
	if len(coords) == 0 {
		return nil, &CompileError{Field: "coordinates", Message: "at least one coordinate is required", Pos: cv.Pos()}
	}
	return coords, nil
}

func parseGates(v cue.Value, s *Spec) ([]GateSpec, error) {
	gv := v.LookupPath(cue.ParsePath("gates"))
	if !gv.Exists() {
		return nil, nil
	}
	iter, err := gv.List()
	if err != nil {
		return nil, &CompileError{Field: "gates", Message: "must be a list", Pos: gv.Pos()}
	}

	var specs []GateSpec
	for i := 0; iter.Next(); i++ {
		val := iter.Value()
		field := fmt.Sprintf("gates[%d]", i)
		g := GateSpec{
			Stiffness: gates.DefaultStiffness,
			Low:       fixed.Zero,
			High:      fixed.One,
			Pos:       val.Pos(),
		}

		kf := val.LookupPath(cue.ParsePath("kind"))
		if !kf.Exists() {
			return nil, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: val.Pos()}
		}
		if g.Kind, err = kf.String(); err != nil {
			return nil, &CompileError{Field: field + ".kind", Message: "must be a string", Pos: kf.Pos()}
		}
		shape, ok := gateArity[g.Kind]
		if !ok {
			return nil, &CompileError{Field: field + ".kind", Message: fmt.Sprintf("unknown gate kind %q", g.Kind), Pos: kf.Pos()}
		}

		inf := val.LookupPath(cue.ParsePath("inputs"))
		if inf.Exists() {
			if g.Inputs, err = stringList(inf, field+".inputs"); err != nil {
				return nil, err
			}
		}
		if len(g.Inputs) != shape.inputs {
			return nil, &CompileError{
				Field:   field + ".inputs",
				Message: fmt.Sprintf("%s takes %d inputs, got %d", g.Kind, shape.inputs, len(g.Inputs)),
				Pos:     val.Pos(),
			}
		}

		of := val.LookupPath(cue.ParsePath("output"))
		switch {
		case shape.output && !of.Exists():
			return nil, &CompileError{Field: field + ".output", Message: g.Kind + " requires an output", Pos: val.Pos()}
		case !shape.output && of.Exists():
			return nil, &CompileError{Field: field + ".output", Message: g.Kind + " takes no output", Pos: of.Pos()}
		case of.Exists():
			out, err := of.String()
			if err != nil {
				return nil, &CompileError{Field: field + ".output", Message: "must be a string", Pos: of.Pos()}
			}
			g.Output = sim.CanonicalName(out)
		}

		for _, name := range g.wired() {
			if _, ok := s.Coordinate(name); !ok {
				return nil, &CompileError{Field: field, Message: fmt.Sprintf("unknown coordinate %q", name), Pos: val.Pos()}
			}
		}

		if f := val.LookupPath(cue.ParsePath("stiffness")); f.Exists() {
			if g.Stiffness, err = number(f, field+".stiffness"); err != nil {
				return nil, err
			}
		}
		if f := val.LookupPath(cue.ParsePath("low")); f.Exists() {
			if g.Low, err = number(f, field+".low"); err != nil {
				return nil, err
			}
		}
		if f := val.LookupPath(cue.ParsePath("high")); f.Exists() {
			if g.High, err = number(f, field+".high"); err != nil {
				return nil, err
			}
		}
		specs = append(specs, g)
	}
	return specs, nil
}

// wired lists every coordinate the gate touches, inputs first.
func (g GateSpec) wired() []string {
	names := append([]string(nil), g.Inputs...)
	if g.Output != "" {
		names = append(names, g.Output)
	}
	return names
}

// number reads a concrete CUE number exactly. Its JSON form is the decimal
// literal, which Parse rounds to the fixed-point quantum.
func number(v cue.Value, field string) (fixed.Fixed, error) {
	if v.IncompleteKind()&cue.NumberKind == 0 {
		return fixed.Fixed{}, &CompileError{Field: field, Message: "must be a number", Pos: v.Pos()}
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fixed.Fixed{}, &CompileError{Field: field, Message: "must be a concrete number", Pos: v.Pos()}
	}
	f, err := fixed.Parse(string(b))
	if err != nil {
		return fixed.Fixed{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return f, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, sim.CanonicalName(s))
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
