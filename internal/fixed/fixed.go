package fixed

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	// Denominator is the process-wide denominator D. The quantum is 1/D.
	Denominator int64 = 1_000_000_000

	// Scale is the number of fractional decimal digits implied by Denominator.
	Scale = 9
)

var (
	// ErrDivideByZero is returned when dividing by a zero numerator.
	ErrDivideByZero = errors.New("fixed: division by zero")

	// ErrNotFinite is returned (or panicked with) for NaN and infinite inputs.
	ErrNotFinite = errors.New("fixed: value is not finite")
)

var (
	denom   = big.NewInt(Denominator)
	bigZero = new(big.Int)
)

// Fixed is a signed fixed-point rational N/Denominator.
type Fixed struct {
	n *big.Int
}

// Common constants.
var (
	Zero = Fixed{}
	One  = FromInt(1)
	Two  = FromInt(2)
)

func (x Fixed) num() *big.Int {
	if x.n == nil {
		return bigZero
	}
	return x.n
}

// FromInt returns the exact value i.
func FromInt(i int64) Fixed {
	n := big.NewInt(i)
	return Fixed{n.Mul(n, denom)}
}

// FromNumerator returns the value n/Denominator. n is copied.
func FromNumerator(n *big.Int) Fixed {
	return Fixed{new(big.Int).Set(n)}
}

// Ratio returns round(a·D/b)/D.
func Ratio(a, b int64) (Fixed, error) {
	if b == 0 {
		return Zero, ErrDivideByZero
	}
	n := big.NewInt(a)
	n.Mul(n, denom)
	return Fixed{roundQuo(n, big.NewInt(b))}, nil
}

// MustRatio is like Ratio but panics when b is zero. Intended for constants.
func MustRatio(a, b int64) Fixed {
	x, err := Ratio(a, b)
	if err != nil {
		panic(err)
	}
	return x
}

// FromRat returns r rounded to the nearest quantum.
func FromRat(r *big.Rat) Fixed {
	n := new(big.Int).Mul(r.Num(), denom)
	return Fixed{roundQuo(n, r.Denom())}
}

// FromFloat returns r rounded to the nearest quantum. The conversion goes
// through the exact binary value of r, so it is deterministic on every
// platform. It panics with ErrNotFinite for NaN or ±Inf, like big.Float.
func FromFloat(r float64) Fixed {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		panic(ErrNotFinite)
	}
	return FromRat(new(big.Rat).SetFloat64(r))
}

// Parse reads a decimal string such as "3.14159265" or "-2.5e-3" exactly and
// rounds it to the nearest quantum.
func Parse(s string) (Fixed, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("fixed: parse %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Zero, fmt.Errorf("fixed: parse %q: %w", s, ErrNotFinite)
	}
	n := d.Coeff.MathBigInt()
	if d.Negative {
		n.Neg(n)
	}
	shift := int64(d.Exponent) + Scale
	if shift >= 0 {
		n.Mul(n, pow10(shift))
		return Fixed{n}, nil
	}
	return Fixed{roundQuo(n, pow10(-shift))}, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) Fixed {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

// Numerator returns a copy of N.
func (x Fixed) Numerator() *big.Int {
	return new(big.Int).Set(x.num())
}

// Add returns x+y exactly.
func (x Fixed) Add(y Fixed) Fixed {
	return Fixed{new(big.Int).Add(x.num(), y.num())}
}

// Sub returns x-y exactly.
func (x Fixed) Sub(y Fixed) Fixed {
	return Fixed{new(big.Int).Sub(x.num(), y.num())}
}

// Neg returns -x exactly.
func (x Fixed) Neg() Fixed {
	return Fixed{new(big.Int).Neg(x.num())}
}

// Abs returns |x|.
func (x Fixed) Abs() Fixed {
	return Fixed{new(big.Int).Abs(x.num())}
}

// Mul returns x·y rounded to the quantum.
func (x Fixed) Mul(y Fixed) Fixed {
	n := new(big.Int).Mul(x.num(), y.num())
	return Fixed{roundQuo(n, denom)}
}

// MulInt returns x·i. The result is exact.
func (x Fixed) MulInt(i int64) Fixed {
	return Fixed{new(big.Int).Mul(x.num(), big.NewInt(i))}
}

// Div returns x/y rounded to the quantum.
func (x Fixed) Div(y Fixed) (Fixed, error) {
	if y.num().Sign() == 0 {
		return Zero, ErrDivideByZero
	}
	n := new(big.Int).Mul(x.num(), denom)
	return Fixed{roundQuo(n, y.num())}, nil
}

// DivInt returns x/i rounded to the quantum.
func (x Fixed) DivInt(i int64) (Fixed, error) {
	if i == 0 {
		return Zero, ErrDivideByZero
	}
	return Fixed{roundQuo(new(big.Int).Set(x.num()), big.NewInt(i))}, nil
}

// Cmp compares numerators: -1 if x<y, 0 if x==y, +1 if x>y.
func (x Fixed) Cmp(y Fixed) int {
	return x.num().Cmp(y.num())
}

// Equal reports whether x and y have identical numerators.
func (x Fixed) Equal(y Fixed) bool {
	return x.Cmp(y) == 0
}

// Sign returns -1, 0 or +1.
func (x Fixed) Sign() int {
	return x.num().Sign()
}

// IsZero reports whether x == 0.
func (x Fixed) IsZero() bool {
	return x.Sign() == 0
}

// Rat returns x as an exact rational.
func (x Fixed) Rat() *big.Rat {
	return new(big.Rat).SetFrac(x.num(), denom)
}

// Float64 returns the nearest float64. For diagnostics only; the simulation
// never feeds floats back into its state.
func (x Fixed) Float64() float64 {
	f, _ := x.Rat().Float64()
	return f
}

// String formats x with exactly Scale fractional digits, e.g. "-2.718280000".
func (x Fixed) String() string {
	n := x.num()
	d := apd.Decimal{Negative: n.Sign() < 0, Exponent: -Scale}
	d.Coeff.SetMathBigInt(new(big.Int).Abs(n))
	return d.Text('f')
}

// roundQuo returns a/b rounded half away from zero. a may be overwritten.
func roundQuo(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() == 0 {
		return q
	}
	r.Abs(r).Lsh(r, 1)
	if r.CmpAbs(b) >= 0 {
		if (a.Sign() < 0) != (b.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
