package fixed

import "math/big"

// FromScaledNumerator returns round(n / D^k) as a Fixed, where D is the
// Denominator. It lets callers accumulate an exact sum of products of
// numerators (each product of k+1 factors carries D^(k+1)) and round once.
func FromScaledNumerator(n *big.Int, k int) Fixed {
	if k <= 0 {
		return FromNumerator(n)
	}
	d := new(big.Int).Exp(denom, big.NewInt(int64(k)), nil)
	return Fixed{roundQuo(new(big.Int).Set(n), d)}
}

// DenominatorPower returns D^k.
func DenominatorPower(k int) *big.Int {
	return new(big.Int).Exp(denom, big.NewInt(int64(k)), nil)
}
