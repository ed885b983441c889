package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// All engine values are non-negative fixed-point integers scaled by
// Precision. Quo truncates toward zero, which for non-negative operands is
// floor: every rounding loss falls on the party receiving the quotient.
var (
	Precision = math.NewIntWithDecimal(1, 18)

	MinCollRatio         = math.NewIntWithDecimal(12, 17) // 1.2
	UnderwaterRatio      = math.NewIntWithDecimal(11, 17) // 1.1
	MaxLiqCollRatio      = math.NewIntWithDecimal(13, 17) // 1.3
	LiquidationSurcharge = math.NewIntWithDecimal(2, 16)  // 2%
	MaxLiqDiscount       = math.NewIntWithDecimal(2, 17)  // 20%
	MaxFeePerc           = math.NewIntWithDecimal(4, 17)  // 40%

	// InfiniteHealth is reported for positions without debt.
	InfiniteHealth = math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
)

// MaxPriceDecimals bounds the oracle decimals accepted by the engine.
const MaxPriceDecimals = 36

// Pow10 returns 10^decimals.
func Pow10(decimals uint32) math.Int {
	return math.NewIntWithDecimal(1, int(decimals))
}

// MinInt returns the smaller of a and b.
func MinInt(a, b math.Int) math.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi math.Int) math.Int {
	if v.LT(lo) {
		return lo
	}
	if v.GT(hi) {
		return hi
	}
	return v
}

// MulFrac returns amount * frac / Precision.
func MulFrac(amount, frac math.Int) math.Int {
	return amount.Mul(frac).Quo(Precision)
}
