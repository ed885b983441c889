package types

import (
	"cosmossdk.io/math"

	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
)

// LiquidationResult is the outcome of a liquidation computed against a
// position snapshot. It is never persisted.
type LiquidationResult struct {
	HealthFactor         math.Int
	Discount             math.Int
	MaxLiquidatable      math.Int
	Repaid               math.Int
	CollateralLiquidated math.Int
	FeeShare             math.Int
	LiquidatorShare      math.Int
	NewDebt              math.Int
	NewCollateral        math.Int
}

// Wipeout reports whether the liquidation seized all remaining collateral.
func (r LiquidationResult) Wipeout() bool {
	return r.NewCollateral.IsZero() && r.CollateralLiquidated.IsPositive()
}

// LiquidationDiscount returns min(MaxLiqDiscount, MinCollRatio + surcharge - hf).
// It grows as the health factor falls and is zero for healthy accounts.
func LiquidationDiscount(healthFactor math.Int) math.Int {
	ceiling := MinCollRatio.Add(LiquidationSurcharge)
	if healthFactor.GTE(ceiling) {
		return math.ZeroInt()
	}
	return MinInt(ceiling.Sub(healthFactor), MaxLiqDiscount)
}

// liquidationCap is the debt repayment that lifts the position to
// MaxLiqCollRatio, clamped to [0, debt].
func liquidationCap(pos Position, price oracletypes.Price, discount math.Int) math.Int {
	target := pos.Debt.Mul(MaxLiqCollRatio)
	value := price.Value.Mul(Precision).Mul(pos.Collateral).Quo(Pow10(price.Decimals))
	if value.GTE(target) {
		return math.ZeroInt()
	}
	denominator := MaxLiqCollRatio.Sub(Precision.Add(discount))
	return MinInt(target.Sub(value).Quo(denominator), pos.Debt)
}

// CollateralForRepay is the collateral a repayment buys at the discounted
// price, before clamping to what the position holds.
func CollateralForRepay(repay, discount math.Int, price oracletypes.Price) math.Int {
	return repay.Mul(Precision.Add(discount)).Quo(price.Value).Mul(Pow10(price.Decimals)).Quo(Precision)
}

// SurchargeForRepay is the protocol's cut of a repayment, in collateral.
func SurchargeForRepay(repay math.Int, price oracletypes.Price) math.Int {
	return repay.Mul(Pow10(price.Decimals)).Mul(LiquidationSurcharge).Quo(price.Value).Quo(Precision)
}

// MaxLiquidatable returns the largest repayment a liquidator may make
// against pos without seizing more collateral than the position holds.
// Healthy positions return zero.
func MaxLiquidatable(pos Position, price oracletypes.Price) (math.Int, error) {
	if err := ValidatePrice(price); err != nil {
		return math.Int{}, err
	}
	if pos.Debt.IsZero() {
		return math.ZeroInt(), nil
	}
	hf := HealthFactor(pos.Collateral, pos.Debt, price.Value, price.Decimals)
	if hf.GTE(MinCollRatio) {
		return math.ZeroInt(), nil
	}
	discount := LiquidationDiscount(hf)
	limit := liquidationCap(pos, price, discount)
	if CollateralForRepay(limit, discount, price).LTE(pos.Collateral) {
		return limit, nil
	}

	// CollateralForRepay is monotonic in repay; search for the largest
	// repayment whose seizure still fits.
	lo, hi := math.ZeroInt(), limit
	for lo.LT(hi) {
		mid := lo.Add(hi).AddRaw(1).QuoRaw(2)
		if CollateralForRepay(mid, discount, price).LTE(pos.Collateral) {
			lo = mid
		} else {
			hi = mid.SubRaw(1)
		}
	}
	return lo, nil
}

// ComputeLiquidation validates a liquidation of repay against pos and returns
// the resulting split. minCollateralOut bounds the liquidator's share.
func ComputeLiquidation(pos Position, price oracletypes.Price, repay, minCollateralOut math.Int) (LiquidationResult, error) {
	if err := ValidatePrice(price); err != nil {
		return LiquidationResult{}, err
	}
	if repay.IsNil() || repay.IsNegative() || minCollateralOut.IsNil() || minCollateralOut.IsNegative() {
		return LiquidationResult{}, ErrInvalidAmount.Wrap("liquidation amounts must be non-negative")
	}

	hf := HealthFactor(pos.Collateral, pos.Debt, price.Value, price.Decimals)
	if pos.Debt.IsZero() || hf.GTE(MinCollRatio) {
		return LiquidationResult{}, ErrCannotLiquidateHealthyAccount.Wrapf("health factor %s", hf)
	}

	discount := LiquidationDiscount(hf)
	maxRepay := liquidationCap(pos, price, discount)
	if repay.GT(maxRepay) {
		return LiquidationResult{}, ErrWrongLiquidationAmount.Wrapf("requested %s, max %s", repay, maxRepay)
	}

	seized := MinInt(CollateralForRepay(repay, discount, price), pos.Collateral)
	fee := SurchargeForRepay(repay, price)
	if fee.GT(seized) {
		return LiquidationResult{}, ErrSlippageTooHigh.Wrapf("surcharge %s exceeds seizable collateral %s", fee, seized)
	}
	liquidatorShare := seized.Sub(fee)
	if liquidatorShare.LT(minCollateralOut) {
		return LiquidationResult{}, ErrSlippageTooHigh.Wrapf("received %s, minimum %s", liquidatorShare, minCollateralOut)
	}

	return LiquidationResult{
		HealthFactor:         hf,
		Discount:             discount,
		MaxLiquidatable:      maxRepay,
		Repaid:               repay,
		CollateralLiquidated: seized,
		FeeShare:             fee,
		LiquidatorShare:      liquidatorShare,
		NewDebt:              pos.Debt.Sub(repay),
		NewCollateral:        pos.Collateral.Sub(seized),
	}, nil
}
