package types

import (
	"cosmossdk.io/math"

	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
)

// ValidatePrice rejects prices the oracle flagged invalid, zero prices and
// decimals the engine cannot scale.
func ValidatePrice(price oracletypes.Price) error {
	if !price.Valid || price.Value.IsNil() || !price.Value.IsPositive() {
		return ErrOracleCorrupt
	}
	if price.Decimals > MaxPriceDecimals {
		return ErrOracleCorrupt.Wrapf("decimals %d", price.Decimals)
	}
	return nil
}

// HealthFactor returns collateral * price * Precision / debt / 10^decimals,
// or InfiniteHealth when debt is zero.
func HealthFactor(collateral, debt, price math.Int, decimals uint32) math.Int {
	if debt.IsZero() {
		return InfiniteHealth
	}
	return collateral.Mul(price).Mul(Precision).Quo(debt).Quo(Pow10(decimals))
}

// PositionHealth validates price and returns the position's health factor.
func PositionHealth(pos Position, price oracletypes.Price) (math.Int, error) {
	if err := ValidatePrice(price); err != nil {
		return math.Int{}, err
	}
	return HealthFactor(pos.Collateral, pos.Debt, price.Value, price.Decimals), nil
}

// IsHealthy reports whether pos has no debt or a health factor of at least
// MinCollRatio.
func IsHealthy(pos Position, price oracletypes.Price) (bool, error) {
	if err := ValidatePrice(price); err != nil {
		return false, err
	}
	if pos.Debt.IsZero() {
		return true, nil
	}
	return HealthFactor(pos.Collateral, pos.Debt, price.Value, price.Decimals).GTE(MinCollRatio), nil
}
