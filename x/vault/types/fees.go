package types

import (
	"cosmossdk.io/math"
)

// Fee registry keys
const (
	FeeKeySwapProtocol = "GLP_VAULT_PROTOCOL_FEE"
	FeeKeyLiquidation  = "TAURUS_LIQUIDATION_FEE"
)

// DefaultSwapProtocolFee is 20% of swapped input.
var DefaultSwapProtocolFee = math.NewIntWithDecimal(2, 17)

// FeeEntry is a single fee registry row.
type FeeEntry struct {
	Key  string   `json:"key"`
	Perc math.Int `json:"perc"`
}

// ValidateFeePerc enforces the MaxFeePerc cap, inclusive.
func ValidateFeePerc(perc math.Int) error {
	if perc.IsNil() || perc.IsNegative() {
		return ErrInvalidAmount.Wrap("fee percentage must be non-negative")
	}
	if perc.GT(MaxFeePerc) {
		return ErrFeePercTooLarge.Wrapf("%s", perc)
	}
	return nil
}
