package types

import (
	"cosmossdk.io/math"
)

// AccountHealth is one entry of the unhealthy account scan.
type AccountHealth struct {
	Index           uint64   `json:"index"`
	Account         string   `json:"account"`
	Collateral      math.Int `json:"collateral"`
	Debt            math.Int `json:"debt"`
	HealthFactor    math.Int `json:"health_factor"`
	MaxLiquidatable math.Int `json:"max_liquidatable"`
}

// SwapResult is the outcome of a yield swap. The whole AmountOut is burned;
// Withheld of it returns to holders through the drip and Burned does not.
type SwapResult struct {
	AmountIn    math.Int `json:"amount_in"`
	ProtocolFee math.Int `json:"protocol_fee"`
	AmountOut   math.Int `json:"amount_out"`
	Burned      math.Int `json:"burned"`
	Withheld    math.Int `json:"withheld"`
}
