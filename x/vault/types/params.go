package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	DefaultCollateralDenom = "fsglp"
	DefaultStableDenom     = "tau"

	// DefaultDripDuration is one day in seconds.
	DefaultDripDuration int64 = 86400
)

// Params are the vault module parameters.
type Params struct {
	CollateralDenom string `json:"collateral_denom"` // also the oracle asset key
	StableDenom     string `json:"stable_denom"`
	DripDuration    int64  `json:"drip_duration"` // seconds
}

// DefaultParams returns default vault parameters
func DefaultParams() Params {
	return Params{
		CollateralDenom: DefaultCollateralDenom,
		StableDenom:     DefaultStableDenom,
		DripDuration:    DefaultDripDuration,
	}
}

// Validate validates the params
func (p Params) Validate() error {
	if err := sdk.ValidateDenom(p.CollateralDenom); err != nil {
		return ErrInvalidParams.Wrapf("collateral denom: %s", err)
	}
	if err := sdk.ValidateDenom(p.StableDenom); err != nil {
		return ErrInvalidParams.Wrapf("stable denom: %s", err)
	}
	if p.CollateralDenom == p.StableDenom {
		return ErrInvalidParams.Wrap("collateral and stable denom must differ")
	}
	if p.DripDuration <= 0 {
		return ErrInvalidParams.Wrapf("drip duration %d must be positive", p.DripDuration)
	}
	return nil
}
