package types

import (
	"cosmossdk.io/math"
)

const (
	ModuleName = "vault"
	StoreKey   = ModuleName
	RouterKey  = ModuleName
)

// Position is a single account's collateral and debt.
type Position struct {
	Owner                 string   `json:"owner"`
	Collateral            math.Int `json:"collateral"`
	Debt                  math.Int `json:"debt"`
	RewardIndexCheckpoint math.Int `json:"reward_index_checkpoint"`
}

// NewPosition returns an empty position for owner.
func NewPosition(owner string) Position {
	return Position{
		Owner:                 owner,
		Collateral:            math.ZeroInt(),
		Debt:                  math.ZeroInt(),
		RewardIndexCheckpoint: math.ZeroInt(),
	}
}

// IsEmpty reports whether both collateral and debt are zero.
func (p Position) IsEmpty() bool {
	return p.Collateral.IsZero() && p.Debt.IsZero()
}

// Validate checks every amount is set and non-negative.
func (p Position) Validate() error {
	for _, v := range []math.Int{p.Collateral, p.Debt, p.RewardIndexCheckpoint} {
		if v.IsNil() || v.IsNegative() {
			return ErrInvalidAmount.Wrapf("position %s has a negative or unset amount", p.Owner)
		}
	}
	return nil
}

// UserDetails is the query view of a position.
type UserDetails struct {
	Position      Position `json:"position"`
	HealthFactor  math.Int `json:"health_factor"`
	Healthy       bool     `json:"healthy"`
	PendingReward math.Int `json:"pending_reward"`
}

// LiquidationRecord is the persisted trace of an executed liquidation.
type LiquidationRecord struct {
	ID                   string   `json:"id"`
	Account              string   `json:"account"`
	Liquidator           string   `json:"liquidator"`
	Repaid               math.Int `json:"repaid"`
	CollateralLiquidated math.Int `json:"collateral_liquidated"`
	FeeShare             math.Int `json:"fee_share"`
	LiquidatorShare      math.Int `json:"liquidator_share"`
	HealthFactor         math.Int `json:"health_factor"`
	Discount             math.Int `json:"discount"`
	Height               int64    `json:"height"`
	Timestamp            int64    `json:"timestamp"`
}

// RepayAllSentinel is the most negative debt delta. Repayments are capped at
// the outstanding debt, so it always closes the debt.
func RepayAllSentinel() math.Int {
	return InfiniteHealth.Neg()
}
