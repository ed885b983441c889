package types

import (
	"cosmossdk.io/math"
)

// DripState releases withheld rewards linearly over the drip duration and
// tracks the cumulative reward earned per unit of collateral.
//
// CycleAmount and CycleStart describe the schedule of the current cycle;
// Withheld is what the schedule has not yet released.
type DripState struct {
	Withheld                      math.Int `json:"withheld"`
	CycleAmount                   math.Int `json:"cycle_amount"`
	CycleStart                    int64    `json:"cycle_start"`
	LastDisbursedAt               int64    `json:"last_disbursed_at"`
	CumulativeRewardPerCollateral math.Int `json:"cumulative_reward_per_collateral"`
	TotalCollateral               math.Int `json:"total_collateral"`
}

// NewDripState returns an empty drip state.
func NewDripState() DripState {
	return DripState{
		Withheld:                      math.ZeroInt(),
		CycleAmount:                   math.ZeroInt(),
		CumulativeRewardPerCollateral: math.ZeroInt(),
		TotalCollateral:               math.ZeroInt(),
	}
}

// Validate checks the state is internally consistent.
func (s DripState) Validate() error {
	for _, v := range []math.Int{s.Withheld, s.CycleAmount, s.CumulativeRewardPerCollateral, s.TotalCollateral} {
		if v.IsNil() || v.IsNegative() {
			return ErrInvalidAmount.Wrap("drip state has a negative or unset amount")
		}
	}
	if s.Withheld.GT(s.CycleAmount) {
		return ErrInvalidAmount.Wrapf("withheld %s exceeds cycle amount %s", s.Withheld, s.CycleAmount)
	}
	return nil
}

// scheduled returns what the current cycle still withholds at now.
func (s DripState) scheduled(now, duration int64) math.Int {
	elapsed := now - s.CycleStart
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= duration {
		return math.ZeroInt()
	}
	released := s.CycleAmount.MulRaw(elapsed).QuoRaw(duration)
	return s.CycleAmount.Sub(released)
}

// Pending returns the amount Settle would release at now without mutating s.
func (s DripState) Pending(now, duration int64) math.Int {
	if s.TotalCollateral.IsZero() {
		return math.ZeroInt()
	}
	target := s.scheduled(now, duration)
	if target.GTE(s.Withheld) {
		return math.ZeroInt()
	}
	return s.Withheld.Sub(target)
}

// ProjectedCumulative returns the cumulative reward index Settle would
// produce at now, without mutating s.
func (s DripState) ProjectedCumulative(now, duration int64) math.Int {
	released := s.Pending(now, duration)
	if released.IsZero() {
		return s.CumulativeRewardPerCollateral
	}
	return s.CumulativeRewardPerCollateral.Add(released.Mul(Precision).Quo(s.TotalCollateral))
}

// Settle releases everything the schedule allows up to now into the
// cumulative index. Without collateral nothing moves, so the withheld
// amount is kept for later holders.
func (s *DripState) Settle(now, duration int64) math.Int {
	if s.TotalCollateral.IsZero() {
		return math.ZeroInt()
	}
	released := s.Pending(now, duration)
	if released.IsPositive() {
		s.CumulativeRewardPerCollateral = s.CumulativeRewardPerCollateral.Add(
			released.Mul(Precision).Quo(s.TotalCollateral),
		)
		s.Withheld = s.Withheld.Sub(released)
	}
	s.LastDisbursedAt = now
	return released
}

// Withhold adds amount to the withheld rewards and restarts a full-length
// cycle over the combined balance. Callers settle first.
func (s *DripState) Withhold(amount math.Int, now int64) {
	s.Withheld = s.Withheld.Add(amount)
	s.CycleAmount = s.Withheld
	s.CycleStart = now
	s.LastDisbursedAt = now
}

// PendingReward is what a holder of collateral has earned since checkpoint.
func PendingReward(cumulative, checkpoint, collateral math.Int) math.Int {
	if cumulative.LTE(checkpoint) {
		return math.ZeroInt()
	}
	return cumulative.Sub(checkpoint).Mul(collateral).Quo(Precision)
}

// SettledPosition returns pos as it stands once the reward earned up to
// cumulative is applied. Reward beyond the debt is dropped.
func SettledPosition(pos Position, cumulative math.Int) Position {
	pending := PendingReward(cumulative, pos.RewardIndexCheckpoint, pos.Collateral)
	pos.Debt = pos.Debt.Sub(MinInt(pending, pos.Debt))
	pos.RewardIndexCheckpoint = cumulative
	return pos
}
