package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

const day = DefaultDripDuration

func dripWithCollateral(collateral math.Int) DripState {
	s := NewDripState()
	s.TotalCollateral = collateral
	return s
}

func TestDripHalfDuration(t *testing.T) {
	s := dripWithCollateral(e18(1))
	s.Withhold(math.NewInt(100_000), 1000)
	require.Equal(t, math.NewInt(100_000), s.Withheld)

	released := s.Settle(1000+day/2, day)
	require.Equal(t, math.NewInt(50_000), released)
	require.Equal(t, math.NewInt(50_000), s.Withheld)
	require.Equal(t, int64(1000+day/2), s.LastDisbursedAt)
	// 50_000 * 1e18 / 1e18
	require.Equal(t, math.NewInt(50_000), s.CumulativeRewardPerCollateral)
}

func TestDripConservation(t *testing.T) {
	s := dripWithCollateral(math.NewInt(7))
	amount := math.NewInt(1_000_003)
	s.Withhold(amount, 0)

	total := math.ZeroInt()
	for _, now := range []int64{1, 17, 999, 43_200, 43_201, 80_000, day - 1, day, day + 500} {
		total = total.Add(s.Settle(now, day))
	}
	require.Equal(t, amount, total, "a full cycle releases exactly the cycle amount")
	require.True(t, s.Withheld.IsZero())
}

func TestDripWithoutCollateralIsNoop(t *testing.T) {
	s := NewDripState()
	s.Withhold(math.NewInt(100_000), 10)

	released := s.Settle(10+day, day)
	require.True(t, released.IsZero())
	require.Equal(t, math.NewInt(100_000), s.Withheld)
	require.Equal(t, int64(10), s.LastDisbursedAt)
	require.True(t, s.CumulativeRewardPerCollateral.IsZero())

	// value is preserved for the next holder
	s.TotalCollateral = math.NewInt(4)
	require.Equal(t, math.NewInt(100_000), s.Settle(10+day, day))
}

func TestDripCarryOverRestartsCycle(t *testing.T) {
	s := dripWithCollateral(e18(1))
	s.Withhold(math.NewInt(100_000), 0)
	s.Settle(day/2, day)

	s.Withhold(math.NewInt(20_000), day/2)
	require.Equal(t, math.NewInt(70_000), s.Withheld)
	require.Equal(t, math.NewInt(70_000), s.CycleAmount)
	require.Equal(t, day/2, s.CycleStart)

	// the combined amount drips over a fresh full duration
	require.Equal(t, math.NewInt(35_000), s.Settle(day, day))
	require.Equal(t, math.NewInt(35_000), s.Settle(day/2+day, day))
	require.True(t, s.Withheld.IsZero())
}

func TestDripRoundingFloorsRelease(t *testing.T) {
	s := dripWithCollateral(e18(1))
	s.Withhold(math.NewInt(3), 0)

	// 3 * 1 / 86400 truncates to zero released
	require.True(t, s.Settle(1, day).IsZero())
	require.Equal(t, math.NewInt(3), s.Withheld)

	// 3 * 28800 / 86400 = 1
	require.Equal(t, math.NewInt(1), s.Settle(28_800, day))
	require.Equal(t, math.NewInt(2), s.Withheld)
}

func TestDripIndexFloors(t *testing.T) {
	s := dripWithCollateral(math.NewInt(3))
	s.Withhold(math.NewInt(1), 0)
	s.Settle(day, day)
	// 1 * 1e18 / 3
	require.Equal(t, "333333333333333333", s.CumulativeRewardPerCollateral.String())
	require.True(t, PendingReward(s.CumulativeRewardPerCollateral, math.ZeroInt(), math.NewInt(1)).IsZero())
	require.True(t, PendingReward(s.CumulativeRewardPerCollateral, math.ZeroInt(), math.NewInt(3)).IsZero(), "holders never receive more than released")
}

func TestPendingMatchesSettle(t *testing.T) {
	s := dripWithCollateral(e18(2))
	s.Withhold(math.NewInt(86_400), 0)
	pending := s.Pending(1234, day)
	require.Equal(t, math.NewInt(1234), pending)
	require.Equal(t, pending, s.Settle(1234, day))
}

func TestProjectedCumulativeMatchesSettle(t *testing.T) {
	s := dripWithCollateral(e18(200))
	s.Withhold(e18(10), 0)

	projected := s.ProjectedCumulative(day/4, day)
	require.True(t, s.Withheld.Equal(e18(10)), "projection must not mutate the state")
	s.Settle(day/4, day)
	require.Equal(t, s.CumulativeRewardPerCollateral, projected)

	empty := NewDripState()
	empty.Withhold(e18(10), 0)
	require.True(t, empty.ProjectedCumulative(day, day).IsZero())
}

func TestSettledPosition(t *testing.T) {
	pos := NewPosition("alice")
	pos.Collateral = e18(100)
	pos.Debt = e18(75)

	// 5e16 per unit over 100 collateral is a reward of 5
	settled := SettledPosition(pos, math.NewIntWithDecimal(5, 16))
	require.Equal(t, e18(70), settled.Debt)
	require.Equal(t, math.NewIntWithDecimal(5, 16), settled.RewardIndexCheckpoint)
	require.Equal(t, e18(75), pos.Debt)

	// reward beyond the debt is dropped
	pos.Debt = e18(2)
	require.True(t, SettledPosition(pos, math.NewIntWithDecimal(5, 16)).Debt.IsZero())
}
