package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

func attribute(event sdk.Event, key string) string {
	for _, attr := range event.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

func findEvent(ctx sdk.Context, eventType, account string) (sdk.Event, bool) {
	for _, event := range ctx.EventManager().Events() {
		if event.Type == eventType && attribute(event, types.AttributeKeyAccount) == account {
			return event, true
		}
	}
	return sdk.Event{}, false
}

func (f *fixture) distribute(t *testing.T, amount math.Int) {
	t.Helper()
	f.fund(keeperBot, stableDenom, amount)
	require.NoError(t, f.keeper.DistributeRewards(f.ctx, keeperBot.String(), amount))
}

func TestRewardsReduceDebt(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(50))
	f.open(t, bob, e18(300), e18(1))

	limit := f.stablecoin.GetMintLimit(f.ctx, types.ModuleName)
	f.distribute(t, e18(10))
	require.True(t, f.balance(keeperBot, stableDenom).IsZero())
	require.Equal(t, limit.Add(e18(10)), f.stablecoin.GetMintLimit(f.ctx, types.ModuleName))
	require.Equal(t, e18(10), f.keeper.GetDripState(f.ctx).Withheld)

	f.advance(12 * time.Hour)
	require.Equal(t, e18(5), f.keeper.SettleDrip(f.ctx))
	state := f.keeper.GetDripState(f.ctx)
	require.Equal(t, e18(5), state.Withheld)
	require.Equal(t, mustInt(t, "12500000000000000"), state.CumulativeRewardPerCollateral)

	details, err := f.keeper.GetUserDetails(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, mustInt(t, "1250000000000000000"), details.PendingReward)
	require.True(t, details.Healthy)

	f.advance(12 * time.Hour)
	require.Equal(t, mustInt(t, "2500000000000000000"), f.keeper.SettleAccount(f.ctx, alice.String()))
	require.Equal(t, mustInt(t, "47500000000000000000"), f.position(alice).Debt)

	// bob earned 7.5 against a debt of 1; the rest is forfeited
	require.Equal(t, e18(1), f.keeper.SettleAccount(f.ctx, bob.String()))
	require.True(t, f.position(bob).Debt.IsZero())
	event, found := findEvent(f.ctx, types.EventTypeRewardAccrued, bob.String())
	require.True(t, found)
	require.Equal(t, "6500000000000000000", attribute(event, types.AttributeKeyRewardForfeited))

	require.True(t, f.keeper.GetDripState(f.ctx).Withheld.IsZero())
	require.Equal(t, mustInt(t, "47500000000000000000"), f.keeper.GetTotalDebt(f.ctx))

	// settled accounts have nothing pending
	require.True(t, f.keeper.SettleAccount(f.ctx, alice.String()).IsZero())
}

func TestRewardsWithoutCollateralAreKept(t *testing.T) {
	f := setup(t)
	f.distribute(t, e18(10))

	f.advance(48 * time.Hour)
	require.True(t, f.keeper.SettleDrip(f.ctx).IsZero())
	require.Equal(t, e18(10), f.keeper.GetDripState(f.ctx).Withheld)

	// the first holder receives everything the schedule has released
	f.setPrice(t, e18(1))
	f.open(t, alice, e18(100), math.ZeroInt())
	f.advance(time.Second)
	require.Equal(t, e18(10), f.keeper.SettleDrip(f.ctx))

	details, err := f.keeper.GetUserDetails(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, e18(10), details.PendingReward)
	require.Equal(t, types.InfiniteHealth, details.HealthFactor)

	// without debt the reward has nothing to pay down
	require.True(t, f.keeper.SettleAccount(f.ctx, alice.String()).IsZero())
	require.True(t, f.position(alice).Debt.IsZero())
}

func TestWithholdRestartsCycle(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(50))

	f.distribute(t, e18(10))
	f.advance(12 * time.Hour)
	f.distribute(t, e18(10))

	state := f.keeper.GetDripState(f.ctx)
	require.Equal(t, e18(15), state.Withheld)
	require.Equal(t, e18(15), state.CycleAmount)
	require.Equal(t, f.ctx.BlockTime().Unix(), state.CycleStart)

	f.advance(6 * time.Hour)
	require.NoError(t, f.keeper.EndBlocker(f.ctx))
	require.Equal(t, mustInt(t, "11250000000000000000"), f.keeper.GetDripState(f.ctx).Withheld)

	f.advance(48 * time.Hour)
	f.keeper.SettleDrip(f.ctx)
	require.Equal(t, e18(20), f.keeper.SettleAccount(f.ctx, alice.String()))
	require.Equal(t, e18(30), f.position(alice).Debt)
}

func TestDistributeRewardsAccess(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(50))
	f.fund(bob, stableDenom, e18(5))

	require.ErrorIs(t, f.keeper.DistributeRewards(f.ctx, bob.String(), e18(5)), types.ErrNotAuthorized)
	require.ErrorIs(t, f.keeper.DistributeRewards(f.ctx, keeperBot.String(), math.ZeroInt()), types.ErrInvalidAmount)

	// the keeper holds no stablecoin; the burn fails and nothing is withheld
	require.Error(t, f.keeper.DistributeRewards(f.ctx, keeperBot.String(), e18(1)))
	require.True(t, f.keeper.GetDripState(f.ctx).Withheld.IsZero())

	require.NoError(t, f.controller.SetRoleMode(f.ctx, authority, controllertypes.RoleKeeper, controllertypes.AccessModeOpen))
	require.NoError(t, f.keeper.DistributeRewards(f.ctx, bob.String(), e18(5)))
	require.Equal(t, e18(5), f.keeper.GetDripState(f.ctx).Withheld)
}
