package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/vault/types"
)

// accrue credits pos with the reward earned since its checkpoint. Rewards
// only reduce debt; whatever exceeds the debt is forfeited.
func (k *Keeper) accrue(ctx sdk.Context, pos *types.Position, cumulative math.Int) (applied math.Int) {
	pending := types.PendingReward(cumulative, pos.RewardIndexCheckpoint, pos.Collateral)
	pos.RewardIndexCheckpoint = cumulative
	if pending.IsZero() {
		return math.ZeroInt()
	}

	applied = types.MinInt(pending, pos.Debt)
	forfeited := pending.Sub(applied)
	pos.Debt = pos.Debt.Sub(applied)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRewardAccrued,
			sdk.NewAttribute(types.AttributeKeyAccount, pos.Owner),
			sdk.NewAttribute(types.AttributeKeyRewardApplied, applied.String()),
			sdk.NewAttribute(types.AttributeKeyRewardForfeited, forfeited.String()),
		),
	)
	k.metrics.RecordForfeit(forfeited.BigInt())
	return applied
}

// SettleAccount settles the drip, then applies the account's pending reward
// to its debt. It returns the debt reduction.
func (k *Keeper) SettleAccount(ctx sdk.Context, owner string) math.Int {
	state := k.settleDrip(ctx)
	pos, found := k.GetPosition(ctx, owner)
	if !found {
		return math.ZeroInt()
	}
	applied := k.accrue(ctx, &pos, state.CumulativeRewardPerCollateral)
	k.setPosition(ctx, pos)
	return applied
}

// pendingReward is the reward owner would receive if settled now.
func (k *Keeper) pendingReward(ctx sdk.Context, pos types.Position) math.Int {
	return types.PendingReward(k.projectedCumulative(ctx), pos.RewardIndexCheckpoint, pos.Collateral)
}

// projectedCumulative is the cumulative reward index a drip settle at the
// block time would produce.
func (k *Keeper) projectedCumulative(ctx sdk.Context) math.Int {
	return k.GetDripState(ctx).ProjectedCumulative(ctx.BlockTime().Unix(), k.GetParams(ctx).DripDuration)
}
