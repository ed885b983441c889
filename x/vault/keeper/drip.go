package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// settleDrip releases what the schedule allows at the block time and
// returns the updated state, already stored.
func (k *Keeper) settleDrip(ctx sdk.Context) types.DripState {
	state := k.GetDripState(ctx)
	released := state.Settle(ctx.BlockTime().Unix(), k.GetParams(ctx).DripDuration)
	k.setDripState(ctx, state)

	if released.IsPositive() {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeDripSettled,
				sdk.NewAttribute(types.AttributeKeyReleased, released.String()),
				sdk.NewAttribute(types.AttributeKeyWithheld, state.Withheld.String()),
			),
		)
	}
	k.metrics.RecordDrip(released.BigInt(), state.Withheld.BigInt(), state.CumulativeRewardPerCollateral.BigInt())
	return state
}

// SettleDrip releases pending rewards into the cumulative index and returns
// the released amount. Anyone may call it.
func (k *Keeper) SettleDrip(ctx sdk.Context) math.Int {
	before := k.GetDripState(ctx).Withheld
	after := k.settleDrip(ctx).Withheld
	return before.Sub(after)
}

// DistributeRewards burns amount stablecoin from caller and adds it to the
// drip, restarting the release cycle.
func (k *Keeper) DistributeRewards(ctx sdk.Context, caller string, amount math.Int) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.checkRole(ctx, controllertypes.RoleKeeper, caller); err != nil {
		return err
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("reward amount must be positive")
	}
	callerAddr, err := sdk.AccAddressFromBech32(caller)
	if err != nil {
		return errors.Wrap(types.ErrNotAuthorized, err.Error())
	}

	cacheCtx, write := ctx.CacheContext()
	state := k.settleDrip(cacheCtx)

	params := k.GetParams(cacheCtx)
	coins := sdk.NewCoins(sdk.NewCoin(params.StableDenom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(cacheCtx, callerAddr, types.ModuleName, coins); err != nil {
		return err
	}
	if err := k.stablecoinKeeper.Burn(cacheCtx, types.ModuleName, amount); err != nil {
		return err
	}

	state.Withhold(amount, cacheCtx.BlockTime().Unix())
	k.setDripState(cacheCtx, state)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRewardsAdded,
			sdk.NewAttribute(types.AttributeKeySender, caller),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyWithheld, state.Withheld.String()),
		),
	)
	write()

	k.metrics.RecordRewardsAdded("distribute", amount.BigInt())
	k.logger.Info("rewards distributed", "sender", caller, "amount", amount.String(), "withheld", state.Withheld.String())
	return nil
}

// withhold adds amount to the drip. The caller has settled.
func (k *Keeper) withhold(ctx sdk.Context, amount math.Int) types.DripState {
	state := k.GetDripState(ctx)
	state.Withhold(amount, ctx.BlockTime().Unix())
	k.setDripState(ctx, state)
	return state
}
