package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// SwapForStablecoin swaps amount of a yield token held by the vault into
// stablecoin through the adapter registered under adapterKey. The protocol
// fee is taken from the input first. All proceeds are burned and
// amountOut*(1 - burnProportion) is added to the reward drip.
func (k *Keeper) SwapForStablecoin(
	ctx sdk.Context,
	sender string,
	inputDenom string,
	amount math.Int,
	minReturn math.Int,
	adapterKey string,
	burnProportion math.Int,
	data []byte,
) (types.SwapResult, error) {
	if err := k.requireNotPaused(ctx); err != nil {
		return types.SwapResult{}, err
	}
	if err := k.checkRole(ctx, controllertypes.RoleKeeper, sender); err != nil {
		return types.SwapResult{}, err
	}
	if burnProportion.IsNil() || burnProportion.IsNegative() || burnProportion.GT(types.Precision) {
		return types.SwapResult{}, types.ErrInvalidProportion.Wrapf("%s", burnProportion)
	}
	if amount.IsNil() || !amount.IsPositive() || minReturn.IsNil() || minReturn.IsNegative() {
		return types.SwapResult{}, types.ErrInvalidAmount.Wrap("swap amounts must be positive")
	}
	params := k.GetParams(ctx)
	if inputDenom == params.CollateralDenom || inputDenom == params.StableDenom {
		return types.SwapResult{}, types.ErrTokenCannotBeSwapped.Wrapf("%s", inputDenom)
	}
	adapter, found := k.controllerKeeper.SwapAdapter(adapterKey)
	if !found {
		return types.SwapResult{}, types.ErrUnregisteredSwapAdapter.Wrapf("%q", adapterKey)
	}

	cacheCtx, write := ctx.CacheContext()
	k.settleDrip(cacheCtx)

	result := types.SwapResult{AmountIn: amount}
	result.ProtocolFee = types.MulFrac(amount, k.GetFeePerc(cacheCtx, types.FeeKeySwapProtocol))
	if result.ProtocolFee.IsPositive() {
		fee := sdk.NewCoins(sdk.NewCoin(inputDenom, result.ProtocolFee))
		if err := k.feeSplitter.Receive(cacheCtx, types.ModuleName, fee); err != nil {
			return types.SwapResult{}, err
		}
	}
	if remaining := amount.Sub(result.ProtocolFee); remaining.IsPositive() {
		input := sdk.NewCoins(sdk.NewCoin(inputDenom, remaining))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, adapter.Address(), input); err != nil {
			return types.SwapResult{}, err
		}
	}

	// The adapter pays the vault module; trust the balance, not the report.
	vault := k.ModuleAddress()
	before := k.bankKeeper.GetBalance(cacheCtx, vault, params.StableDenom).Amount
	reported, err := adapter.Swap(cacheCtx, params.StableDenom, vault, data)
	if err != nil {
		return types.SwapResult{}, err
	}
	result.AmountOut = k.bankKeeper.GetBalance(cacheCtx, vault, params.StableDenom).Amount.Sub(before)
	if result.AmountOut.LT(minReturn) {
		return types.SwapResult{}, types.ErrSlippageTooHigh.Wrapf("received %s, minimum %s", result.AmountOut, minReturn)
	}

	if err := k.stablecoinKeeper.Burn(cacheCtx, types.ModuleName, result.AmountOut); err != nil {
		return types.SwapResult{}, err
	}
	result.Burned = types.MulFrac(result.AmountOut, burnProportion)
	result.Withheld = result.AmountOut.Sub(result.Burned)
	state := k.withhold(cacheCtx, result.Withheld)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeySender, sender),
			sdk.NewAttribute(types.AttributeKeyAdapter, adapterKey),
			sdk.NewAttribute(types.AttributeKeyInputDenom, inputDenom),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyProtocolFee, result.ProtocolFee.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, result.AmountOut.String()),
			sdk.NewAttribute(types.AttributeKeyBurned, result.Burned.String()),
			sdk.NewAttribute(types.AttributeKeyWithheld, state.Withheld.String()),
		),
	)
	write()

	k.metrics.RecordSwap(adapterKey, result.Burned.BigInt(), result.Withheld.BigInt())
	k.metrics.RecordRewardsAdded("swap", result.Withheld.BigInt())
	k.logger.Info("yield swapped",
		"adapter", adapterKey,
		"input", inputDenom,
		"amount", amount.String(),
		"out", result.AmountOut.String(),
		"reported", reported.String(),
		"withheld", result.Withheld.String(),
	)
	return result, nil
}
