package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/metrics"
)

// EndBlocker settles the reward drip once per block and refreshes the vault
// gauges.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	timer := metrics.NewTimer()

	k.settleDrip(ctx)

	state := k.GetDripState(ctx)
	k.metrics.RecordVaultTotals(int(k.GetAccountCount(ctx)), state.TotalCollateral.BigInt(), k.GetTotalDebt(ctx).BigInt())

	asset := k.GetParams(ctx).CollateralDenom
	price := k.oracleKeeper.GetPrice(ctx, asset)
	if price.Valid {
		k.metrics.RecordOraclePrice(asset, true, metrics.Scaled(price.Value.BigInt(), price.Decimals))
	} else {
		k.metrics.RecordOraclePrice(asset, false, 0)
	}

	k.metrics.RecordEndBlock(ctx.BlockHeight(), timer.ElapsedMs())
	return nil
}
