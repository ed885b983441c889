package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/vault/types"
)

// InitGenesis loads vault state. Positions are indexed in the order given.
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	for _, pos := range gs.Positions {
		k.setPosition(ctx, pos)
	}
	k.setDripState(ctx, gs.Drip)
	for _, fee := range gs.Fees {
		k.setFeePerc(ctx, fee.Key, fee.Perc)
	}
	k.setPaused(ctx, gs.Paused)
	for _, record := range gs.Liquidations {
		k.setLiquidationRecord(ctx, k.nextLiquidationSeq(ctx), record)
	}

	k.logger.Info("vault genesis loaded", "positions", len(gs.Positions), "liquidations", len(gs.Liquidations))
	return nil
}

// ExportGenesis exports vault state
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return &types.GenesisState{
		Params:       k.GetParams(ctx),
		Positions:    k.GetAllPositions(ctx),
		Drip:         k.GetDripState(ctx),
		Fees:         k.AllFees(ctx),
		Paused:       k.IsPaused(ctx),
		Liquidations: k.GetLiquidationRecords(ctx),
	}
}
