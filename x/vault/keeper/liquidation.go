package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/google/btree"
	"github.com/google/uuid"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// Liquidation types
const (
	LiquidationTypePartial = "partial"
	LiquidationTypeWipeout = "wipeout"
)

const healthTreeDegree = 32

// recordNamespace seeds deterministic liquidation record ids.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("tauvault.vault.liquidation"))

// Liquidate repays part of account's debt on behalf of liquidator, who
// receives the seized collateral minus the protocol surcharge.
func (k *Keeper) Liquidate(ctx sdk.Context, liquidator, account string, repay, minCollateralOut math.Int) (types.LiquidationRecord, error) {
	if err := k.requireNotPaused(ctx); err != nil {
		return types.LiquidationRecord{}, err
	}
	if err := k.checkRole(ctx, controllertypes.RoleLiquidator, liquidator); err != nil {
		return types.LiquidationRecord{}, err
	}
	liquidatorAddr, err := sdk.AccAddressFromBech32(liquidator)
	if err != nil {
		return types.LiquidationRecord{}, errors.Wrapf(sdkerrors.ErrInvalidAddress, "liquidator: %s", err)
	}

	cacheCtx, write := ctx.CacheContext()
	record, result, err := k.executeLiquidation(cacheCtx, liquidatorAddr, account, repay, minCollateralOut)
	if err != nil {
		k.logger.Debug("liquidation rejected", "account", account, "liquidator", liquidator, "repay", repay.String(), "err", err)
		return types.LiquidationRecord{}, err
	}
	write()

	liquidationType := LiquidationTypePartial
	if result.Wipeout() {
		liquidationType = LiquidationTypeWipeout
	}
	k.metrics.RecordLiquidation(liquidationType, result.HealthFactor.BigInt(), result.Repaid.BigInt(),
		result.CollateralLiquidated.BigInt(), result.FeeShare.BigInt())
	k.logger.Info("position liquidated",
		"account", account,
		"liquidator", liquidator,
		"repay", result.Repaid.String(),
		"seized", result.CollateralLiquidated.String(),
		"fee", result.FeeShare.String(),
		"type", liquidationType,
	)
	return record, nil
}

func (k *Keeper) executeLiquidation(ctx sdk.Context, liquidator sdk.AccAddress, account string, repay, minCollateralOut math.Int) (types.LiquidationRecord, types.LiquidationResult, error) {
	params := k.GetParams(ctx)
	state := k.settleDrip(ctx)

	pos, _ := k.GetPosition(ctx, account)
	k.accrue(ctx, &pos, state.CumulativeRewardPerCollateral)
	price := k.oracleKeeper.GetPrice(ctx, params.CollateralDenom)
	result, err := types.ComputeLiquidation(pos, price, repay, minCollateralOut)
	if err != nil {
		return types.LiquidationRecord{}, result, err
	}

	pos.Debt = result.NewDebt
	pos.Collateral = result.NewCollateral
	state.TotalCollateral = state.TotalCollateral.Sub(result.CollateralLiquidated)
	k.setPosition(ctx, pos)
	k.setDripState(ctx, state)

	stable := sdk.NewCoins(sdk.NewCoin(params.StableDenom, result.Repaid))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, liquidator, types.ModuleName, stable); err != nil {
		return types.LiquidationRecord{}, result, err
	}
	if err := k.stablecoinKeeper.Burn(ctx, types.ModuleName, result.Repaid); err != nil {
		return types.LiquidationRecord{}, result, err
	}
	if result.FeeShare.IsPositive() {
		fee := sdk.NewCoins(sdk.NewCoin(params.CollateralDenom, result.FeeShare))
		if err := k.feeSplitter.Receive(ctx, types.ModuleName, fee); err != nil {
			return types.LiquidationRecord{}, result, err
		}
	}
	if result.LiquidatorShare.IsPositive() {
		share := sdk.NewCoins(sdk.NewCoin(params.CollateralDenom, result.LiquidatorShare))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, liquidator, share); err != nil {
			return types.LiquidationRecord{}, result, err
		}
	}

	seq := k.nextLiquidationSeq(ctx)
	record := types.LiquidationRecord{
		ID:                   uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s|%d|%d", account, ctx.BlockHeight(), seq))).String(),
		Account:              account,
		Liquidator:           liquidator.String(),
		Repaid:               result.Repaid,
		CollateralLiquidated: result.CollateralLiquidated,
		FeeShare:             result.FeeShare,
		LiquidatorShare:      result.LiquidatorShare,
		HealthFactor:         result.HealthFactor,
		Discount:             result.Discount,
		Height:               ctx.BlockHeight(),
		Timestamp:            ctx.BlockTime().Unix(),
	}
	k.setLiquidationRecord(ctx, seq, record)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidation,
			sdk.NewAttribute(types.AttributeKeyRecordID, record.ID),
			sdk.NewAttribute(types.AttributeKeyAccount, account),
			sdk.NewAttribute(types.AttributeKeyLiquidator, record.Liquidator),
			sdk.NewAttribute(types.AttributeKeyRepaid, result.Repaid.String()),
			sdk.NewAttribute(types.AttributeKeyCollateralLiquidated, result.CollateralLiquidated.String()),
			sdk.NewAttribute(types.AttributeKeyFeeShare, result.FeeShare.String()),
			sdk.NewAttribute(types.AttributeKeyLiquidatorShare, result.LiquidatorShare.String()),
			sdk.NewAttribute(types.AttributeKeyHealthFactor, result.HealthFactor.String()),
			sdk.NewAttribute(types.AttributeKeyDiscount, result.Discount.String()),
		),
	)
	return record, result, nil
}

// ============ Liquidation Records ============

func liquidationKey(seq uint64) []byte {
	return append(append([]byte{}, LiquidationKeyPrefix...), sdk.Uint64ToBigEndian(seq)...)
}

func (k *Keeper) nextLiquidationSeq(ctx sdk.Context) uint64 {
	store := k.GetStore(ctx)
	var seq uint64
	if bz := store.Get(LiquidationSeqKey); bz != nil {
		seq = sdk.BigEndianToUint64(bz)
	}
	store.Set(LiquidationSeqKey, sdk.Uint64ToBigEndian(seq+1))
	return seq
}

func (k *Keeper) setLiquidationRecord(ctx sdk.Context, seq uint64, record types.LiquidationRecord) {
	bz, _ := json.Marshal(record)
	k.GetStore(ctx).Set(liquidationKey(seq), bz)
}

// GetLiquidationRecords returns every executed liquidation, oldest first
func (k *Keeper) GetLiquidationRecords(ctx sdk.Context) []types.LiquidationRecord {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), LiquidationKeyPrefix)
	defer iterator.Close()

	var records []types.LiquidationRecord
	for ; iterator.Valid(); iterator.Next() {
		var record types.LiquidationRecord
		if err := json.Unmarshal(iterator.Value(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// ============ Unhealthy Account Scan ============

// healthItem orders accounts by ascending health factor, then index.
type healthItem struct {
	entry types.AccountHealth
}

// Less implements btree.Item
func (a *healthItem) Less(than btree.Item) bool {
	b := than.(*healthItem)
	if !a.entry.HealthFactor.Equal(b.entry.HealthFactor) {
		return a.entry.HealthFactor.LT(b.entry.HealthFactor)
	}
	return a.entry.Index < b.entry.Index
}

func (k *Keeper) checkRange(ctx sdk.Context, start, end uint64) error {
	count := k.GetAccountCount(ctx)
	if end > count || start > end {
		return types.ErrIndexOutOfBound.Wrapf("range [%d, %d), count %d", start, end, count)
	}
	return nil
}

// FetchUnhealthyAccounts returns the unhealthy accounts at index positions
// [start, end), most at risk first. Health is judged after pending rewards
// are applied, as Liquidate would see it.
func (k *Keeper) FetchUnhealthyAccounts(ctx sdk.Context, start, end uint64) ([]types.AccountHealth, error) {
	if err := k.checkRange(ctx, start, end); err != nil {
		return nil, err
	}
	price := k.oracleKeeper.GetPrice(ctx, k.GetParams(ctx).CollateralDenom)
	if err := types.ValidatePrice(price); err != nil {
		return nil, err
	}

	cumulative := k.projectedCumulative(ctx)
	tree := btree.New(healthTreeDegree)
	for i := start; i < end; i++ {
		pos, found := k.GetPosition(ctx, k.GetAccountAt(ctx, i))
		if !found {
			continue
		}
		pos = types.SettledPosition(pos, cumulative)
		if pos.Debt.IsZero() {
			continue
		}
		hf := types.HealthFactor(pos.Collateral, pos.Debt, price.Value, price.Decimals)
		if hf.GTE(types.MinCollRatio) {
			continue
		}
		maxLiq, err := types.MaxLiquidatable(pos, price)
		if err != nil {
			return nil, err
		}
		tree.ReplaceOrInsert(&healthItem{entry: types.AccountHealth{
			Index:           i,
			Account:         pos.Owner,
			Collateral:      pos.Collateral,
			Debt:            pos.Debt,
			HealthFactor:    hf,
			MaxLiquidatable: maxLiq,
		}})
	}

	accounts := make([]types.AccountHealth, 0, tree.Len())
	tree.Ascend(func(item btree.Item) bool {
		accounts = append(accounts, item.(*healthItem).entry)
		return true
	})
	return accounts, nil
}

// GetMaxLiquidatable returns the largest repayment a liquidator may make
// against owner right now.
func (k *Keeper) GetMaxLiquidatable(ctx sdk.Context, owner string) (math.Int, error) {
	pos, _ := k.GetPosition(ctx, owner)
	pos = types.SettledPosition(pos, k.projectedCumulative(ctx))
	return types.MaxLiquidatable(pos, k.oracleKeeper.GetPrice(ctx, k.GetParams(ctx).CollateralDenom))
}
