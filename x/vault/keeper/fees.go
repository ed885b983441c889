package keeper

import (
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

func feeKey(key string) []byte {
	return append(append([]byte{}, FeeKeyPrefix...), []byte(key)...)
}

// SetFeePerc sets a fee registry entry. Only the authority or a governance
// role holder may call it.
func (k *Keeper) SetFeePerc(ctx sdk.Context, sender, key string, perc math.Int) error {
	if err := k.checkAuthorityOrRole(ctx, controllertypes.RoleGovernance, sender); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidFeeKey.Wrap("empty key")
	}
	if err := types.ValidateFeePerc(perc); err != nil {
		return err
	}
	k.setFeePerc(ctx, key, perc)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFeeUpdated,
			sdk.NewAttribute(types.AttributeKeyFeeKey, key),
			sdk.NewAttribute(types.AttributeKeyFeePerc, perc.String()),
		),
	)
	k.logger.Info("fee updated", "key", key, "perc", perc.String())
	return nil
}

func (k *Keeper) setFeePerc(ctx sdk.Context, key string, perc math.Int) {
	bz, _ := perc.Marshal()
	k.GetStore(ctx).Set(feeKey(key), bz)
}

// GetFeePerc returns the fee for key, zero when unset.
func (k *Keeper) GetFeePerc(ctx sdk.Context, key string) math.Int {
	bz := k.GetStore(ctx).Get(feeKey(key))
	if bz == nil {
		return math.ZeroInt()
	}
	var perc math.Int
	if err := perc.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return perc
}

// AllFees returns every registry entry ordered by key
func (k *Keeper) AllFees(ctx sdk.Context) []types.FeeEntry {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), FeeKeyPrefix)
	defer iterator.Close()

	var fees []types.FeeEntry
	for ; iterator.Valid(); iterator.Next() {
		var perc math.Int
		if err := perc.Unmarshal(iterator.Value()); err != nil {
			continue
		}
		fees = append(fees, types.FeeEntry{
			Key:  string(iterator.Key()[len(FeeKeyPrefix):]),
			Perc: perc,
		})
	}
	return fees
}
