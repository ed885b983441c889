package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// GetAccountHealth returns owner's health factor at the current price,
// counting the reward a settle would apply.
func (k *Keeper) GetAccountHealth(ctx sdk.Context, owner string) (math.Int, error) {
	pos, _ := k.GetPosition(ctx, owner)
	pos = types.SettledPosition(pos, k.projectedCumulative(ctx))
	return types.PositionHealth(pos, k.oracleKeeper.GetPrice(ctx, k.GetParams(ctx).CollateralDenom))
}

// GetUserDetails returns owner's position with its health and the reward
// it would receive if settled now.
func (k *Keeper) GetUserDetails(ctx sdk.Context, owner string) (types.UserDetails, error) {
	pos, _ := k.GetPosition(ctx, owner)
	price := k.oracleKeeper.GetPrice(ctx, k.GetParams(ctx).CollateralDenom)
	return k.userDetails(ctx, pos, price)
}

func (k *Keeper) userDetails(ctx sdk.Context, pos types.Position, price oracletypes.Price) (types.UserDetails, error) {
	hf, err := types.PositionHealth(pos, price)
	if err != nil {
		return types.UserDetails{}, err
	}
	return types.UserDetails{
		Position:      pos,
		HealthFactor:  hf,
		Healthy:       pos.Debt.IsZero() || hf.GTE(types.MinCollRatio),
		PendingReward: k.pendingReward(ctx, pos),
	}, nil
}

// GetUsersDetailsInRange returns details for index positions [start, end).
func (k *Keeper) GetUsersDetailsInRange(ctx sdk.Context, start, end uint64) ([]types.UserDetails, error) {
	if err := k.checkRange(ctx, start, end); err != nil {
		return nil, err
	}
	price := k.oracleKeeper.GetPrice(ctx, k.GetParams(ctx).CollateralDenom)

	details := make([]types.UserDetails, 0, end-start)
	for i := start; i < end; i++ {
		pos, _ := k.GetPosition(ctx, k.GetAccountAt(ctx, i))
		d, err := k.userDetails(ctx, pos, price)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// CheckLiquidity fails when the vault holds less than amount collateral.
func (k *Keeper) CheckLiquidity(ctx sdk.Context, amount math.Int) error {
	available := k.bankKeeper.GetBalance(ctx, k.ModuleAddress(), k.GetParams(ctx).CollateralDenom).Amount
	if amount.GT(available) {
		return types.ErrInsufficientLiquidity.Wrapf("requested %s, available %s", amount, available)
	}
	return nil
}
