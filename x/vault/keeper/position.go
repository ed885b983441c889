package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/openalpha/tau-vault/x/vault/types"
)

// Position operation labels
const (
	opModify         = "modify"
	opEmergencyClose = "emergency_close"
)

// positionChange is what a position update moved, after capping.
type positionChange struct {
	deposited math.Int
	withdrawn math.Int
	borrowed  math.Int
	repaid    math.Int
}

// ModifyPosition applies signed collateral and debt deltas to owner's
// position. Positive collateral deposits and negative withdraws; positive
// debt borrows and negative repays, capped at the outstanding debt. The
// whole change is applied or nothing is.
func (k *Keeper) ModifyPosition(ctx sdk.Context, owner string, collateralDelta, debtDelta math.Int) (types.Position, error) {
	if err := k.requireNotPaused(ctx); err != nil {
		return types.Position{}, err
	}
	return k.modifyPosition(ctx, opModify, owner, collateralDelta, debtDelta)
}

// Deposit adds amount collateral to owner's position.
func (k *Keeper) Deposit(ctx sdk.Context, owner string, amount math.Int) (types.Position, error) {
	if err := requirePositive(amount); err != nil {
		return types.Position{}, err
	}
	return k.ModifyPosition(ctx, owner, amount, math.ZeroInt())
}

// Withdraw removes amount collateral from owner's position.
func (k *Keeper) Withdraw(ctx sdk.Context, owner string, amount math.Int) (types.Position, error) {
	if err := requirePositive(amount); err != nil {
		return types.Position{}, err
	}
	return k.ModifyPosition(ctx, owner, amount.Neg(), math.ZeroInt())
}

// Borrow mints amount stablecoin to owner against its collateral.
func (k *Keeper) Borrow(ctx sdk.Context, owner string, amount math.Int) (types.Position, error) {
	if err := requirePositive(amount); err != nil {
		return types.Position{}, err
	}
	return k.ModifyPosition(ctx, owner, math.ZeroInt(), amount)
}

// Repay burns owner's stablecoin against its debt. Amounts above the debt
// are capped, so an oversized amount repays everything.
func (k *Keeper) Repay(ctx sdk.Context, owner string, amount math.Int) (types.Position, error) {
	if err := requirePositive(amount); err != nil {
		return types.Position{}, err
	}
	return k.ModifyPosition(ctx, owner, math.ZeroInt(), amount.Neg())
}

// EmergencyClose repays all debt and withdraws all collateral. It is the
// only value-moving operation allowed while the vault is paused.
func (k *Keeper) EmergencyClose(ctx sdk.Context, owner string) (types.Position, error) {
	pos, _ := k.GetPosition(ctx, owner)
	return k.modifyPosition(ctx, opEmergencyClose, owner, pos.Collateral.Neg(), types.RepayAllSentinel())
}

func requirePositive(amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("amount must be positive")
	}
	return nil
}

func (k *Keeper) modifyPosition(ctx sdk.Context, op, owner string, collateralDelta, debtDelta math.Int) (types.Position, error) {
	if collateralDelta.IsNil() || debtDelta.IsNil() {
		return types.Position{}, types.ErrInvalidAmount.Wrap("unset delta")
	}
	ownerAddr, err := sdk.AccAddressFromBech32(owner)
	if err != nil {
		return types.Position{}, errors.Wrapf(sdkerrors.ErrInvalidAddress, "owner: %s", err)
	}

	cacheCtx, write := ctx.CacheContext()
	pos, change, err := k.applyPositionChange(cacheCtx, ownerAddr, collateralDelta, debtDelta)
	k.metrics.RecordPositionOp(op, err)
	if err != nil {
		return types.Position{}, err
	}
	write()

	k.logger.Debug("position modified",
		"owner", owner,
		"deposited", change.deposited.String(),
		"withdrawn", change.withdrawn.String(),
		"borrowed", change.borrowed.String(),
		"repaid", change.repaid.String(),
	)
	return pos, nil
}

// applyPositionChange settles rewards, applies the deltas, checks health
// and then moves tokens. ctx must be a cache context.
func (k *Keeper) applyPositionChange(ctx sdk.Context, owner sdk.AccAddress, collateralDelta, debtDelta math.Int) (types.Position, positionChange, error) {
	params := k.GetParams(ctx)
	state := k.settleDrip(ctx)

	pos, found := k.GetPosition(ctx, owner.String())
	k.accrue(ctx, &pos, state.CumulativeRewardPerCollateral)

	change := positionChange{
		deposited: math.ZeroInt(),
		withdrawn: math.ZeroInt(),
		borrowed:  math.ZeroInt(),
		repaid:    math.ZeroInt(),
	}

	switch {
	case collateralDelta.IsPositive():
		change.deposited = collateralDelta
		pos.Collateral = pos.Collateral.Add(collateralDelta)
		state.TotalCollateral = state.TotalCollateral.Add(collateralDelta)
	case collateralDelta.IsNegative():
		change.withdrawn = collateralDelta.Neg()
		if change.withdrawn.GT(pos.Collateral) {
			return pos, change, types.ErrInsufficientCollateral.Wrapf("withdraw %s, collateral %s", change.withdrawn, pos.Collateral)
		}
		pos.Collateral = pos.Collateral.Sub(change.withdrawn)
		state.TotalCollateral = state.TotalCollateral.Sub(change.withdrawn)
	}

	switch {
	case debtDelta.IsPositive():
		change.borrowed = debtDelta
		pos.Debt = pos.Debt.Add(debtDelta)
	case debtDelta.IsNegative():
		change.repaid = types.MinInt(debtDelta.Neg(), pos.Debt)
		pos.Debt = pos.Debt.Sub(change.repaid)
	}

	if (change.borrowed.IsPositive() || change.withdrawn.IsPositive()) && pos.Debt.IsPositive() {
		price := k.oracleKeeper.GetPrice(ctx, params.CollateralDenom)
		hf, err := types.PositionHealth(pos, price)
		if err != nil {
			return pos, change, err
		}
		if hf.LT(types.MinCollRatio) {
			return pos, change, types.ErrInsufficientCollateral.Wrapf("health factor %s below %s", hf, types.MinCollRatio)
		}
	}

	if err := k.movePositionTokens(ctx, owner, params, change); err != nil {
		return pos, change, err
	}

	k.setDripState(ctx, state)
	if found || !pos.IsEmpty() {
		k.setPosition(ctx, pos)
	}
	emitPositionEvents(ctx, pos.Owner, change)
	return pos, change, nil
}

func (k *Keeper) movePositionTokens(ctx sdk.Context, owner sdk.AccAddress, params types.Params, change positionChange) error {
	if change.deposited.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(params.CollateralDenom, change.deposited))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, coins); err != nil {
			return err
		}
	}
	if change.repaid.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(params.StableDenom, change.repaid))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, coins); err != nil {
			return err
		}
		if err := k.stablecoinKeeper.Burn(ctx, types.ModuleName, change.repaid); err != nil {
			return err
		}
	}
	if change.withdrawn.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(params.CollateralDenom, change.withdrawn))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, coins); err != nil {
			return err
		}
	}
	if change.borrowed.IsPositive() {
		if err := k.stablecoinKeeper.Mint(ctx, types.ModuleName, owner, change.borrowed); err != nil {
			return err
		}
	}
	return nil
}

func emitPositionEvents(ctx sdk.Context, owner string, change positionChange) {
	for _, e := range []struct {
		eventType string
		amount    math.Int
	}{
		{types.EventTypeDeposit, change.deposited},
		{types.EventTypeWithdraw, change.withdrawn},
		{types.EventTypeBorrow, change.borrowed},
		{types.EventTypeRepay, change.repaid},
	} {
		if !e.amount.IsPositive() {
			continue
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				e.eventType,
				sdk.NewAttribute(types.AttributeKeyAccount, owner),
				sdk.NewAttribute(types.AttributeKeyAmount, e.amount.String()),
			),
		)
	}
}
