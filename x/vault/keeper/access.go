package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// checkRole asks the controller whether addr may act as role.
func (k *Keeper) checkRole(ctx sdk.Context, role controllertypes.Role, addr string) error {
	if err := k.controllerKeeper.CheckRole(ctx, role, addr); err != nil {
		return types.ErrNotAuthorized.Wrapf("%s", role)
	}
	return nil
}

// checkAuthorityOrRole accepts the module authority or a holder of role.
func (k *Keeper) checkAuthorityOrRole(ctx sdk.Context, role controllertypes.Role, addr string) error {
	if addr == k.authority {
		return nil
	}
	return k.checkRole(ctx, role, addr)
}

// Pause halts deposits, withdrawals, borrowing, repayment, liquidation,
// distribution and swaps.
func (k *Keeper) Pause(ctx sdk.Context, sender string) error {
	if err := k.checkAuthorityOrRole(ctx, controllertypes.RoleMultisig, sender); err != nil {
		return err
	}
	if k.IsPaused(ctx) {
		return types.ErrPaused
	}
	k.setPaused(ctx, true)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(types.EventTypePaused, sdk.NewAttribute(types.AttributeKeySender, sender)),
	)
	k.logger.Info("vault paused", "sender", sender)
	return nil
}

// Unpause resumes vault operations.
func (k *Keeper) Unpause(ctx sdk.Context, sender string) error {
	if err := k.checkAuthorityOrRole(ctx, controllertypes.RoleMultisig, sender); err != nil {
		return err
	}
	if !k.IsPaused(ctx) {
		return types.ErrNotPaused
	}
	k.setPaused(ctx, false)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(types.EventTypeUnpaused, sdk.NewAttribute(types.AttributeKeySender, sender)),
	)
	k.logger.Info("vault unpaused", "sender", sender)
	return nil
}
