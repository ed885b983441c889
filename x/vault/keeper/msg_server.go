package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/vault/types"
)

var _ types.MsgServer = (*msgServer)(nil)

type msgServer struct {
	Keeper *Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// ModifyPosition handles the MsgModifyPosition message
func (m *msgServer) ModifyPosition(ctx context.Context, msg *types.MsgModifyPosition) (*types.MsgModifyPositionResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	collateralDelta, debtDelta, err := msg.Deltas()
	if err != nil {
		return nil, err
	}

	pos, err := m.Keeper.ModifyPosition(sdkCtx, msg.Owner, collateralDelta, debtDelta)
	if err != nil {
		return nil, err
	}
	return &types.MsgModifyPositionResponse{
		Collateral: pos.Collateral.String(),
		Debt:       pos.Debt.String(),
	}, nil
}

// EmergencyClose handles the MsgEmergencyClose message
func (m *msgServer) EmergencyClose(ctx context.Context, msg *types.MsgEmergencyClose) (*types.MsgModifyPositionResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	pos, err := m.Keeper.EmergencyClose(sdkCtx, msg.Owner)
	if err != nil {
		return nil, err
	}
	return &types.MsgModifyPositionResponse{
		Collateral: pos.Collateral.String(),
		Debt:       pos.Debt.String(),
	}, nil
}

// Liquidate handles the MsgLiquidate message
func (m *msgServer) Liquidate(ctx context.Context, msg *types.MsgLiquidate) (*types.MsgLiquidateResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount("amount", msg.Amount)
	if err != nil {
		return nil, err
	}
	minOut := math.ZeroInt()
	if msg.MinCollateralOut != "" {
		if minOut, err = types.ParseAmount("min collateral out", msg.MinCollateralOut); err != nil {
			return nil, err
		}
	}

	record, err := m.Keeper.Liquidate(sdkCtx, msg.Liquidator, msg.Account, amount, minOut)
	if err != nil {
		return nil, err
	}
	return &types.MsgLiquidateResponse{
		RecordID:             record.ID,
		CollateralLiquidated: record.CollateralLiquidated.String(),
		LiquidatorShare:      record.LiquidatorShare.String(),
		FeeShare:             record.FeeShare.String(),
	}, nil
}

// DistributeRewards handles the MsgDistributeRewards message
func (m *msgServer) DistributeRewards(ctx context.Context, msg *types.MsgDistributeRewards) (*types.MsgEmptyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount("amount", msg.Amount)
	if err != nil {
		return nil, err
	}

	if err := m.Keeper.DistributeRewards(sdkCtx, msg.Sender, amount); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// SettleDrip handles the MsgSettleDrip message
func (m *msgServer) SettleDrip(ctx context.Context, msg *types.MsgSettleDrip) (*types.MsgEmptyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	m.Keeper.SettleDrip(sdkCtx)
	return &types.MsgEmptyResponse{}, nil
}

// SwapForStablecoin handles the MsgSwapForStablecoin message
func (m *msgServer) SwapForStablecoin(ctx context.Context, msg *types.MsgSwapForStablecoin) (*types.MsgSwapForStablecoinResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount("amount", msg.Amount)
	if err != nil {
		return nil, err
	}
	minReturn, err := types.ParseAmount("min return", msg.MinReturn)
	if err != nil {
		return nil, err
	}
	proportion, err := types.ParseAmount("burn proportion", msg.BurnProportion)
	if err != nil {
		return nil, err
	}

	result, err := m.Keeper.SwapForStablecoin(sdkCtx, msg.Sender, msg.InputDenom, amount, minReturn,
		msg.AdapterKey, proportion, msg.AdapterData)
	if err != nil {
		return nil, err
	}
	return &types.MsgSwapForStablecoinResponse{
		AmountOut: result.AmountOut.String(),
		Withheld:  result.Withheld.String(),
	}, nil
}

// SetFeePerc handles the MsgSetFeePerc message
func (m *msgServer) SetFeePerc(ctx context.Context, msg *types.MsgSetFeePerc) (*types.MsgEmptyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	perc, err := types.ParseAmount("perc", msg.Perc)
	if err != nil {
		return nil, err
	}

	if err := m.Keeper.SetFeePerc(sdkCtx, msg.Authority, msg.Key, perc); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Pause handles the MsgPause message
func (m *msgServer) Pause(ctx context.Context, msg *types.MsgPause) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.Pause(sdk.UnwrapSDKContext(ctx), msg.Sender); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// Unpause handles the MsgUnpause message
func (m *msgServer) Unpause(ctx context.Context, msg *types.MsgUnpause) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.Unpause(sdk.UnwrapSDKContext(ctx), msg.Sender); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}
