package types

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgModifyPosition{},
		&MsgEmergencyClose{},
		&MsgLiquidate{},
		&MsgDistributeRewards{},
		&MsgSettleDrip{},
		&MsgSwapForStablecoin{},
		&MsgSetFeePerc{},
		&MsgPause{},
		&MsgUnpause{},
	)
}

// RegisterLegacyAminoCodec registers the module's messages for amino JSON signing
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgModifyPosition{}, "vault/MsgModifyPosition", nil)
	cdc.RegisterConcrete(&MsgEmergencyClose{}, "vault/MsgEmergencyClose", nil)
	cdc.RegisterConcrete(&MsgLiquidate{}, "vault/MsgLiquidate", nil)
	cdc.RegisterConcrete(&MsgDistributeRewards{}, "vault/MsgDistributeRewards", nil)
	cdc.RegisterConcrete(&MsgSettleDrip{}, "vault/MsgSettleDrip", nil)
	cdc.RegisterConcrete(&MsgSwapForStablecoin{}, "vault/MsgSwapForStablecoin", nil)
	cdc.RegisterConcrete(&MsgSetFeePerc{}, "vault/MsgSetFeePerc", nil)
	cdc.RegisterConcrete(&MsgPause{}, "vault/MsgPause", nil)
	cdc.RegisterConcrete(&MsgUnpause{}, "vault/MsgUnpause", nil)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// TODO: register through the generated service descriptor once
	// proto/tauvault/vault/v1/tx.proto is compiled; the router resolves
	// handlers by proto file descriptor, which hand-written messages lack.
}

// MsgServer defines the vault module's message service
type MsgServer interface {
	ModifyPosition(context.Context, *MsgModifyPosition) (*MsgModifyPositionResponse, error)
	EmergencyClose(context.Context, *MsgEmergencyClose) (*MsgModifyPositionResponse, error)
	Liquidate(context.Context, *MsgLiquidate) (*MsgLiquidateResponse, error)
	DistributeRewards(context.Context, *MsgDistributeRewards) (*MsgEmptyResponse, error)
	SettleDrip(context.Context, *MsgSettleDrip) (*MsgEmptyResponse, error)
	SwapForStablecoin(context.Context, *MsgSwapForStablecoin) (*MsgSwapForStablecoinResponse, error)
	SetFeePerc(context.Context, *MsgSetFeePerc) (*MsgEmptyResponse, error)
	Pause(context.Context, *MsgPause) (*MsgEmptyResponse, error)
	Unpause(context.Context, *MsgUnpause) (*MsgEmptyResponse, error)
}

// ParseAmount parses a non-negative integer amount.
func ParseAmount(field, s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok || v.IsNegative() {
		return math.Int{}, ErrInvalidAmount.Wrapf("%s: %q", field, s)
	}
	return v, nil
}

// ParseSignedAmount parses an integer amount that may be negative. An empty
// string is zero.
func ParseSignedAmount(field, s string) (math.Int, error) {
	if s == "" {
		return math.ZeroInt(), nil
	}
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, ErrInvalidAmount.Wrapf("%s: %q", field, s)
	}
	return v, nil
}

func validateAddress(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return ErrNotAuthorized.Wrapf("invalid %s address: %s", field, err)
	}
	return nil
}

func signer(addr string) []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{acc}
}

// ============ MsgModifyPosition ============

// MsgModifyPosition changes a position by signed collateral and debt
// deltas. Positive collateral deposits, negative withdraws; positive debt
// borrows, negative repays. RepayAll repays the whole debt.
type MsgModifyPosition struct {
	Owner           string `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
	CollateralDelta string `protobuf:"bytes,2,opt,name=collateral_delta,proto3" json:"collateral_delta"`
	DebtDelta       string `protobuf:"bytes,3,opt,name=debt_delta,proto3" json:"debt_delta"`
	RepayAll        bool   `protobuf:"varint,4,opt,name=repay_all,proto3" json:"repay_all,omitempty"`
}

func (msg *MsgModifyPosition) Reset()         { *msg = MsgModifyPosition{} }
func (msg *MsgModifyPosition) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgModifyPosition) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgModifyPosition
func (msg *MsgModifyPosition) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgModifyPosition"
}

// ValidateBasic for MsgModifyPosition
func (msg *MsgModifyPosition) ValidateBasic() error {
	if err := validateAddress("owner", msg.Owner); err != nil {
		return err
	}
	collateral, err := ParseSignedAmount("collateral delta", msg.CollateralDelta)
	if err != nil {
		return err
	}
	debt, err := ParseSignedAmount("debt delta", msg.DebtDelta)
	if err != nil {
		return err
	}
	if msg.RepayAll && !debt.IsZero() {
		return ErrInvalidAmount.Wrap("repay all cannot be combined with a debt delta")
	}
	if collateral.IsZero() && debt.IsZero() && !msg.RepayAll {
		return ErrInvalidAmount.Wrap("empty position change")
	}
	return nil
}

// GetSigners returns the signer addresses for MsgModifyPosition
func (msg *MsgModifyPosition) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }

// Deltas returns the parsed collateral and debt deltas, substituting the
// repay-all sentinel when requested.
func (msg *MsgModifyPosition) Deltas() (math.Int, math.Int, error) {
	collateral, err := ParseSignedAmount("collateral delta", msg.CollateralDelta)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if msg.RepayAll {
		return collateral, RepayAllSentinel(), nil
	}
	debt, err := ParseSignedAmount("debt delta", msg.DebtDelta)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return collateral, debt, nil
}

// MsgModifyPositionResponse reports the position after the change
type MsgModifyPositionResponse struct {
	Collateral string `protobuf:"bytes,1,opt,name=collateral,proto3" json:"collateral"`
	Debt       string `protobuf:"bytes,2,opt,name=debt,proto3" json:"debt"`
}

func (msg *MsgModifyPositionResponse) Reset()         { *msg = MsgModifyPositionResponse{} }
func (msg *MsgModifyPositionResponse) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgModifyPositionResponse) ProtoMessage()  {}

// ============ MsgEmergencyClose ============

// MsgEmergencyClose repays all debt and withdraws all collateral. It is
// accepted while the vault is paused.
type MsgEmergencyClose struct {
	Owner string `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
}

func (msg *MsgEmergencyClose) Reset()         { *msg = MsgEmergencyClose{} }
func (msg *MsgEmergencyClose) String() string { return msg.Owner }
func (msg *MsgEmergencyClose) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgEmergencyClose
func (msg *MsgEmergencyClose) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgEmergencyClose"
}

// ValidateBasic for MsgEmergencyClose
func (msg *MsgEmergencyClose) ValidateBasic() error { return validateAddress("owner", msg.Owner) }

// GetSigners returns the signer addresses for MsgEmergencyClose
func (msg *MsgEmergencyClose) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }

// ============ MsgLiquidate ============

// MsgLiquidate repays Amount of Account's debt in exchange for collateral.
type MsgLiquidate struct {
	Liquidator       string `protobuf:"bytes,1,opt,name=liquidator,proto3" json:"liquidator"`
	Account          string `protobuf:"bytes,2,opt,name=account,proto3" json:"account"`
	Amount           string `protobuf:"bytes,3,opt,name=amount,proto3" json:"amount"`
	MinCollateralOut string `protobuf:"bytes,4,opt,name=min_collateral_out,proto3" json:"min_collateral_out"`
}

func (msg *MsgLiquidate) Reset()         { *msg = MsgLiquidate{} }
func (msg *MsgLiquidate) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgLiquidate) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgLiquidate
func (msg *MsgLiquidate) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgLiquidate"
}

// ValidateBasic for MsgLiquidate
func (msg *MsgLiquidate) ValidateBasic() error {
	if err := validateAddress("liquidator", msg.Liquidator); err != nil {
		return err
	}
	if err := validateAddress("account", msg.Account); err != nil {
		return err
	}
	amount, err := ParseAmount("amount", msg.Amount)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrInvalidAmount.Wrap("liquidation amount must be positive")
	}
	if msg.MinCollateralOut != "" {
		if _, err := ParseAmount("min collateral out", msg.MinCollateralOut); err != nil {
			return err
		}
	}
	return nil
}

// GetSigners returns the signer addresses for MsgLiquidate
func (msg *MsgLiquidate) GetSigners() []sdk.AccAddress { return signer(msg.Liquidator) }

// MsgLiquidateResponse reports the executed split
type MsgLiquidateResponse struct {
	RecordID             string `protobuf:"bytes,1,opt,name=record_id,proto3" json:"record_id"`
	CollateralLiquidated string `protobuf:"bytes,2,opt,name=collateral_liquidated,proto3" json:"collateral_liquidated"`
	LiquidatorShare      string `protobuf:"bytes,3,opt,name=liquidator_share,proto3" json:"liquidator_share"`
	FeeShare             string `protobuf:"bytes,4,opt,name=fee_share,proto3" json:"fee_share"`
}

func (msg *MsgLiquidateResponse) Reset()         { *msg = MsgLiquidateResponse{} }
func (msg *MsgLiquidateResponse) String() string { return msg.RecordID }
func (msg *MsgLiquidateResponse) ProtoMessage()  {}

// ============ MsgDistributeRewards ============

// MsgDistributeRewards burns Amount stablecoin from Sender and drips it to
// collateral holders.
type MsgDistributeRewards struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	Amount string `protobuf:"bytes,2,opt,name=amount,proto3" json:"amount"`
}

func (msg *MsgDistributeRewards) Reset()         { *msg = MsgDistributeRewards{} }
func (msg *MsgDistributeRewards) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgDistributeRewards) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgDistributeRewards
func (msg *MsgDistributeRewards) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgDistributeRewards"
}

// ValidateBasic for MsgDistributeRewards
func (msg *MsgDistributeRewards) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	amount, err := ParseAmount("amount", msg.Amount)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrInvalidAmount.Wrap("reward amount must be positive")
	}
	return nil
}

// GetSigners returns the signer addresses for MsgDistributeRewards
func (msg *MsgDistributeRewards) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// ============ MsgSettleDrip ============

// MsgSettleDrip settles the reward drip on demand.
type MsgSettleDrip struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
}

func (msg *MsgSettleDrip) Reset()         { *msg = MsgSettleDrip{} }
func (msg *MsgSettleDrip) String() string { return msg.Sender }
func (msg *MsgSettleDrip) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgSettleDrip
func (msg *MsgSettleDrip) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgSettleDrip"
}

// ValidateBasic for MsgSettleDrip
func (msg *MsgSettleDrip) ValidateBasic() error { return validateAddress("sender", msg.Sender) }

// GetSigners returns the signer addresses for MsgSettleDrip
func (msg *MsgSettleDrip) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// ============ MsgSwapForStablecoin ============

// MsgSwapForStablecoin swaps yield held by the vault into stablecoin through
// a registered adapter. BurnProportion of the proceeds is burned, the rest
// drips to collateral holders.
type MsgSwapForStablecoin struct {
	Sender         string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
	InputDenom     string `protobuf:"bytes,2,opt,name=input_denom,proto3" json:"input_denom"`
	Amount         string `protobuf:"bytes,3,opt,name=amount,proto3" json:"amount"`
	MinReturn      string `protobuf:"bytes,4,opt,name=min_return,proto3" json:"min_return"`
	AdapterKey     string `protobuf:"bytes,5,opt,name=adapter_key,proto3" json:"adapter_key"`
	BurnProportion string `protobuf:"bytes,6,opt,name=burn_proportion,proto3" json:"burn_proportion"`
	AdapterData    []byte `protobuf:"bytes,7,opt,name=adapter_data,proto3" json:"adapter_data,omitempty"`
}

func (msg *MsgSwapForStablecoin) Reset()         { *msg = MsgSwapForStablecoin{} }
func (msg *MsgSwapForStablecoin) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgSwapForStablecoin) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgSwapForStablecoin
func (msg *MsgSwapForStablecoin) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgSwapForStablecoin"
}

// ValidateBasic for MsgSwapForStablecoin
func (msg *MsgSwapForStablecoin) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(msg.InputDenom); err != nil {
		return ErrInvalidAmount.Wrapf("input denom: %s", err)
	}
	amount, err := ParseAmount("amount", msg.Amount)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrInvalidAmount.Wrap("swap amount must be positive")
	}
	if _, err := ParseAmount("min return", msg.MinReturn); err != nil {
		return err
	}
	proportion, err := ParseAmount("burn proportion", msg.BurnProportion)
	if err != nil {
		return err
	}
	if proportion.GT(Precision) {
		return ErrInvalidProportion.Wrapf("%s", proportion)
	}
	if msg.AdapterKey == "" {
		return ErrUnregisteredSwapAdapter.Wrap("empty adapter key")
	}
	return nil
}

// GetSigners returns the signer addresses for MsgSwapForStablecoin
func (msg *MsgSwapForStablecoin) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// MsgSwapForStablecoinResponse reports the swap outcome
type MsgSwapForStablecoinResponse struct {
	AmountOut string `protobuf:"bytes,1,opt,name=amount_out,proto3" json:"amount_out"`
	Withheld  string `protobuf:"bytes,2,opt,name=withheld,proto3" json:"withheld"`
}

func (msg *MsgSwapForStablecoinResponse) Reset()         { *msg = MsgSwapForStablecoinResponse{} }
func (msg *MsgSwapForStablecoinResponse) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgSwapForStablecoinResponse) ProtoMessage()  {}

// ============ MsgSetFeePerc ============

// MsgSetFeePerc sets a fee registry entry.
type MsgSetFeePerc struct {
	Authority string `protobuf:"bytes,1,opt,name=authority,proto3" json:"authority"`
	Key       string `protobuf:"bytes,2,opt,name=key,proto3" json:"key"`
	Perc      string `protobuf:"bytes,3,opt,name=perc,proto3" json:"perc"`
}

func (msg *MsgSetFeePerc) Reset()         { *msg = MsgSetFeePerc{} }
func (msg *MsgSetFeePerc) String() string { return fmt.Sprintf("%+v", *msg) }
func (msg *MsgSetFeePerc) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgSetFeePerc
func (msg *MsgSetFeePerc) XXX_MessageName() string {
	return "tauvault.vault.v1.MsgSetFeePerc"
}

// ValidateBasic for MsgSetFeePerc
func (msg *MsgSetFeePerc) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	if msg.Key == "" {
		return ErrInvalidFeeKey.Wrap("empty key")
	}
	perc, err := ParseAmount("perc", msg.Perc)
	if err != nil {
		return err
	}
	return ValidateFeePerc(perc)
}

// GetSigners returns the signer addresses for MsgSetFeePerc
func (msg *MsgSetFeePerc) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }

// ============ MsgPause / MsgUnpause ============

// MsgPause halts value-moving vault operations.
type MsgPause struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
}

func (msg *MsgPause) Reset()         { *msg = MsgPause{} }
func (msg *MsgPause) String() string { return msg.Sender }
func (msg *MsgPause) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgPause
func (msg *MsgPause) XXX_MessageName() string { return "tauvault.vault.v1.MsgPause" }

// ValidateBasic for MsgPause
func (msg *MsgPause) ValidateBasic() error { return validateAddress("sender", msg.Sender) }

// GetSigners returns the signer addresses for MsgPause
func (msg *MsgPause) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// MsgUnpause resumes vault operations.
type MsgUnpause struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender"`
}

func (msg *MsgUnpause) Reset()         { *msg = MsgUnpause{} }
func (msg *MsgUnpause) String() string { return msg.Sender }
func (msg *MsgUnpause) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgUnpause
func (msg *MsgUnpause) XXX_MessageName() string { return "tauvault.vault.v1.MsgUnpause" }

// ValidateBasic for MsgUnpause
func (msg *MsgUnpause) ValidateBasic() error { return validateAddress("sender", msg.Sender) }

// GetSigners returns the signer addresses for MsgUnpause
func (msg *MsgUnpause) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// MsgEmptyResponse is returned by messages without a payload
type MsgEmptyResponse struct{}

func (msg *MsgEmptyResponse) Reset()         { *msg = MsgEmptyResponse{} }
func (msg *MsgEmptyResponse) String() string { return "{}" }
func (msg *MsgEmptyResponse) ProtoMessage()  {}
