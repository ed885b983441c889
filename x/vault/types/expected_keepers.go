package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// StablecoinKeeper mints against a per-minter limit and burns from a module
// account, restoring that limit.
type StablecoinKeeper interface {
	Mint(ctx sdk.Context, minter string, to sdk.AccAddress, amount math.Int) error
	Burn(ctx sdk.Context, burner string, amount math.Int) error
}

// OracleKeeper supplies asset prices.
type OracleKeeper interface {
	GetPrice(ctx sdk.Context, asset string) oracletypes.Price
}

// ControllerKeeper answers role checks and resolves swap adapters.
type ControllerKeeper interface {
	CheckRole(ctx sdk.Context, role controllertypes.Role, addr string) error
	SwapAdapter(key string) (controllertypes.SwapAdapter, bool)
}

// FeeSplitter receives the protocol's share of liquidations and swaps from
// the vault module account.
type FeeSplitter interface {
	Receive(ctx sdk.Context, fromModule string, amount sdk.Coins) error
}
