package types

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	ModuleName = "stablecoin"
	StoreKey   = ModuleName

	DefaultDenom = "tau"
)

var (
	ErrMintLimitExceeded = errors.Register(ModuleName, 1, "mint limit exceeded")
	ErrUnauthorized      = errors.Register(ModuleName, 2, "unauthorized")
	ErrInvalidAmount     = errors.Register(ModuleName, 3, "invalid amount")
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
}

// MintLimit is the remaining amount a minter may mint.
type MintLimit struct {
	Minter    string   `json:"minter"`
	Remaining math.Int `json:"remaining"`
}

// GenesisState is the stablecoin genesis.
type GenesisState struct {
	Denom  string      `json:"denom"`
	Limits []MintLimit `json:"limits"`
}

// DefaultGenesis returns a genesis with no minters.
func DefaultGenesis() *GenesisState {
	return &GenesisState{Denom: DefaultDenom}
}

// Validate checks the genesis state.
func (gs GenesisState) Validate() error {
	if err := sdk.ValidateDenom(gs.Denom); err != nil {
		return err
	}
	seen := make(map[string]bool, len(gs.Limits))
	for _, l := range gs.Limits {
		if l.Minter == "" || seen[l.Minter] {
			return errors.Wrapf(ErrInvalidAmount, "duplicate or empty minter %q", l.Minter)
		}
		if l.Remaining.IsNil() || l.Remaining.IsNegative() {
			return errors.Wrapf(ErrInvalidAmount, "negative limit for %s", l.Minter)
		}
		seen[l.Minter] = true
	}
	return nil
}
