package testutil

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// BankKeeper is a store-backed bank double. Balances live in the given
// store so cache contexts roll them back like real state.
type BankKeeper struct {
	storeKey storetypes.StoreKey
}

// NewBankKeeper creates a bank double on storeKey.
func NewBankKeeper(storeKey storetypes.StoreKey) *BankKeeper {
	return &BankKeeper{storeKey: storeKey}
}

func (b *BankKeeper) load(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	bz := sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey).Get(addr)
	if bz == nil {
		return sdk.NewCoins()
	}
	var coins sdk.Coins
	if err := json.Unmarshal(bz, &coins); err != nil {
		panic(err)
	}
	return coins
}

func (b *BankKeeper) save(ctx context.Context, addr sdk.AccAddress, coins sdk.Coins) {
	bz, err := json.Marshal(coins)
	if err != nil {
		panic(err)
	}
	sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey).Set(addr, bz)
}

func (b *BankKeeper) send(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	balance := b.load(ctx, from)
	remaining, negative := balance.SafeSub(amt...)
	if negative {
		return fmt.Errorf("insufficient funds: %s < %s", balance, amt)
	}
	b.save(ctx, from, remaining)
	b.save(ctx, to, b.load(ctx, to).Add(amt...))
	return nil
}

// Fund credits addr out of thin air.
func (b *BankKeeper) Fund(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) {
	b.save(ctx, addr, b.load(ctx, addr).Add(amt...))
}

// GetBalance returns the balance of addr in denom.
func (b *BankKeeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, b.load(ctx, addr).AmountOf(denom))
}

// GetAllBalances returns every coin held by addr.
func (b *BankKeeper) GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	return b.load(ctx, addr)
}

func (b *BankKeeper) SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	return b.send(ctx, from, to, amt)
}

func (b *BankKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return b.send(ctx, senderAddr, authtypes.NewModuleAddress(recipientModule), amt)
}

func (b *BankKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return b.send(ctx, authtypes.NewModuleAddress(senderModule), recipientAddr, amt)
}

func (b *BankKeeper) SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error {
	return b.send(ctx, authtypes.NewModuleAddress(senderModule), authtypes.NewModuleAddress(recipientModule), amt)
}

func (b *BankKeeper) MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	b.Fund(ctx, authtypes.NewModuleAddress(moduleName), amt)
	return nil
}

func (b *BankKeeper) BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	addr := authtypes.NewModuleAddress(moduleName)
	remaining, negative := b.load(ctx, addr).SafeSub(amt...)
	if negative {
		return fmt.Errorf("insufficient funds to burn %s", amt)
	}
	b.save(ctx, addr, remaining)
	return nil
}
