package keeper_test

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/tau-vault/testutil"
	"github.com/openalpha/tau-vault/x/stablecoin/keeper"
	"github.com/openalpha/tau-vault/x/stablecoin/types"
)

const (
	authority = "cosmos1stablecoinauthority"
	minter    = "vault"
)

func setup(t *testing.T) (*keeper.Keeper, *testutil.BankKeeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	bankKey := storetypes.NewKVStoreKey("bank")
	ctx := testutil.NewContext(t, storeKey, bankKey)
	bank := testutil.NewBankKeeper(bankKey)
	return keeper.NewKeeper(storeKey, bank, types.DefaultDenom, authority, log.NewNopLogger()), bank, ctx
}

func TestMintLimit(t *testing.T) {
	k, bank, ctx := setup(t)
	user := sdk.AccAddress([]byte("user________________"))

	// unapproved minters have a zero limit
	err := k.Mint(ctx, minter, user, math.NewInt(100))
	require.ErrorIs(t, err, types.ErrMintLimitExceeded)
	require.Contains(t, err.Error(), "requested 100, limit 0")

	require.NoError(t, k.SetMintLimit(ctx, authority, minter, math.NewInt(1000)))
	err = k.Mint(ctx, minter, user, math.NewInt(1001))
	require.ErrorIs(t, err, types.ErrMintLimitExceeded)
	require.Contains(t, err.Error(), "requested 1001, limit 1000")

	require.NoError(t, k.Mint(ctx, minter, user, math.NewInt(1000)))
	require.True(t, k.GetMintLimit(ctx, minter).IsZero())
	require.Equal(t, math.NewInt(1000), bank.GetBalance(ctx, user, types.DefaultDenom).Amount)
}

func TestBurnRestoresLimit(t *testing.T) {
	k, bank, ctx := setup(t)
	user := sdk.AccAddress([]byte("user________________"))

	require.NoError(t, k.SetMintLimit(ctx, authority, minter, math.NewInt(500)))
	require.NoError(t, k.Mint(ctx, minter, user, math.NewInt(300)))
	require.Equal(t, math.NewInt(200), k.GetMintLimit(ctx, minter))

	// the burner must hold the coins in its module account
	require.NoError(t, bank.SendCoinsFromAccountToModule(ctx, user, minter, sdk.NewCoins(sdk.NewInt64Coin(types.DefaultDenom, 120))))
	require.NoError(t, k.Burn(ctx, minter, math.NewInt(120)))
	require.Equal(t, math.NewInt(320), k.GetMintLimit(ctx, minter))
	require.True(t, bank.GetBalance(ctx, authtypes.NewModuleAddress(minter), types.DefaultDenom).IsZero())

	require.Error(t, k.Burn(ctx, minter, math.NewInt(1)), "burn without balance must fail")
}

func TestSetMintLimitAuthority(t *testing.T) {
	k, _, ctx := setup(t)
	require.ErrorIs(t, k.SetMintLimit(ctx, "cosmos1intruder", minter, math.NewInt(1)), types.ErrUnauthorized)
	require.ErrorIs(t, k.SetMintLimit(ctx, authority, minter, math.NewInt(-1)), types.ErrInvalidAmount)
}

func TestStablecoinGenesis(t *testing.T) {
	k, _, ctx := setup(t)
	require.NoError(t, k.SetMintLimit(ctx, authority, minter, math.NewInt(42)))

	gs := k.ExportGenesis(ctx)
	require.NoError(t, gs.Validate())

	k2, _, ctx2 := setup(t)
	require.NoError(t, k2.InitGenesis(ctx2, *gs))
	require.Equal(t, math.NewInt(42), k2.GetMintLimit(ctx2, minter))
}
