package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/tau-vault/x/controller/types"
)

var (
	testAuthority = sdk.AccAddress([]byte("authority___________")).String()
	alice         = sdk.AccAddress([]byte("alice_______________")).String()
	bob           = sdk.AccAddress([]byte("bob_________________")).String()
)

func setupKeeper(t *testing.T) (*Keeper, sdk.Context) {
	t.Helper()
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	return NewKeeper(storeKey, testAuthority, log.NewNopLogger()), ctx
}

type stubAdapter struct{}

func (stubAdapter) Address() sdk.AccAddress { return sdk.AccAddress([]byte("adapter_____________")) }

func (stubAdapter) Swap(sdk.Context, string, sdk.AccAddress, []byte) (math.Int, error) {
	return math.ZeroInt(), nil
}

func TestGrantAndRevokeRole(t *testing.T) {
	k, ctx := setupKeeper(t)

	require.ErrorIs(t, k.GrantRole(ctx, alice, types.RoleKeeper, bob), types.ErrNotAuthorized)
	require.ErrorIs(t, k.GrantRole(ctx, testAuthority, types.Role("ADMIN"), bob), types.ErrUnknownRole)
	require.ErrorIs(t, k.GrantRole(ctx, testAuthority, types.RoleKeeper, "not-an-address"), types.ErrInvalidAddress)

	require.NoError(t, k.GrantRole(ctx, testAuthority, types.RoleKeeper, bob))
	require.True(t, k.HasRole(ctx, types.RoleKeeper, bob))
	require.False(t, k.HasRole(ctx, types.RoleLiquidator, bob))
	require.Equal(t, []string{bob}, k.GetRoleHolders(ctx, types.RoleKeeper))

	require.NoError(t, k.RevokeRole(ctx, testAuthority, types.RoleKeeper, bob))
	require.False(t, k.HasRole(ctx, types.RoleKeeper, bob))
	require.Empty(t, k.GetRoleHolders(ctx, types.RoleKeeper))
}

func TestCheckRoleModes(t *testing.T) {
	k, ctx := setupKeeper(t)

	// an empty holder set is still restricted
	require.ErrorIs(t, k.CheckRole(ctx, types.RoleLiquidator, alice), types.ErrNotAuthorized)

	require.NoError(t, k.SetRoleMode(ctx, testAuthority, types.RoleLiquidator, types.AccessModeOpen))
	require.NoError(t, k.CheckRole(ctx, types.RoleLiquidator, alice))
	require.ErrorIs(t, k.CheckRole(ctx, types.RoleKeeper, alice), types.ErrNotAuthorized)

	require.NoError(t, k.SetRoleMode(ctx, testAuthority, types.RoleLiquidator, types.AccessModeRestricted))
	require.ErrorIs(t, k.CheckRole(ctx, types.RoleLiquidator, alice), types.ErrNotAuthorized)

	require.NoError(t, k.GrantRole(ctx, testAuthority, types.RoleLiquidator, alice))
	require.NoError(t, k.CheckRole(ctx, types.RoleLiquidator, alice))
}

func TestSwapAdapterRegistry(t *testing.T) {
	k, _ := setupKeeper(t)

	_, ok := k.SwapAdapter("glp")
	require.False(t, ok)

	require.NoError(t, k.RegisterSwapAdapter("glp", stubAdapter{}))
	require.ErrorIs(t, k.RegisterSwapAdapter("glp", stubAdapter{}), types.ErrAdapterExists)
	require.ErrorIs(t, k.RegisterSwapAdapter("", stubAdapter{}), types.ErrInvalidAdapter)
	require.NoError(t, k.RegisterSwapAdapter("eth", stubAdapter{}))

	adapter, ok := k.SwapAdapter("glp")
	require.True(t, ok)
	require.NotNil(t, adapter)
	require.Equal(t, []string{"eth", "glp"}, k.SwapAdapterKeys())
}

func TestControllerGenesisRoundTrip(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.GrantRole(ctx, testAuthority, types.RoleMultisig, alice))
	require.NoError(t, k.SetRoleMode(ctx, testAuthority, types.RoleLiquidator, types.AccessModeOpen))

	gs := k.ExportGenesis(ctx)
	require.Len(t, gs.Grants, 1)
	require.Len(t, gs.Modes, 1)

	k2, ctx2 := setupKeeper(t)
	require.NoError(t, k2.InitGenesis(ctx2, *gs))
	require.True(t, k2.HasRole(ctx2, types.RoleMultisig, alice))
	require.Equal(t, types.AccessModeOpen, k2.GetRoleMode(ctx2, types.RoleLiquidator))
}
