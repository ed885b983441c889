package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/tau-vault/x/oracle/types"
)

const testAuthority = "cosmos1oracleauthority"

func setupKeeper(t *testing.T) (*Keeper, sdk.Context) {
	t.Helper()
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Time: time.Unix(1_700_000_000, 0)}, false, log.NewNopLogger())
	return NewKeeper(storeKey, testAuthority, log.NewNopLogger()), ctx
}

func TestGetPriceValidity(t *testing.T) {
	k, ctx := setupKeeper(t)

	require.False(t, k.GetPrice(ctx, "fsglp").Valid, "missing price must be invalid")

	require.NoError(t, k.SetPrice(ctx, testAuthority, "fsglp", math.NewInt(85e16), 18))
	price := k.GetPrice(ctx, "fsglp")
	require.True(t, price.Valid)
	require.Equal(t, math.NewInt(85e16), price.Value)
	require.EqualValues(t, 18, price.Decimals)

	age := k.GetOracleConfig(ctx).MaxPriceAge
	fresh := ctx.WithBlockTime(ctx.BlockTime().Add(age))
	require.True(t, k.GetPrice(fresh, "fsglp").Valid, "price at exactly max age is fresh")

	stale := ctx.WithBlockTime(ctx.BlockTime().Add(age + time.Second))
	require.False(t, k.GetPrice(stale, "fsglp").Valid)
}

func TestSetPriceRejects(t *testing.T) {
	k, ctx := setupKeeper(t)

	tests := []struct {
		name     string
		sender   string
		asset    string
		value    math.Int
		decimals uint32
		err      error
	}{
		{"not authority", "cosmos1other", "fsglp", math.NewInt(1), 18, types.ErrUnauthorized},
		{"empty asset", testAuthority, "", math.NewInt(1), 18, types.ErrInvalidPrice},
		{"zero value", testAuthority, "fsglp", math.ZeroInt(), 18, types.ErrInvalidPrice},
		{"too many decimals", testAuthority, "fsglp", math.NewInt(1), 40, types.ErrInvalidPrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := k.SetPrice(ctx, tc.sender, tc.asset, tc.value, tc.decimals)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestOracleGenesisRoundTrip(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.SetPrice(ctx, testAuthority, "fsglp", math.NewInt(1e18), 18))

	exported := k.ExportGenesis(ctx)
	require.Len(t, exported.Prices, 1)

	k2, ctx2 := setupKeeper(t)
	require.NoError(t, k2.InitGenesis(ctx2, *exported))
	require.True(t, k2.GetPrice(ctx2, "fsglp").Valid)
}
