package testutil

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisTime is the block time of contexts built by NewContext.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// NewContext mounts every key on an in-memory multistore and returns a
// context at height 1.
func NewContext(tb testing.TB, keys ...storetypes.StoreKey) sdk.Context {
	tb.Helper()
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	for _, key := range keys {
		stateStore.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	}
	if err := stateStore.LoadLatestVersion(); err != nil {
		tb.Fatalf("failed to load store: %v", err)
	}
	header := cmtproto.Header{Height: 1, Time: GenesisTime}
	return sdk.NewContext(stateStore, header, false, log.NewNopLogger())
}

// Advance returns ctx moved forward by d and one block.
func Advance(ctx sdk.Context, d time.Duration) sdk.Context {
	return ctx.WithBlockTime(ctx.BlockTime().Add(d)).WithBlockHeight(ctx.BlockHeight() + 1)
}
