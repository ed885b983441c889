package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/tau-vault/testutil"
	controllerkeeper "github.com/openalpha/tau-vault/x/controller/keeper"
	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	oraclekeeper "github.com/openalpha/tau-vault/x/oracle/keeper"
	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
	stablecoinkeeper "github.com/openalpha/tau-vault/x/stablecoin/keeper"
	stablecointypes "github.com/openalpha/tau-vault/x/stablecoin/types"
	"github.com/openalpha/tau-vault/x/vault/keeper"
	"github.com/openalpha/tau-vault/x/vault/types"
)

const (
	collateralDenom = types.DefaultCollateralDenom
	stableDenom     = types.DefaultStableDenom
	feeCollector    = authtypes.FeeCollectorName
)

var (
	authority  = authtypes.NewModuleAddress("gov").String()
	alice      = addr("alice")
	bob        = addr("bob")
	carol      = addr("carol")
	liquidator = addr("liquidator")
	keeperBot  = addr("keeper")
	multisig   = addr("multisig")
)

func addr(name string) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz)
}

func e18(n int64) math.Int {
	return math.NewIntWithDecimal(n, 18)
}

func mustInt(t *testing.T, s string) math.Int {
	t.Helper()
	v, ok := math.NewIntFromString(s)
	require.True(t, ok, s)
	return v
}

// feeSplitter forwards protocol fees to the fee collector module.
type feeSplitter struct {
	bank *testutil.BankKeeper
}

func (f *feeSplitter) Receive(ctx sdk.Context, fromModule string, amount sdk.Coins) error {
	return f.bank.SendCoinsFromModuleToModule(ctx, fromModule, feeCollector, amount)
}

type fixture struct {
	ctx        sdk.Context
	keeper     *keeper.Keeper
	bank       *testutil.BankKeeper
	stablecoin *stablecoinkeeper.Keeper
	oracle     *oraclekeeper.Keeper
	controller *controllerkeeper.Keeper
}

func setup(t *testing.T) *fixture {
	t.Helper()
	vaultKey := storetypes.NewKVStoreKey(types.StoreKey)
	stableKey := storetypes.NewKVStoreKey(stablecointypes.StoreKey)
	oracleKey := storetypes.NewKVStoreKey(oracletypes.StoreKey)
	controllerKey := storetypes.NewKVStoreKey(controllertypes.StoreKey)
	bankKey := storetypes.NewKVStoreKey("bank")
	ctx := testutil.NewContext(t, vaultKey, stableKey, oracleKey, controllerKey, bankKey)

	logger := log.NewNopLogger()
	bank := testutil.NewBankKeeper(bankKey)
	stablecoin := stablecoinkeeper.NewKeeper(stableKey, bank, stableDenom, authority, logger)
	oracle := oraclekeeper.NewKeeper(oracleKey, authority, logger)
	controller := controllerkeeper.NewKeeper(controllerKey, authority, logger)
	k := keeper.NewKeeper(vaultKey, bank, stablecoin, oracle, controller, &feeSplitter{bank: bank}, authority, logger)

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))
	require.NoError(t, stablecoin.SetMintLimit(ctx, authority, types.ModuleName, e18(1_000_000_000)))
	require.NoError(t, controller.GrantRole(ctx, authority, controllertypes.RoleLiquidator, liquidator.String()))
	require.NoError(t, controller.GrantRole(ctx, authority, controllertypes.RoleKeeper, keeperBot.String()))
	require.NoError(t, controller.GrantRole(ctx, authority, controllertypes.RoleMultisig, multisig.String()))

	f := &fixture{ctx: ctx, keeper: k, bank: bank, stablecoin: stablecoin, oracle: oracle, controller: controller}
	f.setPrice(t, e18(1))
	return f
}

// setPrice pushes an 18-decimal collateral price at the current block time.
func (f *fixture) setPrice(t *testing.T, price math.Int) {
	t.Helper()
	require.NoError(t, f.oracle.SetPrice(f.ctx, authority, collateralDenom, price, 18))
}

func (f *fixture) advance(d time.Duration) {
	f.ctx = testutil.Advance(f.ctx, d)
}

func (f *fixture) fund(owner sdk.AccAddress, denom string, amount math.Int) {
	f.bank.Fund(f.ctx, owner, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

func (f *fixture) balance(owner sdk.AccAddress, denom string) math.Int {
	return f.bank.GetBalance(f.ctx, owner, denom).Amount
}

// open funds owner with collateral, deposits it and borrows debt.
func (f *fixture) open(t *testing.T, owner sdk.AccAddress, collateral, debt math.Int) {
	t.Helper()
	f.fund(owner, collateralDenom, collateral)
	_, err := f.keeper.Deposit(f.ctx, owner.String(), collateral)
	require.NoError(t, err)
	if debt.IsPositive() {
		_, err = f.keeper.Borrow(f.ctx, owner.String(), debt)
		require.NoError(t, err)
	}
}

func (f *fixture) position(owner sdk.AccAddress) types.Position {
	pos, _ := f.keeper.GetPosition(f.ctx, owner.String())
	return pos
}

func TestPauseGating(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(50))

	require.ErrorIs(t, f.keeper.Pause(f.ctx, bob.String()), types.ErrNotAuthorized)
	require.NoError(t, f.keeper.Pause(f.ctx, multisig.String()))
	require.True(t, f.keeper.IsPaused(f.ctx))
	require.ErrorIs(t, f.keeper.Pause(f.ctx, authority), types.ErrPaused)

	_, err := f.keeper.Deposit(f.ctx, alice.String(), e18(1))
	require.ErrorIs(t, err, types.ErrPaused)
	_, err = f.keeper.Repay(f.ctx, alice.String(), e18(1))
	require.ErrorIs(t, err, types.ErrPaused)
	_, err = f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), e18(1), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrPaused)
	require.ErrorIs(t, f.keeper.DistributeRewards(f.ctx, keeperBot.String(), e18(1)), types.ErrPaused)

	// emergency close still works and unwinds the whole position
	pos, err := f.keeper.EmergencyClose(f.ctx, alice.String())
	require.NoError(t, err)
	require.True(t, pos.IsEmpty())
	require.Equal(t, e18(100), f.balance(alice, collateralDenom))
	require.True(t, f.balance(alice, stableDenom).IsZero())

	require.ErrorIs(t, f.keeper.Unpause(f.ctx, bob.String()), types.ErrNotAuthorized)
	require.NoError(t, f.keeper.Unpause(f.ctx, authority))
	require.ErrorIs(t, f.keeper.Unpause(f.ctx, authority), types.ErrNotPaused)
}

func TestGenesisRoundTrip(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(50))
	f.open(t, bob, e18(40), math.ZeroInt())
	require.NoError(t, f.keeper.SetFeePerc(f.ctx, authority, types.FeeKeyLiquidation, e18(1).QuoRaw(10)))

	exported := f.keeper.ExportGenesis(f.ctx)
	require.NoError(t, exported.Validate())
	require.Len(t, exported.Positions, 2)
	require.Equal(t, alice.String(), exported.Positions[0].Owner)
	require.Equal(t, bob.String(), exported.Positions[1].Owner)
	require.Equal(t, e18(140), exported.Drip.TotalCollateral)
	require.Len(t, exported.Fees, 2)

	g := setup(t)
	require.NoError(t, g.keeper.InitGenesis(g.ctx, *exported))
	require.Equal(t, uint64(2), g.keeper.GetAccountCount(g.ctx))
	require.Equal(t, bob.String(), g.keeper.GetAccountAt(g.ctx, 1))
	require.Equal(t, e18(50), g.keeper.GetTotalDebt(g.ctx))
	require.Equal(t, e18(100), g.position(alice).Collateral)
	require.Equal(t, e18(1).QuoRaw(10), g.keeper.GetFeePerc(g.ctx, types.FeeKeyLiquidation))
}

func TestInitGenesisRejectsInvalid(t *testing.T) {
	f := setup(t)
	gs := types.DefaultGenesis()
	gs.Fees = append(gs.Fees, types.FeeEntry{Key: "TOO_HIGH", Perc: types.MaxFeePerc.AddRaw(1)})
	require.ErrorIs(t, f.keeper.InitGenesis(f.ctx, *gs), types.ErrFeePercTooLarge)
}
