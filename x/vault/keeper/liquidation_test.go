package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	controllertypes "github.com/openalpha/tau-vault/x/controller/types"
	"github.com/openalpha/tau-vault/x/vault/keeper"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// setupUnderwater opens three positions at price 1 and drops the price to
// 0.85: alice (100/75) and bob (100/80) become liquidatable, carol
// (100/10) stays healthy.
func setupUnderwater(t *testing.T) *fixture {
	f := setup(t)
	f.open(t, alice, e18(100), e18(75))
	f.open(t, bob, e18(100), e18(80))
	f.open(t, carol, e18(100), e18(10))
	f.setPrice(t, mustInt(t, "850000000000000000"))
	return f
}

func TestFetchUnhealthyAccounts(t *testing.T) {
	f := setupUnderwater(t)

	accounts, err := f.keeper.FetchUnhealthyAccounts(f.ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, bob.String(), accounts[0].Account)
	require.Equal(t, mustInt(t, "1062500000000000000"), accounts[0].HealthFactor)
	require.Equal(t, mustInt(t, "73434125269978401728"), accounts[0].MaxLiquidatable)
	require.Equal(t, alice.String(), accounts[1].Account)
	require.Equal(t, mustInt(t, "1133333333333333333"), accounts[1].HealthFactor)
	require.Equal(t, mustInt(t, "58593750000000000091"), accounts[1].MaxLiquidatable)

	accounts, err = f.keeper.FetchUnhealthyAccounts(f.ctx, 2, 3)
	require.NoError(t, err)
	require.Empty(t, accounts)

	_, err = f.keeper.FetchUnhealthyAccounts(f.ctx, 0, 4)
	require.ErrorIs(t, err, types.ErrIndexOutOfBound)
	_, err = f.keeper.FetchUnhealthyAccounts(f.ctx, 2, 1)
	require.ErrorIs(t, err, types.ErrIndexOutOfBound)
	_, err = f.keeper.GetUsersDetailsInRange(f.ctx, 1, 4)
	require.ErrorIs(t, err, types.ErrIndexOutOfBound)

	details, err := f.keeper.GetUsersDetailsInRange(f.ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, details, 3)
	require.False(t, details[0].Healthy)
	require.False(t, details[1].Healthy)
	require.True(t, details[2].Healthy)
}

func TestAccountHealthAndLiquidity(t *testing.T) {
	f := setupUnderwater(t)

	hf, err := f.keeper.GetAccountHealth(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, mustInt(t, "1133333333333333333"), hf)

	hf, err = f.keeper.GetAccountHealth(f.ctx, addr("nobody").String())
	require.NoError(t, err)
	require.Equal(t, types.InfiniteHealth, hf)

	require.NoError(t, f.keeper.CheckLiquidity(f.ctx, e18(300)))
	require.ErrorIs(t, f.keeper.CheckLiquidity(f.ctx, e18(300).AddRaw(1)), types.ErrInsufficientLiquidity)

	f.advance(2 * time.Hour)
	_, err = f.keeper.GetAccountHealth(f.ctx, alice.String())
	require.ErrorIs(t, err, types.ErrOracleCorrupt)
}

func TestLiquidatePartial(t *testing.T) {
	f := setupUnderwater(t)
	vault := authtypes.NewModuleAddress(types.ModuleName)
	collector := authtypes.NewModuleAddress(feeCollector)

	repay, err := f.keeper.GetMaxLiquidatable(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, mustInt(t, "58593750000000000091"), repay)
	f.fund(liquidator, stableDenom, repay)

	record, err := f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), repay, e18(73))
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	require.Equal(t, mustInt(t, "74908088235294117786"), record.CollateralLiquidated)
	require.Equal(t, mustInt(t, "1378676470588235296"), record.FeeShare)
	require.Equal(t, mustInt(t, "73529411764705882490"), record.LiquidatorShare)
	require.Equal(t, mustInt(t, "86666666666666667"), record.Discount)

	pos := f.position(alice)
	require.Equal(t, mustInt(t, "16406249999999999909"), pos.Debt)
	require.Equal(t, mustInt(t, "25091911764705882214"), pos.Collateral)

	require.True(t, f.balance(liquidator, stableDenom).IsZero())
	require.Equal(t, record.LiquidatorShare, f.balance(liquidator, collateralDenom))
	require.Equal(t, record.FeeShare, f.balance(collector, collateralDenom))
	require.Equal(t, mustInt(t, "225091911764705882214"), f.balance(vault, collateralDenom))
	require.Equal(t, mustInt(t, "225091911764705882214"), f.keeper.GetDripState(f.ctx).TotalCollateral)

	records := f.keeper.GetLiquidationRecords(f.ctx)
	require.Len(t, records, 1)
	require.Equal(t, record.ID, records[0].ID)
	require.Equal(t, alice.String(), records[0].Account)
	require.Equal(t, f.ctx.BlockHeight(), records[0].Height)
}

func TestLiquidateWipeout(t *testing.T) {
	f := setupUnderwater(t)
	f.fund(liquidator, stableDenom, e18(80))

	// the formula allows the full debt; seizure is capped at the collateral
	record, err := f.keeper.Liquidate(f.ctx, liquidator.String(), bob.String(), e18(80), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, e18(100), record.CollateralLiquidated)
	require.Equal(t, mustInt(t, "1882352941176470588"), record.FeeShare)
	require.Equal(t, mustInt(t, "98117647058823529412"), record.LiquidatorShare)
	require.True(t, f.position(bob).IsEmpty())

	// a second liquidation in the same block gets a distinct id
	f.fund(liquidator, stableDenom, e18(1))
	second, err := f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), e18(1), math.ZeroInt())
	require.NoError(t, err)
	require.NotEqual(t, record.ID, second.ID)
	require.Len(t, f.keeper.GetLiquidationRecords(f.ctx), 2)
}

func TestLiquidateRejections(t *testing.T) {
	f := setupUnderwater(t)
	f.fund(liquidator, stableDenom, e18(100))

	tests := []struct {
		name       string
		liquidator string
		account    string
		repay      math.Int
		minOut     math.Int
		wantErr    error
	}{
		{"healthy account", liquidator.String(), carol.String(), e18(1), math.ZeroInt(), types.ErrCannotLiquidateHealthyAccount},
		{"unknown account", liquidator.String(), addr("nobody").String(), e18(1), math.ZeroInt(), types.ErrCannotLiquidateHealthyAccount},
		{"above maximum", liquidator.String(), bob.String(), e18(81), math.ZeroInt(), types.ErrWrongLiquidationAmount},
		{"min out not met", liquidator.String(), alice.String(), e18(1), e18(100), types.ErrSlippageTooHigh},
		{"missing role", carol.String(), alice.String(), e18(1), math.ZeroInt(), types.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.keeper.Liquidate(f.ctx, tt.liquidator, tt.account, tt.repay, tt.minOut)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.Equal(t, e18(75), f.position(alice).Debt)
	require.Equal(t, e18(80), f.position(bob).Debt)
	require.Empty(t, f.keeper.GetLiquidationRecords(f.ctx))
	require.Equal(t, e18(100), f.balance(liquidator, stableDenom))
}

func TestLiquidateRollsBackOnTransferFailure(t *testing.T) {
	f := setupUnderwater(t)

	// the liquidator cannot cover the repayment
	_, err := f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), e18(10), math.ZeroInt())
	require.Error(t, err)
	require.Equal(t, e18(75), f.position(alice).Debt)
	require.Equal(t, e18(300), f.keeper.GetDripState(f.ctx).TotalCollateral)
	require.True(t, f.balance(liquidator, collateralDenom).IsZero())
}

func TestLiquidateOpenAccess(t *testing.T) {
	f := setupUnderwater(t)
	f.fund(carol, stableDenom, e18(1))

	_, err := f.keeper.Liquidate(f.ctx, carol.String(), alice.String(), e18(1), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrNotAuthorized)

	require.NoError(t, f.controller.SetRoleMode(f.ctx, authority, controllertypes.RoleLiquidator, controllertypes.AccessModeOpen))
	_, err = f.keeper.Liquidate(f.ctx, carol.String(), alice.String(), e18(1), math.ZeroInt())
	require.NoError(t, err)
}

func TestMsgServerLiquidate(t *testing.T) {
	f := setupUnderwater(t)
	srv := keeper.NewMsgServerImpl(f.keeper)
	f.fund(liquidator, stableDenom, e18(10))

	resp, err := srv.Liquidate(f.ctx, &types.MsgLiquidate{
		Liquidator: liquidator.String(),
		Account:    alice.String(),
		Amount:     e18(10).String(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RecordID)
	require.Equal(t, f.balance(liquidator, collateralDenom).String(), resp.LiquidatorShare)

	_, err = srv.Liquidate(f.ctx, &types.MsgLiquidate{
		Liquidator: liquidator.String(),
		Account:    alice.String(),
		Amount:     "0",
	})
	require.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestLiquidationCountsPendingReward(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(75))
	f.distribute(t, e18(10))
	f.advance(24 * time.Hour)
	price := mustInt(t, "850000000000000000")
	f.setPrice(t, price)

	// 100/75 at 0.85 is unhealthy, but the released reward brings the debt to 65
	hf, err := f.keeper.GetAccountHealth(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, types.HealthFactor(e18(100), e18(65), price, 18), hf)

	accounts, err := f.keeper.FetchUnhealthyAccounts(f.ctx, 0, 1)
	require.NoError(t, err)
	require.Empty(t, accounts)
	maxRepay, err := f.keeper.GetMaxLiquidatable(f.ctx, alice.String())
	require.NoError(t, err)
	require.True(t, maxRepay.IsZero())

	f.fund(liquidator, stableDenom, e18(1))
	_, err = f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), e18(1), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrCannotLiquidateHealthyAccount)
	require.Equal(t, e18(75), f.position(alice).Debt)
	require.Empty(t, f.keeper.GetLiquidationRecords(f.ctx))

	require.Equal(t, e18(10), f.keeper.SettleAccount(f.ctx, alice.String()))
	require.Equal(t, e18(65), f.position(alice).Debt)
}

func TestLiquidationSettlesTargetReward(t *testing.T) {
	f := setup(t)
	f.open(t, alice, e18(100), e18(75))
	f.open(t, bob, e18(100), math.ZeroInt())
	f.distribute(t, e18(10))
	f.advance(24 * time.Hour)
	price := mustInt(t, "800000000000000000")
	f.setPrice(t, price)

	// alice has 5 pending, leaving 100/70 at 0.8
	accounts, err := f.keeper.FetchUnhealthyAccounts(f.ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, alice.String(), accounts[0].Account)
	require.Equal(t, e18(70), accounts[0].Debt)
	require.Equal(t, types.HealthFactor(e18(100), e18(70), price, 18), accounts[0].HealthFactor)

	repay, err := f.keeper.GetMaxLiquidatable(f.ctx, alice.String())
	require.NoError(t, err)
	require.Equal(t, accounts[0].MaxLiquidatable, repay)
	require.True(t, repay.IsPositive())

	f.fund(liquidator, stableDenom, repay)
	record, err := f.keeper.Liquidate(f.ctx, liquidator.String(), alice.String(), repay, math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, accounts[0].HealthFactor, record.HealthFactor)

	state := f.keeper.GetDripState(f.ctx)
	require.Equal(t, mustInt(t, "50000000000000000"), state.CumulativeRewardPerCollateral)
	require.True(t, state.Withheld.IsZero())

	pos := f.position(alice)
	require.Equal(t, state.CumulativeRewardPerCollateral, pos.RewardIndexCheckpoint)
	require.Equal(t, e18(70).Sub(repay), pos.Debt)
	require.Equal(t, e18(100).Sub(record.CollateralLiquidated), pos.Collateral)
	require.Equal(t, pos.Debt, f.keeper.GetTotalDebt(f.ctx))

	// the reward was applied in full before the seizure
	require.True(t, f.keeper.SettleAccount(f.ctx, alice.String()).IsZero())
	details, err := f.keeper.GetUserDetails(f.ctx, bob.String())
	require.NoError(t, err)
	require.Equal(t, e18(5), details.PendingReward)
}
