package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestLiquidationDiscount(t *testing.T) {
	tests := []struct {
		name string
		hf   math.Int
		want math.Int
	}{
		{"just below min ratio", MinCollRatio.SubRaw(1), LiquidationSurcharge.AddRaw(1)},
		{"underwater example", mustInt(t, "1133333333333333333"), mustInt(t, "86666666666666667")},
		{"capped", math.NewIntWithDecimal(5, 17), MaxLiqDiscount},
		{"healthy", MinCollRatio.Add(LiquidationSurcharge), math.ZeroInt()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want.String(), LiquidationDiscount(tc.hf).String())
		})
	}
}

func TestComputeLiquidationExample(t *testing.T) {
	pos := position(e18(100), e18(75))
	price := price18(math.NewIntWithDecimal(85, 16))

	maxRepay, err := MaxLiquidatable(pos, price)
	require.NoError(t, err)
	require.Equal(t, "58593750000000000091", maxRepay.String())

	res, err := ComputeLiquidation(pos, price, maxRepay, math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, "1133333333333333333", res.HealthFactor.String())
	require.Equal(t, "86666666666666667", res.Discount.String())
	require.Equal(t, "74908088235294117786", res.CollateralLiquidated.String())
	require.Equal(t, "1378676470588235296", res.FeeShare.String())
	require.Equal(t, "73529411764705882490", res.LiquidatorShare.String())
	require.Equal(t, "16406249999999999909", res.NewDebt.String())
	require.Equal(t, "25091911764705882214", res.NewCollateral.String())
	require.False(t, res.Wipeout())

	require.True(t, res.CollateralLiquidated.Equal(res.FeeShare.Add(res.LiquidatorShare)))
	require.True(t, res.NewCollateral.Add(res.CollateralLiquidated).Equal(pos.Collateral))
}

func TestComputeLiquidationErrors(t *testing.T) {
	base := position(e18(100), e18(75))

	tests := []struct {
		name   string
		pos    Position
		price  math.Int
		repay  math.Int
		minOut math.Int
		err    error
		msg    string
	}{
		{
			name:   "healthy account",
			pos:    base,
			price:  e18(1),
			repay:  e18(1),
			minOut: math.ZeroInt(),
			err:    ErrCannotLiquidateHealthyAccount,
		},
		{
			name:   "repay above max",
			pos:    base,
			price:  math.NewIntWithDecimal(85, 16),
			repay:  mustInt(t, "58593750000000000092"),
			minOut: math.ZeroInt(),
			err:    ErrWrongLiquidationAmount,
			msg:    "requested 58593750000000000092, max 58593750000000000091",
		},
		{
			name:   "liquidator share below minimum",
			pos:    base,
			price:  math.NewIntWithDecimal(85, 16),
			repay:  e18(10),
			minOut: e18(100),
			err:    ErrSlippageTooHigh,
		},
		{
			name:   "negative repay",
			pos:    base,
			price:  math.NewIntWithDecimal(85, 16),
			repay:  math.NewInt(-1),
			minOut: math.ZeroInt(),
			err:    ErrInvalidAmount,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeLiquidation(tc.pos, price18(tc.price), tc.repay, tc.minOut)
			require.ErrorIs(t, err, tc.err)
			if tc.msg != "" {
				require.Contains(t, err.Error(), tc.msg)
			}
		})
	}
}

func TestComputeLiquidationWipeout(t *testing.T) {
	pos := position(e18(10), e18(100))
	price := price18(e18(1))

	res, err := ComputeLiquidation(pos, price, e18(100), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, e18(10).String(), res.CollateralLiquidated.String(), "seizure clamps to available collateral")
	require.Equal(t, e18(2).String(), res.FeeShare.String(), "surcharge follows the requested repayment")
	require.Equal(t, e18(8).String(), res.LiquidatorShare.String())
	require.True(t, res.NewDebt.IsZero())
	require.True(t, res.NewCollateral.IsZero())
	require.True(t, res.Wipeout())

	// the query clamps so that no seizure exceeds collateral
	maxRepay, err := MaxLiquidatable(pos, price)
	require.NoError(t, err)
	require.Equal(t, "8333333333333333334", maxRepay.String())
	require.True(t, CollateralForRepay(maxRepay, res.Discount, price).LTE(pos.Collateral))
	require.True(t, CollateralForRepay(maxRepay.AddRaw(1), res.Discount, price).GT(pos.Collateral))
}

func TestComputeLiquidationFullSeizure(t *testing.T) {
	pos := position(e18(100), e18(95))
	price := price18(e18(1))

	res, err := ComputeLiquidation(pos, price, e18(95), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, "167368421052631579", res.Discount.String())
	require.Equal(t, e18(100).String(), res.CollateralLiquidated.String())
	require.Equal(t, "1900000000000000000", res.FeeShare.String())
	require.Equal(t, "98100000000000000000", res.LiquidatorShare.String())

	maxRepay, err := MaxLiquidatable(pos, price)
	require.NoError(t, err)
	require.Equal(t, "85662759242560865641", maxRepay.String())
}

func TestSurchargeExceedingSeizureFails(t *testing.T) {
	pos := position(e18(1), e18(100))
	_, err := ComputeLiquidation(pos, price18(e18(1)), e18(100), math.ZeroInt())
	require.ErrorIs(t, err, ErrSlippageTooHigh)
}

func TestMaxLiquidatableHealthyIsZero(t *testing.T) {
	got, err := MaxLiquidatable(position(e18(200), e18(100)), price18(e18(1)))
	require.NoError(t, err)
	require.True(t, got.IsZero())

	got, err = MaxLiquidatable(position(e18(200), math.ZeroInt()), price18(e18(1)))
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestLiquidationNeverNegative(t *testing.T) {
	prices := []math.Int{math.NewIntWithDecimal(1, 17), math.NewIntWithDecimal(5, 17), math.NewIntWithDecimal(85, 16), math.NewIntWithDecimal(11, 17)}
	for _, p := range prices {
		for _, debt := range []int64{1, 50, 75, 99, 100} {
			pos := position(e18(100), e18(debt))
			price := price18(p)
			maxRepay, err := MaxLiquidatable(pos, price)
			require.NoError(t, err)
			if maxRepay.IsZero() {
				continue
			}
			res, err := ComputeLiquidation(pos, price, maxRepay, math.ZeroInt())
			if err != nil {
				require.ErrorIs(t, err, ErrSlippageTooHigh)
				continue
			}
			require.False(t, res.NewDebt.IsNegative())
			require.False(t, res.NewCollateral.IsNegative())
			require.True(t, res.CollateralLiquidated.LTE(pos.Collateral))
		}
	}
}
