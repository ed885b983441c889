package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
)

func e18(n int64) math.Int { return math.NewIntWithDecimal(n, 18) }

func mustInt(t *testing.T, s string) math.Int {
	t.Helper()
	v, ok := math.NewIntFromString(s)
	require.True(t, ok, s)
	return v
}

func price18(v math.Int) oracletypes.Price {
	return oracletypes.Price{Value: v, Decimals: 18, Valid: true}
}

func position(collateral, debt math.Int) Position {
	pos := NewPosition("owner")
	pos.Collateral = collateral
	pos.Debt = debt
	return pos
}

func TestHealthFactor(t *testing.T) {
	tests := []struct {
		name       string
		collateral math.Int
		debt       math.Int
		price      math.Int
		decimals   uint32
		want       string
	}{
		{"underwater example", e18(100), e18(75), math.NewIntWithDecimal(85, 16), 18, "1133333333333333333"},
		{"eight decimal oracle", e18(100), e18(75), math.NewInt(85_000_000), 8, "1133333333333333333"},
		{"exactly min ratio", e18(120), e18(100), e18(1), 18, "1200000000000000000"},
		{"one unit below min ratio", e18(120).SubRaw(1), e18(100), e18(1), 18, "1199999999999999999"},
		{"raw units", math.NewInt(100), math.NewInt(75), math.NewIntWithDecimal(85, 16), 18, "1133333333333333333"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HealthFactor(tc.collateral, tc.debt, tc.price, tc.decimals)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestHealthFactorWithoutDebtIsInfinite(t *testing.T) {
	require.True(t, HealthFactor(e18(1), math.ZeroInt(), e18(1), 18).Equal(InfiniteHealth))
	require.True(t, HealthFactor(math.ZeroInt(), math.ZeroInt(), e18(1), 18).Equal(InfiniteHealth))
	require.Equal(t, 256, InfiniteHealth.BigInt().BitLen())
}

func TestIsHealthy(t *testing.T) {
	one := price18(e18(1))

	healthy, err := IsHealthy(position(e18(120), e18(100)), one)
	require.NoError(t, err)
	require.True(t, healthy, "min ratio is inclusive")

	healthy, err = IsHealthy(position(e18(120).SubRaw(1), e18(100)), one)
	require.NoError(t, err)
	require.False(t, healthy)

	healthy, err = IsHealthy(position(math.ZeroInt(), math.ZeroInt()), one)
	require.NoError(t, err)
	require.True(t, healthy)
}

func TestOracleCorrupt(t *testing.T) {
	pos := position(e18(100), e18(75))
	tests := []struct {
		name  string
		price oracletypes.Price
	}{
		{"invalid flag", oracletypes.Price{Value: e18(1), Decimals: 18}},
		{"zero value", price18(math.ZeroInt())},
		{"missing", oracletypes.InvalidPrice()},
		{"absurd decimals", oracletypes.Price{Value: e18(1), Decimals: 77, Valid: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := IsHealthy(pos, tc.price)
			require.ErrorIs(t, err, ErrOracleCorrupt)
			_, err = MaxLiquidatable(pos, tc.price)
			require.ErrorIs(t, err, ErrOracleCorrupt)
			_, err = ComputeLiquidation(pos, tc.price, e18(1), math.ZeroInt())
			require.ErrorIs(t, err, ErrOracleCorrupt)
		})
	}
}
