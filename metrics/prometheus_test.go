package metrics

import (
	"errors"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestScaled(t *testing.T) {
	require.Equal(t, 0.25, Scaled(big.NewInt(25), 2))
	require.Equal(t, 12.0, Units(e18(12)))
	require.Equal(t, 0.0, Units(nil))
}

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordPositionOp("modify", nil)
	c.RecordPositionOp("modify", errors.New("rejected"))
	c.RecordPositionOp("modify", nil)
	require.Equal(t, 2.0, testutil.ToFloat64(c.PositionOpsTotal.WithLabelValues("modify")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.PositionOpErrors.WithLabelValues("modify")))

	c.RecordSwap("glp", e18(3), e18(7))
	require.Equal(t, 3.0, testutil.ToFloat64(c.SwapOutput.WithLabelValues("burn")))
	require.Equal(t, 7.0, testutil.ToFloat64(c.SwapOutput.WithLabelValues("drip")))

	c.RecordForfeit(big.NewInt(0))
	require.Zero(t, testutil.ToFloat64(c.RewardsForfeited))

	c.RecordOraclePrice("fsglp", false, 0)
	require.Equal(t, 1.0, testutil.ToFloat64(c.OracleInvalidTotal.WithLabelValues("fsglp")))

	c.RecordBotScan(4, 12.5)
	c.RecordBotSubmission("submitted")
	require.Equal(t, 4.0, testutil.ToFloat64(c.BotUnhealthy))
	require.Equal(t, 1.0, testutil.ToFloat64(c.BotSubmissions.WithLabelValues("submitted")))
}
