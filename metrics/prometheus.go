package metrics

import (
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TAU vault metrics collector

const namespace = "tauvault"

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all vault metrics
type Collector struct {
	// Position metrics
	PositionOpsTotal *prometheus.CounterVec
	PositionOpErrors *prometheus.CounterVec
	IndexedAccounts  prometheus.Gauge
	TotalCollateral  prometheus.Gauge
	TotalDebt        prometheus.Gauge

	// Reward drip metrics
	RewardsWithheld  prometheus.Gauge
	RewardsReleased  prometheus.Counter
	RewardsAdded     *prometheus.CounterVec
	RewardsForfeited prometheus.Counter
	RewardIndex      prometheus.Gauge

	// Liquidation metrics
	LiquidationsTotal *prometheus.CounterVec
	LiquidationRepaid prometheus.Counter
	LiquidationSeized prometheus.Counter
	LiquidationFees   prometheus.Counter
	HealthFactor      prometheus.Histogram

	// Swap metrics
	SwapsTotal *prometheus.CounterVec
	SwapOutput *prometheus.CounterVec

	// Oracle metrics
	OraclePrice        *prometheus.GaugeVec
	OracleInvalidTotal *prometheus.CounterVec

	// Liquidation bot metrics
	BotScansTotal  prometheus.Counter
	BotScanLatency prometheus.Histogram
	BotUnhealthy   prometheus.Gauge
	BotSubmissions *prometheus.CounterVec

	// System metrics
	BlockHeight     prometheus.Gauge
	EndBlockLatency prometheus.Histogram
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// NewCollector creates a collector registered on reg. Use GetCollector for
// the process-wide instance.
func NewCollector(reg prometheus.Registerer) *Collector {
	return newCollector(reg)
}

func counter(subsystem, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

// newCollector creates a new metrics collector
func newCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	// Position metrics
	c.PositionOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "ops_total",
			Help:      "Position changes applied, by operation",
		},
		[]string{"op"},
	)

	c.PositionOpErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "errors_total",
			Help:      "Rejected position changes, by operation",
		},
		[]string{"op"},
	)

	c.IndexedAccounts = gauge("positions", "indexed_accounts", "Accounts in the position index")
	c.TotalCollateral = gauge("positions", "total_collateral", "Collateral held by the vault")
	c.TotalDebt = gauge("positions", "total_debt", "Outstanding stablecoin debt")

	// Reward drip metrics
	c.RewardsWithheld = gauge("drip", "withheld", "Rewards not yet released")
	c.RewardsReleased = counter("drip", "released_total", "Rewards released into the reward index")
	c.RewardsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drip",
			Name:      "added_total",
			Help:      "Rewards added to the drip, by source",
		},
		[]string{"source"},
	)
	c.RewardsForfeited = counter("drip", "forfeited_total", "Accrued rewards exceeding outstanding debt")
	c.RewardIndex = gauge("drip", "reward_index", "Cumulative reward per unit of collateral")

	// Liquidation metrics
	c.LiquidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidations",
			Name:      "total",
			Help:      "Total number of liquidations",
		},
		[]string{"type"},
	)
	c.LiquidationRepaid = counter("liquidations", "repaid_total", "Debt repaid by liquidators")
	c.LiquidationSeized = counter("liquidations", "seized_total", "Collateral seized from liquidated positions")
	c.LiquidationFees = counter("liquidations", "fees_total", "Collateral routed to the fee splitter")
	c.HealthFactor = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "liquidations",
			Name:      "health_factor",
			Help:      "Health factor of liquidated positions",
			Buckets:   []float64{0.5, 0.8, 1.0, 1.1, 1.15, 1.2},
		},
	)

	// Swap metrics
	c.SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swaps",
			Name:      "total",
			Help:      "Yield swaps executed, by adapter",
		},
		[]string{"adapter"},
	)
	c.SwapOutput = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swaps",
			Name:      "output_total",
			Help:      "Stablecoin received from swaps, by destination",
		},
		[]string{"destination"},
	)

	// Oracle metrics
	c.OraclePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "price",
			Help:      "Last valid oracle price",
		},
		[]string{"asset"},
	)
	c.OracleInvalidTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "invalid_total",
			Help:      "Reads that found a missing, zero or stale price",
		},
		[]string{"asset"},
	)

	// Liquidation bot metrics
	c.BotScansTotal = counter("bot", "scans_total", "Unhealthy account scans")
	c.BotScanLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "scan_latency_ms",
			Help:      "Scan latency in milliseconds",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
	c.BotUnhealthy = gauge("bot", "unhealthy_accounts", "Unhealthy accounts found in the last scan")
	c.BotSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "submissions_total",
			Help:      "Liquidation submissions, by status",
		},
		[]string{"status"},
	)

	// System metrics
	c.BlockHeight = gauge("system", "block_height", "Current block height")
	c.EndBlockLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "end_block_ms",
			Help:      "Vault EndBlocker latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100},
		},
	)

	c.registerAll(reg)

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll(reg prometheus.Registerer) {
	reg.MustRegister(
		c.PositionOpsTotal,
		c.PositionOpErrors,
		c.IndexedAccounts,
		c.TotalCollateral,
		c.TotalDebt,

		c.RewardsWithheld,
		c.RewardsReleased,
		c.RewardsAdded,
		c.RewardsForfeited,
		c.RewardIndex,

		c.LiquidationsTotal,
		c.LiquidationRepaid,
		c.LiquidationSeized,
		c.LiquidationFees,
		c.HealthFactor,

		c.SwapsTotal,
		c.SwapOutput,

		c.OraclePrice,
		c.OracleInvalidTotal,

		c.BotScansTotal,
		c.BotScanLatency,
		c.BotUnhealthy,
		c.BotSubmissions,

		c.BlockHeight,
		c.EndBlockLatency,
	)
}

// ============ Recording Helpers ============

// Scaled converts an integer amount with the given decimals to a float.
func Scaled(v *big.Int, decimals uint32) float64 {
	if v == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), new(big.Float).SetInt(scale)).Float64()
	return f
}

// Units converts an 18-decimal fixed-point amount to whole units.
func Units(v *big.Int) float64 {
	return Scaled(v, 18)
}

// RecordPositionOp records an applied or rejected position change
func (c *Collector) RecordPositionOp(op string, err error) {
	if err != nil {
		c.PositionOpErrors.WithLabelValues(op).Inc()
		return
	}
	c.PositionOpsTotal.WithLabelValues(op).Inc()
}

// RecordVaultTotals sets the aggregate vault gauges
func (c *Collector) RecordVaultTotals(accounts int, collateral, debt *big.Int) {
	c.IndexedAccounts.Set(float64(accounts))
	c.TotalCollateral.Set(Units(collateral))
	c.TotalDebt.Set(Units(debt))
}

// RecordDrip records a drip settlement
func (c *Collector) RecordDrip(released, withheld, index *big.Int) {
	if released != nil && released.Sign() > 0 {
		c.RewardsReleased.Add(Units(released))
	}
	c.RewardsWithheld.Set(Units(withheld))
	c.RewardIndex.Set(Units(index))
}

// RecordRewardsAdded records rewards entering the drip
func (c *Collector) RecordRewardsAdded(source string, amount *big.Int) {
	c.RewardsAdded.WithLabelValues(source).Add(Units(amount))
}

// RecordForfeit records accrued reward beyond a position's debt
func (c *Collector) RecordForfeit(amount *big.Int) {
	if amount != nil && amount.Sign() > 0 {
		c.RewardsForfeited.Add(Units(amount))
	}
}

// RecordLiquidation records a liquidation event
func (c *Collector) RecordLiquidation(liquidationType string, healthFactor, repaid, seized, fee *big.Int) {
	c.LiquidationsTotal.WithLabelValues(liquidationType).Inc()
	c.HealthFactor.Observe(Units(healthFactor))
	c.LiquidationRepaid.Add(Units(repaid))
	c.LiquidationSeized.Add(Units(seized))
	c.LiquidationFees.Add(Units(fee))
}

// RecordSwap records a yield swap and where its output went
func (c *Collector) RecordSwap(adapter string, burned, withheld *big.Int) {
	c.SwapsTotal.WithLabelValues(adapter).Inc()
	c.SwapOutput.WithLabelValues("burn").Add(Units(burned))
	c.SwapOutput.WithLabelValues("drip").Add(Units(withheld))
}

// RecordOraclePrice records a price read
func (c *Collector) RecordOraclePrice(asset string, valid bool, price float64) {
	if !valid {
		c.OracleInvalidTotal.WithLabelValues(asset).Inc()
		return
	}
	c.OraclePrice.WithLabelValues(asset).Set(price)
}

// RecordBotScan records a liquidation bot scan
func (c *Collector) RecordBotScan(unhealthy int, latencyMs float64) {
	c.BotScansTotal.Inc()
	c.BotUnhealthy.Set(float64(unhealthy))
	c.BotScanLatency.Observe(latencyMs)
}

// RecordBotSubmission records a liquidation submission outcome
func (c *Collector) RecordBotSubmission(status string) {
	c.BotSubmissions.WithLabelValues(status).Inc()
}

// RecordEndBlock records block height and EndBlocker latency
func (c *Collector) RecordEndBlock(blockHeight int64, latencyMs float64) {
	c.BlockHeight.Set(float64(blockHeight))
	c.EndBlockLatency.Observe(latencyMs)
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
