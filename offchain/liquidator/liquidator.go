// Package liquidator runs an offchain bot that scans the vault for
// undercollateralised accounts and submits liquidations against them.
//
// The vault message types are not yet registered with the app's message
// router, so transactions built by ChainSubmitter are rejected on chain.
// Until then the live liquidation path is the vault keeper's Liquidate;
// MockSubmitter is the submitter to use against a local keeper.
package liquidator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/openalpha/tau-vault/metrics"
	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
	vaulttypes "github.com/openalpha/tau-vault/x/vault/types"
)

const bpsDenominator = 10_000

var errNothingToRepay = errors.New("nothing to repay")

// Config holds the bot configuration
type Config struct {
	Liquidator   string        // bech32 address that signs liquidations
	ScanInterval time.Duration // time between scans
	PageSize     uint64        // accounts fetched per FetchUnhealthyAccounts call
	MaxPerScan   int           // liquidations submitted per scan, 0 for no cap
	Cooldown     time.Duration // wait before resubmitting against an account
	SlippageBps  uint32        // tolerated shortfall on the liquidator's collateral share
	MaxRepay     math.Int      // per-liquidation repay cap, zero or nil for none
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		ScanInterval: 6 * time.Second,
		PageSize:     200,
		MaxPerScan:   20,
		Cooldown:     time.Minute,
		SlippageBps:  50,
		MaxRepay:     math.ZeroInt(),
	}
}

// Validate checks the configuration bounds
func (c Config) Validate() error {
	if c.Liquidator == "" {
		return fmt.Errorf("liquidator address required")
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive")
	}
	if c.PageSize == 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.SlippageBps >= bpsDenominator {
		return fmt.Errorf("slippage %d bps must be below %d", c.SlippageBps, bpsDenominator)
	}
	if !c.MaxRepay.IsNil() && c.MaxRepay.IsNegative() {
		return fmt.Errorf("max repay must not be negative")
	}
	return nil
}

// Plan is a liquidation the bot intends to submit
type Plan struct {
	Account         vaulttypes.AccountHealth
	Repay           math.Int
	MinCollateral   math.Int
	ExpectedSeized  math.Int
	ExpectedShare   math.Int
	ExpectedWipeout bool
}

// ScanResult summarises one pass over the account list
type ScanResult struct {
	Scanned   uint64
	Unhealthy int
	Submitted int
	Skipped   int
	Failed    int
}

// Bot is the offchain liquidation bot
type Bot struct {
	config    Config
	reader    VaultReader
	submitter TxSubmitter
	notifier  Notifier
	cache     *CooldownCache
	metrics   *metrics.Collector
	logger    log.Logger
	now       func() time.Time

	mu   sync.Mutex
	last ScanResult

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBot creates a new liquidation bot
func NewBot(config Config, reader VaultReader, submitter TxSubmitter, notifier Notifier, logger log.Logger) *Bot {
	if submitter == nil {
		submitter = NewMockSubmitter()
	}
	if notifier == nil {
		notifier = NewMemoryNotifier()
	}
	if config.MaxRepay.IsNil() {
		config.MaxRepay = math.ZeroInt()
	}
	return &Bot{
		config:    config,
		reader:    reader,
		submitter: submitter,
		notifier:  notifier,
		cache:     NewCooldownCache(config.Cooldown),
		metrics:   metrics.GetCollector(),
		logger:    logger.With("module", "liquidator"),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs scans on a ticker until ctx is done or Stop is called
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting liquidation bot",
		"liquidator", b.config.Liquidator,
		"interval", b.config.ScanInterval.String(),
		"page_size", b.config.PageSize,
	)

	b.wg.Add(1)
	go b.scanLoop(ctx)
	return nil
}

// Stop stops the bot and waits for the running scan to finish. Calls
// after the first are no-ops.
func (b *Bot) Stop() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.wg.Wait()
		b.logger.Info("liquidation bot stopped")
		err = b.notifier.Close()
	})
	return err
}

func (b *Bot) scanLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		case <-ticker.C:
			if _, err := b.Scan(ctx); err != nil {
				b.logger.Error("scan failed", "error", err)
			}
		}
	}
}

// Scan pages through every indexed account, then liquidates the unhealthy
// ones lowest health factor first.
func (b *Bot) Scan(ctx context.Context) (ScanResult, error) {
	timer := metrics.NewTimer()
	var result ScanResult

	count, err := b.reader.AccountCount(ctx)
	if err != nil {
		return result, fmt.Errorf("account count: %w", err)
	}
	price, err := b.reader.CollateralPrice(ctx)
	if err != nil {
		return result, fmt.Errorf("collateral price: %w", err)
	}
	if err := vaulttypes.ValidatePrice(price); err != nil {
		return result, err
	}

	candidates := make([]vaulttypes.AccountHealth, 0)
	for start := uint64(0); start < count; start += b.config.PageSize {
		end := start + b.config.PageSize
		if end > count {
			end = count
		}
		page, err := b.reader.FetchUnhealthyAccounts(ctx, start, end)
		if err != nil {
			return result, fmt.Errorf("fetch unhealthy [%d, %d): %w", start, end, err)
		}
		candidates = append(candidates, page...)
	}
	result.Scanned = count
	result.Unhealthy = len(candidates)

	// pages are each sorted; merge them into a single ranking
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].HealthFactor.LT(candidates[j].HealthFactor)
	})

	now := b.now()
	b.cache.Prune(now)
	for _, account := range candidates {
		if b.config.MaxPerScan > 0 && result.Submitted >= b.config.MaxPerScan {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if b.cache.Active(account.Account, now) {
			result.Skipped++
			continue
		}
		if err := b.liquidate(ctx, account, price, now); err != nil {
			if errors.Is(err, errNothingToRepay) || errors.Is(err, vaulttypes.ErrInsufficientLiquidity) {
				result.Skipped++
				continue
			}
			result.Failed++
			continue
		}
		result.Submitted++
	}

	b.metrics.RecordBotScan(result.Unhealthy, timer.ElapsedMs())
	b.mu.Lock()
	b.last = result
	b.mu.Unlock()

	if result.Unhealthy > 0 {
		b.logger.Info("scan complete",
			"accounts", result.Scanned,
			"unhealthy", result.Unhealthy,
			"submitted", result.Submitted,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (b *Bot) liquidate(ctx context.Context, account vaulttypes.AccountHealth, price oracletypes.Price, now time.Time) error {
	plan, err := b.PlanLiquidation(account, price)
	if err != nil {
		if !errors.Is(err, errNothingToRepay) {
			b.logger.Warn("cannot plan liquidation", "account", account.Account, "error", err)
		}
		return err
	}
	if err := b.reader.CheckLiquidity(ctx, plan.ExpectedSeized); err != nil {
		b.logger.Warn("vault lacks collateral for liquidation", "account", account.Account, "error", err)
		return err
	}

	msg := &vaulttypes.MsgLiquidate{
		Liquidator:       b.config.Liquidator,
		Account:          account.Account,
		Amount:           plan.Repay.String(),
		MinCollateralOut: plan.MinCollateral.String(),
	}
	hash, err := b.submitter.SubmitLiquidation(ctx, msg)
	if err != nil {
		b.metrics.RecordBotSubmission("failed")
		b.logger.Error("liquidation submission failed", "account", account.Account, "repay", msg.Amount, "error", err)
		return err
	}
	b.metrics.RecordBotSubmission("submitted")
	b.cache.Mark(account.Account, now)

	b.logger.Info("liquidation submitted",
		"account", account.Account,
		"repay", msg.Amount,
		"min_out", msg.MinCollateralOut,
		"health_factor", account.HealthFactor.String(),
		"tx", hash,
	)

	notice := LiquidationNotice{
		Account:        account.Account,
		Liquidator:     b.config.Liquidator,
		TxHash:         hash,
		HealthFactor:   account.HealthFactor.String(),
		Repay:          plan.Repay.String(),
		ExpectedSeized: plan.ExpectedSeized.String(),
		MinCollateral:  plan.MinCollateral.String(),
		Wipeout:        plan.ExpectedWipeout,
		SubmittedAt:    now,
	}
	if err := b.notifier.Notify(ctx, notice); err != nil {
		b.logger.Warn("liquidation notice not published", "account", account.Account, "error", err)
	}
	return nil
}

// PlanLiquidation sizes the repayment for account and previews the outcome
// with the same formulas the chain applies.
func (b *Bot) PlanLiquidation(account vaulttypes.AccountHealth, price oracletypes.Price) (Plan, error) {
	repay := account.MaxLiquidatable
	if b.config.MaxRepay.IsPositive() {
		repay = vaulttypes.MinInt(repay, b.config.MaxRepay)
	}
	if repay.IsNil() || !repay.IsPositive() {
		return Plan{}, errNothingToRepay
	}

	pos := vaulttypes.Position{
		Owner:                 account.Account,
		Collateral:            account.Collateral,
		Debt:                  account.Debt,
		RewardIndexCheckpoint: math.ZeroInt(),
	}
	preview, err := vaulttypes.ComputeLiquidation(pos, price, repay, math.ZeroInt())
	if err != nil {
		return Plan{}, err
	}

	keep := math.NewInt(int64(bpsDenominator - b.config.SlippageBps))
	minOut := preview.LiquidatorShare.Mul(keep).Quo(math.NewInt(bpsDenominator))

	return Plan{
		Account:         account,
		Repay:           repay,
		MinCollateral:   minOut,
		ExpectedSeized:  preview.CollateralLiquidated,
		ExpectedShare:   preview.LiquidatorShare,
		ExpectedWipeout: preview.Wipeout(),
	}, nil
}

// Stats returns the latest scan result and the cooldown cache size
func (b *Bot) Stats() (ScanResult, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.cache.Len()
}
