package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"cosmossdk.io/math"
	"github.com/BurntSushi/toml"

	"github.com/openalpha/tau-vault/offchain/liquidator"
)

// Config holds the liquidator process configuration
type Config struct {
	ChainID        string        `toml:"chain_id"`
	NodeURI        string        `toml:"node"`
	KeyringBackend string        `toml:"keyring_backend"`
	KeyringDir     string        `toml:"keyring_dir"`
	KeyName        string        `toml:"key_name"`
	Submitter      string        `toml:"submitter"` // "mock" or "chain"
	GasLimit       uint64        `toml:"gas_limit"`
	GasPrices      string        `toml:"gas_prices"`
	RetryAttempts  int           `toml:"retry_attempts"`
	RetryDelay     time.Duration `toml:"retry_delay"`
	MetricsAddr    string        `toml:"metrics_addr"`

	Scan ScanConfig `toml:"scan"`
	Nats NatsConfig `toml:"nats"`
}

// ScanConfig controls how accounts are scanned and sized
type ScanConfig struct {
	Interval    time.Duration `toml:"interval"`
	PageSize    uint64        `toml:"page_size"`
	MaxPerScan  int           `toml:"max_per_scan"`
	Cooldown    time.Duration `toml:"cooldown"`
	SlippageBps uint32        `toml:"slippage_bps"`
	MaxRepay    string        `toml:"max_repay"`
}

// NatsConfig configures liquidation notices; an empty URL disables NATS
type NatsConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	bot := liquidator.DefaultConfig()
	return &Config{
		ChainID:        "tauvault-1",
		NodeURI:        "tcp://localhost:26657",
		KeyringBackend: "test",
		KeyringDir:     ".tauvault",
		KeyName:        "liquidator",
		Submitter:      "mock",
		GasLimit:       400_000,
		GasPrices:      "0.025tau",
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MetricsAddr:    ":9102",
		Scan: ScanConfig{
			Interval:    bot.ScanInterval,
			PageSize:    bot.PageSize,
			MaxPerScan:  bot.MaxPerScan,
			Cooldown:    bot.Cooldown,
			SlippageBps: bot.SlippageBps,
			MaxRepay:    "0",
		},
		Nats: NatsConfig{Subject: liquidator.DefaultSubject},
	}
}

// LoadConfig decodes path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, nil
}

// BotConfig converts the scan section into a bot configuration
func (c *Config) BotConfig(liquidatorAddr string) (liquidator.Config, error) {
	maxRepay, ok := math.NewIntFromString(c.Scan.MaxRepay)
	if !ok {
		return liquidator.Config{}, fmt.Errorf("invalid max_repay %q", c.Scan.MaxRepay)
	}
	bot := liquidator.Config{
		Liquidator:   liquidatorAddr,
		ScanInterval: c.Scan.Interval,
		PageSize:     c.Scan.PageSize,
		MaxPerScan:   c.Scan.MaxPerScan,
		Cooldown:     c.Scan.Cooldown,
		SlippageBps:  c.Scan.SlippageBps,
		MaxRepay:     maxRepay,
	}
	return bot, bot.Validate()
}
