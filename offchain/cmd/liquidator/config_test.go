package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liquidator.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
chain_id = "tauvault-test"
submitter = "chain"
retry_delay = "250ms"

[scan]
interval = "2s"
page_size = 50
max_repay = "1000000"

[nats]
url = "nats://localhost:4222"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "tauvault-test", cfg.ChainID)
	require.Equal(t, "chain", cfg.Submitter)
	require.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	require.Equal(t, 2*time.Second, cfg.Scan.Interval)
	require.Equal(t, uint64(50), cfg.Scan.PageSize)
	require.Equal(t, "nats://localhost:4222", cfg.Nats.URL)
	// untouched keys keep their defaults
	require.Equal(t, "tauvault.liquidations", cfg.Nats.Subject)
	require.Equal(t, time.Minute, cfg.Scan.Cooldown)

	bot, err := cfg.BotConfig("cosmos1liquidator")
	require.NoError(t, err)
	require.Equal(t, "1000000", bot.MaxRepay.String())
	require.Equal(t, uint64(50), bot.PageSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "chian_id = \"typo\"\n"))
	require.ErrorContains(t, err, "unknown config keys")
}

func TestBotConfigInvalidMaxRepay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.MaxRepay = "lots"
	_, err := cfg.BotConfig("cosmos1liquidator")
	require.ErrorContains(t, err, "invalid max_repay")
}
