package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/tau-vault/app"
	"github.com/openalpha/tau-vault/metrics"
	"github.com/openalpha/tau-vault/offchain/liquidator"
	"github.com/openalpha/tau-vault/x/vault/client/cli"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	nodeURI := flag.String("node", "", "CometBFT RPC endpoint")
	submitterType := flag.String("submitter", "", "Submitter type (mock or chain)")
	natsURL := flag.String("nats", "", "NATS server URL; empty disables notices")
	metricsAddr := flag.String("metrics", "", "Prometheus listen address")
	flag.Parse()

	logger := log.NewLogger(os.Stderr)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *nodeURI != "" {
		cfg.NodeURI = *nodeURI
	}
	if *submitterType != "" {
		cfg.Submitter = *submitterType
	}
	if *natsURL != "" {
		cfg.Nats.URL = *natsURL
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("liquidator exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *Config, logger log.Logger) error {
	clientCtx, err := newClientContext(cfg)
	if err != nil {
		return err
	}

	botConfig, err := cfg.BotConfig(clientCtx.GetFromAddress().String())
	if err != nil {
		return fmt.Errorf("invalid scan config: %w", err)
	}

	var submitter liquidator.TxSubmitter
	switch cfg.Submitter {
	case "chain":
		factory := tx.Factory{}.
			WithChainID(cfg.ChainID).
			WithKeybase(clientCtx.Keyring).
			WithTxConfig(clientCtx.TxConfig).
			WithAccountRetriever(clientCtx.AccountRetriever).
			WithGas(cfg.GasLimit).
			WithGasPrices(cfg.GasPrices)
		submitter = liquidator.NewChainSubmitter(clientCtx, factory, liquidator.ChainSubmitterConfig{
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    cfg.RetryDelay,
		}, logger)
	case "mock":
		submitter = liquidator.NewMockSubmitter()
	default:
		return fmt.Errorf("unknown submitter %q", cfg.Submitter)
	}

	var notifier liquidator.Notifier = liquidator.NewMemoryNotifier()
	if cfg.Nats.URL != "" {
		nn, err := liquidator.NewNATSNotifier(cfg.Nats.URL, cfg.Nats.Subject)
		if err != nil {
			return err
		}
		notifier = nn
	}

	reader := liquidator.NewChainReader(cli.NewStoreQuerier(clientCtx))
	bot := liquidator.NewBot(botConfig, reader, submitter, notifier, logger)

	logger.Info("tauvault liquidator",
		"chain_id", cfg.ChainID,
		"node", cfg.NodeURI,
		"liquidator", botConfig.Liquidator,
		"submitter", cfg.Submitter,
		"nats", cfg.Nats.URL,
		"metrics", cfg.MetricsAddr,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bot.Start(ctx); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	statsTicker := time.NewTicker(time.Minute)
	defer statsTicker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down")
			cancel()
			if err := bot.Stop(); err != nil {
				logger.Error("failed to stop bot", "error", err)
			}
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return server.Shutdown(shutdownCtx)
		case <-statsTicker.C:
			last, cooling := bot.Stats()
			status := submitter.GetStatus()
			logger.Info("stats",
				"unhealthy", last.Unhealthy,
				"submitted", last.Submitted,
				"cooling_down", cooling,
				"total_submissions", status.TotalSubmissions,
				"failed_submissions", status.FailedSubmissions,
			)
		}
	}
}

// newClientContext builds a client context that can query the node and sign
// with the configured key.
func newClientContext(cfg *Config) (client.Context, error) {
	encodingConfig := app.MakeEncodingConfig()

	kr, err := keyring.New(app.Name, cfg.KeyringBackend, cfg.KeyringDir, os.Stdin, encodingConfig.Codec)
	if err != nil {
		return client.Context{}, fmt.Errorf("open keyring: %w", err)
	}
	record, err := kr.Key(cfg.KeyName)
	if err != nil {
		return client.Context{}, fmt.Errorf("load key %s: %w", cfg.KeyName, err)
	}
	addr, err := record.GetAddress()
	if err != nil {
		return client.Context{}, err
	}

	rpc, err := client.NewClientFromNode(cfg.NodeURI)
	if err != nil {
		return client.Context{}, fmt.Errorf("connect to %s: %w", cfg.NodeURI, err)
	}

	return client.Context{}.
		WithCodec(encodingConfig.Codec).
		WithInterfaceRegistry(encodingConfig.InterfaceRegistry).
		WithTxConfig(encodingConfig.TxConfig).
		WithLegacyAmino(encodingConfig.Amino).
		WithAccountRetriever(authtypes.AccountRetriever{}).
		WithKeyring(kr).
		WithFromName(cfg.KeyName).
		WithFromAddress(addr).
		WithChainID(cfg.ChainID).
		WithNodeURI(cfg.NodeURI).
		WithClient(rpc).
		WithBroadcastMode(flags.BroadcastSync), nil
}
