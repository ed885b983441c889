package liquidator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"

	vaulttypes "github.com/openalpha/tau-vault/x/vault/types"
)

// TxSubmitter defines the interface for submitting liquidations to the chain
type TxSubmitter interface {
	// SubmitLiquidation signs and broadcasts msg, returning the tx hash
	SubmitLiquidation(ctx context.Context, msg *vaulttypes.MsgLiquidate) (string, error)

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter records liquidations instead of broadcasting them
type MockSubmitter struct {
	mu              sync.Mutex
	msgs            []*vaulttypes.MsgLiquidate
	status          SubmitterStatus
	simulateFailure bool
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		msgs:   make([]*vaulttypes.MsgLiquidate, 0),
		status: SubmitterStatus{Connected: true},
	}
}

// SubmitLiquidation records msg (mock implementation)
func (s *MockSubmitter) SubmitLiquidation(ctx context.Context, msg *vaulttypes.MsgLiquidate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return "", fmt.Errorf("simulated failure")
	}

	s.msgs = append(s.msgs, msg)
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	return fmt.Sprintf("MOCK%08d", len(s.msgs)), nil
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submitted returns every recorded liquidation (for testing)
func (s *MockSubmitter) Submitted() []*vaulttypes.MsgLiquidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*vaulttypes.MsgLiquidate, len(s.msgs))
	copy(result, s.msgs)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// ChainSubmitterConfig holds configuration for ChainSubmitter
type ChainSubmitterConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultChainSubmitterConfig returns default configuration
func DefaultChainSubmitterConfig() ChainSubmitterConfig {
	return ChainSubmitterConfig{
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// ChainSubmitter signs liquidations with the key named in clientCtx and
// broadcasts them in sync mode.
type ChainSubmitter struct {
	clientCtx client.Context
	config    ChainSubmitterConfig
	logger    log.Logger

	mu      sync.Mutex
	factory tx.Factory
	status  SubmitterStatus
}

// NewChainSubmitter creates a submitter. clientCtx must carry a keyring,
// a from name and an RPC client.
func NewChainSubmitter(clientCtx client.Context, factory tx.Factory, config ChainSubmitterConfig, logger log.Logger) *ChainSubmitter {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	return &ChainSubmitter{
		clientCtx: clientCtx,
		config:    config,
		logger:    logger.With("component", "submitter"),
		factory:   factory,
		status:    SubmitterStatus{Connected: true},
	}
}

// SubmitLiquidation submits msg with retry logic
func (s *ChainSubmitter) SubmitLiquidation(ctx context.Context, msg *vaulttypes.MsgLiquidate) (string, error) {
	var lastErr error
	for attempt := 0; attempt < s.config.RetryAttempts; attempt++ {
		hash, err := s.broadcast(ctx, msg)
		if err == nil {
			s.mu.Lock()
			s.status.TotalSubmissions++
			s.status.LastSubmitTime = time.Now()
			s.mu.Unlock()
			return hash, nil
		}
		lastErr = err
		s.logger.Warn("liquidation submission failed", "attempt", attempt+1, "account", msg.Account, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.config.RetryDelay):
		}
	}

	s.mu.Lock()
	s.status.FailedSubmissions++
	s.status.LastError = lastErr.Error()
	s.mu.Unlock()
	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// broadcast signs and sends a single tx. The account sequence is tracked
// locally between successful broadcasts and refetched after a failure.
func (s *ChainSubmitter) broadcast(ctx context.Context, msg *vaulttypes.MsgLiquidate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txf, err := s.factory.Prepare(s.clientCtx)
	if err != nil {
		return "", fmt.Errorf("prepare tx factory: %w", err)
	}
	builder, err := txf.BuildUnsignedTx(msg)
	if err != nil {
		return "", fmt.Errorf("build tx: %w", err)
	}
	if err := tx.Sign(ctx, txf, s.clientCtx.FromName, builder, true); err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	txBytes, err := s.clientCtx.TxConfig.TxEncoder()(builder.GetTx())
	if err != nil {
		return "", fmt.Errorf("encode tx: %w", err)
	}

	res, err := s.clientCtx.BroadcastTx(txBytes)
	if err != nil {
		s.factory = s.factory.WithSequence(0)
		return "", fmt.Errorf("broadcast tx: %w", err)
	}
	if res.Code != 0 {
		s.factory = s.factory.WithSequence(0)
		return res.TxHash, fmt.Errorf("tx %s rejected with code %d: %s", res.TxHash, res.Code, res.RawLog)
	}

	s.factory = txf.WithSequence(txf.Sequence() + 1)
	return res.TxHash, nil
}

// GetStatus returns the submitter status
func (s *ChainSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
