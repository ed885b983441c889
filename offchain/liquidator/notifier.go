package liquidator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject liquidation notices are published on
const DefaultSubject = "tauvault.liquidations"

// LiquidationNotice announces a liquidation the bot submitted
type LiquidationNotice struct {
	Account        string    `json:"account"`
	Liquidator     string    `json:"liquidator"`
	TxHash         string    `json:"tx_hash"`
	HealthFactor   string    `json:"health_factor"`
	Repay          string    `json:"repay"`
	ExpectedSeized string    `json:"expected_seized"`
	MinCollateral  string    `json:"min_collateral_out"`
	Wipeout        bool      `json:"wipeout"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Notifier publishes liquidation notices to downstream consumers
type Notifier interface {
	Notify(ctx context.Context, notice LiquidationNotice) error
	Close() error
}

// publisher is the subset of *nats.Conn the notifier uses
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes notices as JSON on a NATS subject
type NATSNotifier struct {
	conn    publisher
	close   func()
	subject string
}

// NewNATSNotifier connects to url and publishes on subject
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url, nats.Name("tauvault-liquidator"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return &NATSNotifier{conn: nc, close: nc.Close, subject: subject}, nil
}

// Notify publishes notice and waits for the server to acknowledge the flush
func (n *NATSNotifier) Notify(ctx context.Context, notice LiquidationNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return n.conn.FlushWithContext(ctx)
}

// Close closes the NATS connection
func (n *NATSNotifier) Close() error {
	if n.close != nil {
		n.close()
	}
	return nil
}

// MemoryNotifier keeps notices in memory; used when NATS is disabled
type MemoryNotifier struct {
	mu      sync.Mutex
	notices []LiquidationNotice
}

// NewMemoryNotifier creates an empty in-memory notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (m *MemoryNotifier) Notify(_ context.Context, notice LiquidationNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice)
	return nil
}

func (m *MemoryNotifier) Close() error { return nil }

// Notices returns a copy of every recorded notice
func (m *MemoryNotifier) Notices() []LiquidationNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LiquidationNotice, len(m.notices))
	copy(out, m.notices)
	return out
}
