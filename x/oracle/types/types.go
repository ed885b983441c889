package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

const (
	ModuleName = "oracle"
	StoreKey   = ModuleName
)

var (
	ErrUnauthorized  = errors.Register(ModuleName, 1, "unauthorized price update")
	ErrInvalidPrice  = errors.Register(ModuleName, 2, "invalid price")
	ErrInvalidConfig = errors.Register(ModuleName, 3, "invalid oracle configuration")
)

// Price is the view of an asset price handed to consumers. Valid is false
// when the price is missing, zero or older than the configured max age.
type Price struct {
	Value    math.Int `json:"value"`
	Decimals uint32   `json:"decimals"`
	Valid    bool     `json:"valid"`
}

// InvalidPrice returns a zero price flagged invalid.
func InvalidPrice() Price {
	return Price{Value: math.ZeroInt()}
}

// PriceRecord is the stored form of an asset price.
type PriceRecord struct {
	Asset     string    `json:"asset"`
	Value     math.Int  `json:"value"`
	Decimals  uint32    `json:"decimals"`
	UpdatedAt time.Time `json:"updated_at"`
	Height    int64     `json:"height"`
}

// OracleConfig contains oracle configuration
type OracleConfig struct {
	MaxPriceAge time.Duration `json:"max_price_age"` // price older than this is stale
	MaxDecimals uint32        `json:"max_decimals"`
}

// DefaultOracleConfig returns default oracle configuration
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		MaxPriceAge: time.Hour,
		MaxDecimals: 36,
	}
}

// Validate checks the configuration bounds.
func (c OracleConfig) Validate() error {
	if c.MaxPriceAge <= 0 {
		return errors.Wrap(ErrInvalidConfig, "max price age must be positive")
	}
	if c.MaxDecimals == 0 || c.MaxDecimals > 36 {
		return errors.Wrapf(ErrInvalidConfig, "max decimals %d out of range", c.MaxDecimals)
	}
	return nil
}

// GenesisState is the oracle genesis.
type GenesisState struct {
	Config OracleConfig  `json:"config"`
	Prices []PriceRecord `json:"prices"`
}

// DefaultGenesis returns an empty oracle genesis with default config.
func DefaultGenesis() *GenesisState {
	return &GenesisState{Config: DefaultOracleConfig()}
}

// Validate checks the config and every seeded price.
func (gs GenesisState) Validate() error {
	if err := gs.Config.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(gs.Prices))
	for _, p := range gs.Prices {
		if p.Asset == "" || seen[p.Asset] {
			return errors.Wrapf(ErrInvalidPrice, "asset %q", p.Asset)
		}
		seen[p.Asset] = true
		if p.Value.IsNil() || !p.Value.IsPositive() {
			return errors.Wrapf(ErrInvalidPrice, "%s price must be positive", p.Asset)
		}
		if p.Decimals > gs.Config.MaxDecimals {
			return errors.Wrapf(ErrInvalidPrice, "%s decimals %d exceed %d", p.Asset, p.Decimals, gs.Config.MaxDecimals)
		}
	}
	return nil
}
