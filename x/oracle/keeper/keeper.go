package keeper

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/oracle/types"
)

// Store key prefixes for oracle
var (
	OraclePriceKeyPrefix  = []byte{0x41}
	OracleConfigKeyPrefix = []byte{0x42}
)

// Keeper stores asset prices pushed by the oracle authority.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string
	logger    log.Logger
}

// NewKeeper creates a new oracle keeper
func NewKeeper(storeKey storetypes.StoreKey, authority string, logger log.Logger) *Keeper {
	return &Keeper{
		storeKey:  storeKey,
		authority: authority,
		logger:    logger.With("module", "x/oracle"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the address allowed to push prices
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// SetOracleConfig saves oracle configuration
func (k *Keeper) SetOracleConfig(ctx sdk.Context, config types.OracleConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(config)
	if err != nil {
		return err
	}
	k.GetStore(ctx).Set(OracleConfigKeyPrefix, bz)
	return nil
}

// GetOracleConfig retrieves oracle configuration
func (k *Keeper) GetOracleConfig(ctx sdk.Context) types.OracleConfig {
	bz := k.GetStore(ctx).Get(OracleConfigKeyPrefix)
	if bz == nil {
		return types.DefaultOracleConfig()
	}
	var config types.OracleConfig
	if err := json.Unmarshal(bz, &config); err != nil {
		return types.DefaultOracleConfig()
	}
	return config
}

// SetPrice records a new price for asset. Only the authority may push prices.
func (k *Keeper) SetPrice(ctx sdk.Context, sender, asset string, value math.Int, decimals uint32) error {
	if sender != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, sender)
	}
	if asset == "" {
		return errors.Wrap(types.ErrInvalidPrice, "empty asset")
	}
	if value.IsNil() || !value.IsPositive() {
		return errors.Wrapf(types.ErrInvalidPrice, "price must be positive")
	}
	if max := k.GetOracleConfig(ctx).MaxDecimals; decimals > max {
		return errors.Wrapf(types.ErrInvalidPrice, "decimals %d exceed %d", decimals, max)
	}

	k.setPriceRecord(ctx, types.PriceRecord{
		Asset:     asset,
		Value:     value,
		Decimals:  decimals,
		UpdatedAt: ctx.BlockTime(),
		Height:    ctx.BlockHeight(),
	})
	k.logger.Debug("price updated", "asset", asset, "value", value.String(), "decimals", decimals)
	return nil
}

func (k *Keeper) setPriceRecord(ctx sdk.Context, record types.PriceRecord) {
	bz, _ := json.Marshal(record)
	k.GetStore(ctx).Set(append(OraclePriceKeyPrefix, []byte(record.Asset)...), bz)
}

// GetPriceRecord returns the raw stored price for asset.
func (k *Keeper) GetPriceRecord(ctx sdk.Context, asset string) (types.PriceRecord, bool) {
	bz := k.GetStore(ctx).Get(append(OraclePriceKeyPrefix, []byte(asset)...))
	if bz == nil {
		return types.PriceRecord{}, false
	}
	var record types.PriceRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return types.PriceRecord{}, false
	}
	return record, true
}

// GetPrice returns the current price of asset. The result is flagged invalid
// when no price exists, the value is zero, or the record is stale.
func (k *Keeper) GetPrice(ctx sdk.Context, asset string) types.Price {
	record, found := k.GetPriceRecord(ctx, asset)
	if !found || record.Value.IsNil() || record.Value.IsZero() {
		return types.InvalidPrice()
	}
	price := types.Price{Value: record.Value, Decimals: record.Decimals, Valid: true}
	if ctx.BlockTime().Sub(record.UpdatedAt) > k.GetOracleConfig(ctx).MaxPriceAge {
		price.Valid = false
	}
	return price
}

// GetAllPrices returns every stored price record
func (k *Keeper) GetAllPrices(ctx sdk.Context) []types.PriceRecord {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), OraclePriceKeyPrefix)
	defer iterator.Close()

	var records []types.PriceRecord
	for ; iterator.Valid(); iterator.Next() {
		var record types.PriceRecord
		if err := json.Unmarshal(iterator.Value(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// InitGenesis loads oracle state from genesis.
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetOracleConfig(ctx, gs.Config); err != nil {
		return err
	}
	for _, record := range gs.Prices {
		k.setPriceRecord(ctx, record)
	}
	return nil
}

// ExportGenesis exports oracle state.
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return &types.GenesisState{
		Config: k.GetOracleConfig(ctx),
		Prices: k.GetAllPrices(ctx),
	}
}
