package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	oraclekeeper "github.com/openalpha/tau-vault/x/oracle/keeper"
	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
	"github.com/openalpha/tau-vault/x/vault/keeper"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// StoreQuerier reads vault state straight from the node's committed store.
// Health figures are computed locally with the same formulas the keeper uses.
type StoreQuerier struct {
	clientCtx client.Context
	now       func() time.Time
}

// NewStoreQuerier returns a querier bound to clientCtx
func NewStoreQuerier(clientCtx client.Context) *StoreQuerier {
	return &StoreQuerier{clientCtx: clientCtx, now: time.Now}
}

func (q *StoreQuerier) get(storeName string, key []byte) ([]byte, error) {
	bz, _, err := q.clientCtx.QueryStore(key, storeName)
	if err != nil {
		return nil, fmt.Errorf("query %s store: %w", storeName, err)
	}
	return bz, nil
}

// Position returns the position of owner, zeroed if none is stored
func (q *StoreQuerier) Position(owner string) (types.Position, error) {
	if _, err := sdk.AccAddressFromBech32(owner); err != nil {
		return types.Position{}, fmt.Errorf("invalid address: %w", err)
	}
	key := append(append([]byte{}, keeper.PositionKeyPrefix...), []byte(owner)...)
	bz, err := q.get(types.StoreKey, key)
	if err != nil || bz == nil {
		return types.NewPosition(owner), err
	}
	var pos types.Position
	if err := json.Unmarshal(bz, &pos); err != nil {
		return types.Position{}, err
	}
	return pos, nil
}

// Params returns the module parameters
func (q *StoreQuerier) Params() (types.Params, error) {
	bz, err := q.get(types.StoreKey, keeper.ParamsKey)
	if err != nil || bz == nil {
		return types.DefaultParams(), err
	}
	var params types.Params
	err = json.Unmarshal(bz, &params)
	return params, err
}

// CollateralPrice returns the collateral price with the oracle's staleness
// rule applied against the local clock.
func (q *StoreQuerier) CollateralPrice() (oracletypes.Price, oracletypes.PriceRecord, error) {
	var record oracletypes.PriceRecord
	params, err := q.Params()
	if err != nil {
		return oracletypes.Price{}, record, err
	}

	key := append(append([]byte{}, oraclekeeper.OraclePriceKeyPrefix...), []byte(params.CollateralDenom)...)
	bz, err := q.get(oracletypes.StoreKey, key)
	if err != nil {
		return oracletypes.Price{}, record, err
	}
	if bz == nil {
		return oracletypes.InvalidPrice(), record, nil
	}
	if err := json.Unmarshal(bz, &record); err != nil {
		return oracletypes.Price{}, record, err
	}

	config := oracletypes.DefaultOracleConfig()
	if bz, err := q.get(oracletypes.StoreKey, oraclekeeper.OracleConfigKeyPrefix); err == nil && bz != nil {
		if err := json.Unmarshal(bz, &config); err != nil {
			return oracletypes.Price{}, record, err
		}
	}

	price := oracletypes.Price{
		Value:    record.Value,
		Decimals: record.Decimals,
		Valid:    !record.Value.IsNil() && record.Value.IsPositive(),
	}
	if q.now().Sub(record.UpdatedAt) > config.MaxPriceAge {
		price.Valid = false
	}
	return price, record, nil
}

// AccountCount returns the number of indexed accounts
func (q *StoreQuerier) AccountCount() (uint64, error) {
	bz, err := q.get(types.StoreKey, keeper.AccountCountKey)
	if err != nil || bz == nil {
		return 0, err
	}
	return sdk.BigEndianToUint64(bz), nil
}

// AccountAt returns the owner stored at index
func (q *StoreQuerier) AccountAt(index uint64) (string, error) {
	key := append(append([]byte{}, keeper.AccountIndexKeyPrefix...), sdk.Uint64ToBigEndian(index)...)
	bz, err := q.get(types.StoreKey, key)
	if err != nil {
		return "", err
	}
	if bz == nil {
		return "", types.ErrIndexOutOfBound.Wrapf("index %d", index)
	}
	return string(bz), nil
}

// Drip returns the reward drip state
func (q *StoreQuerier) Drip() (types.DripState, error) {
	state := types.NewDripState()
	bz, err := q.get(types.StoreKey, keeper.DripStateKey)
	if err != nil || bz == nil {
		return state, err
	}
	err = json.Unmarshal(bz, &state)
	return state, err
}

// SettledPosition returns owner's position with the reward a drip settle
// now would apply already taken off its debt.
func (q *StoreQuerier) SettledPosition(owner string) (types.Position, error) {
	pos, err := q.Position(owner)
	if err != nil {
		return types.Position{}, err
	}
	cumulative, err := q.projectedCumulative()
	if err != nil {
		return types.Position{}, err
	}
	return types.SettledPosition(pos, cumulative), nil
}

func (q *StoreQuerier) projectedCumulative() (math.Int, error) {
	state, err := q.Drip()
	if err != nil {
		return math.Int{}, err
	}
	params, err := q.Params()
	if err != nil {
		return math.Int{}, err
	}
	return state.ProjectedCumulative(q.now().Unix(), params.DripDuration), nil
}

// Fee returns the fee percentage stored under key, zero if unset
func (q *StoreQuerier) Fee(key string) (math.Int, error) {
	perc := math.ZeroInt()
	bz, err := q.get(types.StoreKey, append(append([]byte{}, keeper.FeeKeyPrefix...), []byte(key)...))
	if err != nil || bz == nil {
		return perc, err
	}
	err = perc.Unmarshal(bz)
	return perc, err
}

// Status returns the pause flag and the total outstanding debt
func (q *StoreQuerier) Status() (bool, math.Int, error) {
	paused, err := q.get(types.StoreKey, keeper.PausedKey)
	if err != nil {
		return false, math.Int{}, err
	}
	total := math.ZeroInt()
	bz, err := q.get(types.StoreKey, keeper.TotalDebtKey)
	if err != nil {
		return false, math.Int{}, err
	}
	if bz != nil {
		if err := total.Unmarshal(bz); err != nil {
			return false, math.Int{}, err
		}
	}
	return paused != nil, total, nil
}

// VaultCollateral returns the collateral balance held by the vault module
func (q *StoreQuerier) VaultCollateral() (math.Int, error) {
	params, err := q.Params()
	if err != nil {
		return math.Int{}, err
	}
	res, err := banktypes.NewQueryClient(q.clientCtx).Balance(context.Background(), &banktypes.QueryBalanceRequest{
		Address: authtypes.NewModuleAddress(types.ModuleName).String(),
		Denom:   params.CollateralDenom,
	})
	if err != nil {
		return math.Int{}, fmt.Errorf("query vault balance: %w", err)
	}
	if res.Balance == nil {
		return math.ZeroInt(), nil
	}
	return res.Balance.Amount, nil
}

// Health computes the health of every account in [start, end), counting
// the reward a drip settle now would apply.
func (q *StoreQuerier) Health(start, end uint64) ([]types.AccountHealth, error) {
	count, err := q.AccountCount()
	if err != nil {
		return nil, err
	}
	if start > end || end > count {
		return nil, types.ErrIndexOutOfBound.Wrapf("range [%d, %d), count %d", start, end, count)
	}
	price, _, err := q.CollateralPrice()
	if err != nil {
		return nil, err
	}
	if err := types.ValidatePrice(price); err != nil {
		return nil, err
	}
	cumulative, err := q.projectedCumulative()
	if err != nil {
		return nil, err
	}

	out := make([]types.AccountHealth, 0, end-start)
	for i := start; i < end; i++ {
		owner, err := q.AccountAt(i)
		if err != nil {
			return nil, err
		}
		pos, err := q.Position(owner)
		if err != nil {
			return nil, err
		}
		pos = types.SettledPosition(pos, cumulative)
		hf, err := types.PositionHealth(pos, price)
		if err != nil {
			return nil, err
		}
		maxRepay, err := types.MaxLiquidatable(pos, price)
		if err != nil {
			return nil, err
		}
		out = append(out, types.AccountHealth{
			Index:           i,
			Account:         owner,
			Collateral:      pos.Collateral,
			Debt:            pos.Debt,
			HealthFactor:    hf,
			MaxLiquidatable: maxRepay,
		})
	}
	return out, nil
}

// UnhealthyAccounts returns the accounts in [start, end) below the minimum
// collateral ratio, lowest health factor first.
func (q *StoreQuerier) UnhealthyAccounts(start, end uint64) ([]types.AccountHealth, error) {
	all, err := q.Health(start, end)
	if err != nil {
		return nil, err
	}
	unhealthy := make([]types.AccountHealth, 0)
	for _, h := range all {
		if h.Debt.IsPositive() && h.HealthFactor.LT(types.MinCollRatio) {
			unhealthy = append(unhealthy, h)
		}
	}
	sort.SliceStable(unhealthy, func(i, j int) bool {
		return unhealthy[i].HealthFactor.LT(unhealthy[j].HealthFactor)
	})
	return unhealthy, nil
}
