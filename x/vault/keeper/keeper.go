package keeper

import (
	"encoding/binary"
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/tau-vault/metrics"
	"github.com/openalpha/tau-vault/x/vault/types"
)

// Store key prefixes
var (
	PositionKeyPrefix     = []byte{0x01}
	AccountIndexKeyPrefix = []byte{0x02}
	AccountCountKey       = []byte{0x03}
	ParamsKey             = []byte{0x04}
	DripStateKey          = []byte{0x05}
	FeeKeyPrefix          = []byte{0x06}
	PausedKey             = []byte{0x07}
	LiquidationKeyPrefix  = []byte{0x08}
	LiquidationSeqKey     = []byte{0x09}
	TotalDebtKey          = []byte{0x0A}
)

// Keeper manages vault positions, the reward drip and liquidations.
type Keeper struct {
	storeKey         storetypes.StoreKey
	bankKeeper       types.BankKeeper
	stablecoinKeeper types.StablecoinKeeper
	oracleKeeper     types.OracleKeeper
	controllerKeeper types.ControllerKeeper
	feeSplitter      types.FeeSplitter
	authority        string // governance authority address
	logger           log.Logger
	metrics          *metrics.Collector
}

// NewKeeper creates a new vault keeper
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	stablecoinKeeper types.StablecoinKeeper,
	oracleKeeper types.OracleKeeper,
	controllerKeeper types.ControllerKeeper,
	feeSplitter types.FeeSplitter,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		storeKey:         storeKey,
		bankKeeper:       bankKeeper,
		stablecoinKeeper: stablecoinKeeper,
		oracleKeeper:     oracleKeeper,
		controllerKeeper: controllerKeeper,
		feeSplitter:      feeSplitter,
		authority:        authority,
		logger:           logger.With("module", "x/vault"),
		metrics:          metrics.GetCollector(),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ModuleAddress returns the vault module account, which holds all
// deposited collateral.
func (k *Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// ============ Params ============

// SetParams stores validated params
func (k *Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, _ := json.Marshal(params)
	k.GetStore(ctx).Set(ParamsKey, bz)
	return nil
}

// GetParams returns the stored params, or the defaults before genesis.
func (k *Keeper) GetParams(ctx sdk.Context) types.Params {
	bz := k.GetStore(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.DefaultParams()
	}
	return params
}

// ============ Positions ============

func positionKey(owner string) []byte {
	return append(append([]byte{}, PositionKeyPrefix...), []byte(owner)...)
}

func accountIndexKey(index uint64) []byte {
	key := append([]byte{}, AccountIndexKeyPrefix...)
	return binary.BigEndian.AppendUint64(key, index)
}

// GetPosition returns the position of owner and whether one is stored.
// Missing positions are returned empty.
func (k *Keeper) GetPosition(ctx sdk.Context, owner string) (types.Position, bool) {
	bz := k.GetStore(ctx).Get(positionKey(owner))
	if bz == nil {
		return types.NewPosition(owner), false
	}
	var pos types.Position
	if err := json.Unmarshal(bz, &pos); err != nil {
		return types.NewPosition(owner), false
	}
	return pos, true
}

// setPosition writes pos, appending new owners to the account index and
// keeping the aggregate debt in step.
func (k *Keeper) setPosition(ctx sdk.Context, pos types.Position) {
	prev, exists := k.GetPosition(ctx, pos.Owner)
	if !exists {
		k.appendAccount(ctx, pos.Owner)
	}
	k.setTotalDebt(ctx, k.GetTotalDebt(ctx).Sub(prev.Debt).Add(pos.Debt))

	bz, _ := json.Marshal(pos)
	k.GetStore(ctx).Set(positionKey(pos.Owner), bz)
}

func (k *Keeper) appendAccount(ctx sdk.Context, owner string) {
	store := k.GetStore(ctx)
	count := k.GetAccountCount(ctx)
	store.Set(accountIndexKey(count), []byte(owner))
	store.Set(AccountCountKey, sdk.Uint64ToBigEndian(count+1))
}

// GetAccountCount returns the number of indexed accounts
func (k *Keeper) GetAccountCount(ctx sdk.Context) uint64 {
	bz := k.GetStore(ctx).Get(AccountCountKey)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

// GetAccountAt returns the owner at index
func (k *Keeper) GetAccountAt(ctx sdk.Context, index uint64) string {
	return string(k.GetStore(ctx).Get(accountIndexKey(index)))
}

// GetAllPositions returns positions in account index order
func (k *Keeper) GetAllPositions(ctx sdk.Context) []types.Position {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), AccountIndexKeyPrefix)
	defer iterator.Close()

	var positions []types.Position
	for ; iterator.Valid(); iterator.Next() {
		pos, found := k.GetPosition(ctx, string(iterator.Value()))
		if !found {
			continue
		}
		positions = append(positions, pos)
	}
	return positions
}

// GetTotalDebt returns the sum of all position debt
func (k *Keeper) GetTotalDebt(ctx sdk.Context) math.Int {
	bz := k.GetStore(ctx).Get(TotalDebtKey)
	if bz == nil {
		return math.ZeroInt()
	}
	var total math.Int
	if err := total.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return total
}

func (k *Keeper) setTotalDebt(ctx sdk.Context, total math.Int) {
	bz, _ := total.Marshal()
	k.GetStore(ctx).Set(TotalDebtKey, bz)
}

// ============ Drip State ============

// GetDripState returns the stored drip state
func (k *Keeper) GetDripState(ctx sdk.Context) types.DripState {
	bz := k.GetStore(ctx).Get(DripStateKey)
	if bz == nil {
		return types.NewDripState()
	}
	var state types.DripState
	if err := json.Unmarshal(bz, &state); err != nil {
		return types.NewDripState()
	}
	return state
}

func (k *Keeper) setDripState(ctx sdk.Context, state types.DripState) {
	bz, _ := json.Marshal(state)
	k.GetStore(ctx).Set(DripStateKey, bz)
}

// ============ Pause ============

// IsPaused reports whether the vault is paused
func (k *Keeper) IsPaused(ctx sdk.Context) bool {
	return k.GetStore(ctx).Has(PausedKey)
}

func (k *Keeper) setPaused(ctx sdk.Context, paused bool) {
	if paused {
		k.GetStore(ctx).Set(PausedKey, []byte{1})
		return
	}
	k.GetStore(ctx).Delete(PausedKey)
}

func (k *Keeper) requireNotPaused(ctx sdk.Context) error {
	if k.IsPaused(ctx) {
		return types.ErrPaused
	}
	return nil
}
