package keeper

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/stablecoin/types"
)

// Store key prefixes
var (
	MintLimitKeyPrefix = []byte{0x01}
)

// Keeper mints and burns the stablecoin under per-minter limits.
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	denom      string
	authority  string
	logger     log.Logger
}

// NewKeeper creates a new stablecoin keeper
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	denom string,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		denom:      denom,
		authority:  authority,
		logger:     logger.With("module", "x/stablecoin"),
	}
}

// Denom returns the stablecoin denom
func (k *Keeper) Denom() string {
	return k.denom
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func mintLimitKey(minter string) []byte {
	return append(append([]byte{}, MintLimitKeyPrefix...), []byte(minter)...)
}

// SetMintLimit sets the remaining amount minter may mint.
func (k *Keeper) SetMintLimit(ctx sdk.Context, sender, minter string, limit math.Int) error {
	if sender != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, sender)
	}
	if limit.IsNil() || limit.IsNegative() {
		return errors.Wrap(types.ErrInvalidAmount, "limit must be non-negative")
	}
	k.setMintLimit(ctx, minter, limit)
	k.logger.Info("mint limit set", "minter", minter, "limit", limit.String())
	return nil
}

func (k *Keeper) setMintLimit(ctx sdk.Context, minter string, limit math.Int) {
	bz, _ := json.Marshal(types.MintLimit{Minter: minter, Remaining: limit})
	k.GetStore(ctx).Set(mintLimitKey(minter), bz)
}

// GetMintLimit returns the remaining limit of minter, zero if unset.
func (k *Keeper) GetMintLimit(ctx sdk.Context, minter string) math.Int {
	bz := k.GetStore(ctx).Get(mintLimitKey(minter))
	if bz == nil {
		return math.ZeroInt()
	}
	var limit types.MintLimit
	if err := json.Unmarshal(bz, &limit); err != nil {
		return math.ZeroInt()
	}
	return limit.Remaining
}

// Mint creates amount stablecoin for to, charged against minter's limit.
func (k *Keeper) Mint(ctx sdk.Context, minter string, to sdk.AccAddress, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Wrap(types.ErrInvalidAmount, "mint amount must be non-negative")
	}
	limit := k.GetMintLimit(ctx, minter)
	if amount.GT(limit) {
		return errors.Wrapf(types.ErrMintLimitExceeded, "requested %s, limit %s", amount, limit)
	}
	if amount.IsZero() {
		return nil
	}

	coins := sdk.NewCoins(sdk.NewCoin(k.denom, amount))
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, to, coins); err != nil {
		return err
	}
	k.setMintLimit(ctx, minter, limit.Sub(amount))
	return nil
}

// Burn destroys amount stablecoin held by the burner module account and
// restores the burner's mint limit by the same amount.
func (k *Keeper) Burn(ctx sdk.Context, burner string, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Wrap(types.ErrInvalidAmount, "burn amount must be non-negative")
	}
	if amount.IsZero() {
		return nil
	}

	coins := sdk.NewCoins(sdk.NewCoin(k.denom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, burner, types.ModuleName, coins); err != nil {
		return err
	}
	if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName, coins); err != nil {
		return err
	}
	k.setMintLimit(ctx, burner, k.GetMintLimit(ctx, burner).Add(amount))
	return nil
}

// GetAllMintLimits returns every stored limit
func (k *Keeper) GetAllMintLimits(ctx sdk.Context) []types.MintLimit {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), MintLimitKeyPrefix)
	defer iterator.Close()

	var limits []types.MintLimit
	for ; iterator.Valid(); iterator.Next() {
		var limit types.MintLimit
		if err := json.Unmarshal(iterator.Value(), &limit); err != nil {
			continue
		}
		limits = append(limits, limit)
	}
	return limits
}

// InitGenesis loads mint limits.
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, l := range gs.Limits {
		k.setMintLimit(ctx, l.Minter, l.Remaining)
	}
	return nil
}

// ExportGenesis exports mint limits.
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return &types.GenesisState{Denom: k.denom, Limits: k.GetAllMintLimits(ctx)}
}
