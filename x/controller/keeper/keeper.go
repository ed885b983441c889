package keeper

import (
	"bytes"
	"encoding/json"
	"sort"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/controller/types"
)

// Store key prefixes
var (
	RoleHolderKeyPrefix = []byte{0x01}
	RoleModeKeyPrefix   = []byte{0x02}
)

var keySeparator = []byte{'/'}

// Keeper holds role grants and the swap adapter registry.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string
	logger    log.Logger

	// adapters are Go values wired at app construction, not chain state.
	adapters map[string]types.SwapAdapter
}

// NewKeeper creates a new controller keeper
func NewKeeper(storeKey storetypes.StoreKey, authority string, logger log.Logger) *Keeper {
	return &Keeper{
		storeKey:  storeKey,
		authority: authority,
		logger:    logger.With("module", "x/controller"),
		adapters:  make(map[string]types.SwapAdapter),
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

func roleHolderKey(role types.Role, holder string) []byte {
	key := append([]byte{}, RoleHolderKeyPrefix...)
	key = append(key, []byte(role)...)
	key = append(key, keySeparator...)
	return append(key, []byte(holder)...)
}

func roleModeKey(role types.Role) []byte {
	return append(append([]byte{}, RoleModeKeyPrefix...), []byte(role)...)
}

func (k *Keeper) checkAuthority(sender string) error {
	if sender != k.authority {
		return errors.Wrapf(types.ErrNotAuthorized, "expected %s, got %s", k.authority, sender)
	}
	return nil
}

// ============ Roles ============

// GrantRole adds holder to role.
func (k *Keeper) GrantRole(ctx sdk.Context, sender string, role types.Role, holder string) error {
	if err := k.checkAuthority(sender); err != nil {
		return err
	}
	if !role.Valid() {
		return errors.Wrapf(types.ErrUnknownRole, "%s", role)
	}
	if _, err := sdk.AccAddressFromBech32(holder); err != nil {
		return errors.Wrap(types.ErrInvalidAddress, err.Error())
	}
	k.setRole(ctx, role, holder)
	k.logger.Info("role granted", "role", role, "holder", holder)
	return nil
}

func (k *Keeper) setRole(ctx sdk.Context, role types.Role, holder string) {
	k.GetStore(ctx).Set(roleHolderKey(role, holder), []byte{1})
}

// RevokeRole removes holder from role.
func (k *Keeper) RevokeRole(ctx sdk.Context, sender string, role types.Role, holder string) error {
	if err := k.checkAuthority(sender); err != nil {
		return err
	}
	k.GetStore(ctx).Delete(roleHolderKey(role, holder))
	k.logger.Info("role revoked", "role", role, "holder", holder)
	return nil
}

// HasRole reports whether addr is an explicit holder of role.
func (k *Keeper) HasRole(ctx sdk.Context, role types.Role, addr string) bool {
	return k.GetStore(ctx).Has(roleHolderKey(role, addr))
}

// GetRoleHolders returns the holders of role in key order.
func (k *Keeper) GetRoleHolders(ctx sdk.Context, role types.Role) []string {
	prefix := append(append([]byte{}, RoleHolderKeyPrefix...), []byte(role)...)
	prefix = append(prefix, keySeparator...)
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), prefix)
	defer iterator.Close()

	var holders []string
	for ; iterator.Valid(); iterator.Next() {
		holders = append(holders, string(bytes.TrimPrefix(iterator.Key(), prefix)))
	}
	return holders
}

// SetRoleMode switches role between restricted and open enforcement.
func (k *Keeper) SetRoleMode(ctx sdk.Context, sender string, role types.Role, mode types.AccessMode) error {
	if err := k.checkAuthority(sender); err != nil {
		return err
	}
	if !role.Valid() {
		return errors.Wrapf(types.ErrUnknownRole, "%s", role)
	}
	k.setRoleMode(ctx, role, mode)
	k.logger.Info("role mode changed", "role", role, "mode", mode.String())
	return nil
}

func (k *Keeper) setRoleMode(ctx sdk.Context, role types.Role, mode types.AccessMode) {
	store := k.GetStore(ctx)
	if mode == types.AccessModeRestricted {
		store.Delete(roleModeKey(role))
		return
	}
	bz, _ := json.Marshal(mode)
	store.Set(roleModeKey(role), bz)
}

// GetRoleMode returns the access mode of role; restricted unless set.
func (k *Keeper) GetRoleMode(ctx sdk.Context, role types.Role) types.AccessMode {
	bz := k.GetStore(ctx).Get(roleModeKey(role))
	if bz == nil {
		return types.AccessModeRestricted
	}
	var mode types.AccessMode
	if err := json.Unmarshal(bz, &mode); err != nil {
		return types.AccessModeRestricted
	}
	return mode
}

// CheckRole returns ErrNotAuthorized unless addr may act as role.
func (k *Keeper) CheckRole(ctx sdk.Context, role types.Role, addr string) error {
	if k.GetRoleMode(ctx, role) == types.AccessModeOpen {
		return nil
	}
	if k.HasRole(ctx, role, addr) {
		return nil
	}
	return errors.Wrapf(types.ErrNotAuthorized, "%s", role)
}

// ============ Swap adapters ============

// RegisterSwapAdapter binds key to adapter. Keys are registered once.
func (k *Keeper) RegisterSwapAdapter(key string, adapter types.SwapAdapter) error {
	if key == "" || adapter == nil {
		return types.ErrInvalidAdapter
	}
	if _, exists := k.adapters[key]; exists {
		return errors.Wrapf(types.ErrAdapterExists, "%s", key)
	}
	k.adapters[key] = adapter
	return nil
}

// SwapAdapter looks up the adapter registered under key.
func (k *Keeper) SwapAdapter(key string) (types.SwapAdapter, bool) {
	adapter, ok := k.adapters[key]
	return adapter, ok
}

// SwapAdapterKeys returns the registered adapter keys sorted.
func (k *Keeper) SwapAdapterKeys() []string {
	keys := make([]string, 0, len(k.adapters))
	for key := range k.adapters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ============ Genesis ============

// InitGenesis loads role grants and modes.
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, g := range gs.Grants {
		k.setRole(ctx, g.Role, g.Holder)
	}
	for _, m := range gs.Modes {
		k.setRoleMode(ctx, m.Role, m.Mode)
	}
	return nil
}

// ExportGenesis exports role grants and modes.
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	gs := types.DefaultGenesis()
	for _, role := range types.AllRoles {
		for _, holder := range k.GetRoleHolders(ctx, role) {
			gs.Grants = append(gs.Grants, types.RoleGrant{Role: role, Holder: holder})
		}
		if mode := k.GetRoleMode(ctx, role); mode != types.AccessModeRestricted {
			gs.Modes = append(gs.Modes, types.RoleModeEntry{Role: role, Mode: mode})
		}
	}
	return gs
}
