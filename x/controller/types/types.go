package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	ModuleName = "controller"
	StoreKey   = ModuleName
)

// Role names a capability checked by the vault.
type Role string

const (
	RoleKeeper     Role = "KEEPER"
	RoleLiquidator Role = "LIQUIDATOR"
	RoleMultisig   Role = "MULTISIG"
	RoleGovernance Role = "GOVERNANCE"
)

// AllRoles lists every role known to the controller.
var AllRoles = []Role{RoleKeeper, RoleLiquidator, RoleMultisig, RoleGovernance}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// AccessMode controls how a role is enforced. Open lets anyone act in the
// role regardless of the holder set.
type AccessMode int

const (
	AccessModeRestricted AccessMode = iota
	AccessModeOpen
)

func (m AccessMode) String() string {
	switch m {
	case AccessModeOpen:
		return "open"
	default:
		return "restricted"
	}
}

var (
	ErrNotAuthorized  = errors.Register(ModuleName, 1, "not authorized")
	ErrUnknownRole    = errors.Register(ModuleName, 2, "unknown role")
	ErrAdapterExists  = errors.Register(ModuleName, 3, "swap adapter already registered")
	ErrInvalidAdapter = errors.Register(ModuleName, 4, "invalid swap adapter")
	ErrInvalidAddress = errors.Register(ModuleName, 5, "invalid address")
)

// SwapAdapter converts tokens it has been sent into outputDenom and delivers
// the proceeds to recipient. It enforces its own slippage bound.
type SwapAdapter interface {
	Address() sdk.AccAddress
	Swap(ctx sdk.Context, outputDenom string, recipient sdk.AccAddress, data []byte) (math.Int, error)
}

// RoleGrant is a single (role, holder) pair.
type RoleGrant struct {
	Role   Role   `json:"role"`
	Holder string `json:"holder"`
}

// RoleModeEntry records a non-default access mode.
type RoleModeEntry struct {
	Role Role       `json:"role"`
	Mode AccessMode `json:"mode"`
}

// GenesisState is the controller genesis.
type GenesisState struct {
	Grants []RoleGrant     `json:"grants"`
	Modes  []RoleModeEntry `json:"modes"`
}

// DefaultGenesis returns an empty controller genesis.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate checks that every role referenced is known.
func (gs GenesisState) Validate() error {
	for _, g := range gs.Grants {
		if !g.Role.Valid() {
			return errors.Wrapf(ErrUnknownRole, "%s", g.Role)
		}
		if g.Holder == "" {
			return errors.Wrapf(ErrInvalidAddress, "empty holder for %s", g.Role)
		}
	}
	for _, m := range gs.Modes {
		if !m.Role.Valid() {
			return errors.Wrapf(ErrUnknownRole, "%s", m.Role)
		}
	}
	return nil
}
