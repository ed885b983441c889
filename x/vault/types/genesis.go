package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the vault genesis. Positions are listed in account index
// order.
type GenesisState struct {
	Params       Params              `json:"params"`
	Positions    []Position          `json:"positions"`
	Drip         DripState           `json:"drip"`
	Fees         []FeeEntry          `json:"fees"`
	Paused       bool                `json:"paused"`
	Liquidations []LiquidationRecord `json:"liquidations"`
}

// DefaultGenesis returns the default vault genesis
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
		Drip:   NewDripState(),
		Fees: []FeeEntry{
			{Key: FeeKeySwapProtocol, Perc: DefaultSwapProtocolFee},
		},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if err := gs.Drip.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(gs.Positions))
	total := math.ZeroInt()
	for _, pos := range gs.Positions {
		if _, err := sdk.AccAddressFromBech32(pos.Owner); err != nil {
			return ErrInvalidParams.Wrapf("position owner %q: %s", pos.Owner, err)
		}
		if seen[pos.Owner] {
			return ErrInvalidParams.Wrapf("duplicate position %s", pos.Owner)
		}
		seen[pos.Owner] = true
		if err := pos.Validate(); err != nil {
			return err
		}
		total = total.Add(pos.Collateral)
	}
	if !total.Equal(gs.Drip.TotalCollateral) {
		return ErrInvalidParams.Wrapf("total collateral %s does not match positions %s", gs.Drip.TotalCollateral, total)
	}

	keys := make(map[string]bool, len(gs.Fees))
	for _, fee := range gs.Fees {
		if fee.Key == "" || keys[fee.Key] {
			return ErrInvalidFeeKey.Wrapf("%q", fee.Key)
		}
		keys[fee.Key] = true
		if err := ValidateFeePerc(fee.Perc); err != nil {
			return err
		}
	}
	return nil
}
