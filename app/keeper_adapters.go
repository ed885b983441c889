package app

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	vaulttypes "github.com/openalpha/tau-vault/x/vault/types"
)

// moduleTransferKeeper is the slice of the bank keeper the fee splitter needs
type moduleTransferKeeper interface {
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
}

// feeCollectorSplitter forwards the protocol's fee share to a single module
// account. Splitting between treasury destinations happens downstream of
// that account.
type feeCollectorSplitter struct {
	bank      moduleTransferKeeper
	recipient string
}

func newFeeCollectorSplitter(bank moduleTransferKeeper, recipient string) vaulttypes.FeeSplitter {
	return feeCollectorSplitter{bank: bank, recipient: recipient}
}

func (s feeCollectorSplitter) Receive(ctx sdk.Context, fromModule string, amount sdk.Coins) error {
	if amount.IsZero() {
		return nil
	}
	if err := s.bank.SendCoinsFromModuleToModule(ctx, fromModule, s.recipient, amount); err != nil {
		return fmt.Errorf("forward fees from %s to %s: %w", fromModule, s.recipient, err)
	}
	return nil
}
