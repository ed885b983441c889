package liquidator

import (
	"context"

	"cosmossdk.io/math"

	oracletypes "github.com/openalpha/tau-vault/x/oracle/types"
	"github.com/openalpha/tau-vault/x/vault/client/cli"
	vaulttypes "github.com/openalpha/tau-vault/x/vault/types"
)

// VaultReader is the read side of the vault the bot scans
type VaultReader interface {
	AccountCount(ctx context.Context) (uint64, error)
	CollateralPrice(ctx context.Context) (oracletypes.Price, error)
	FetchUnhealthyAccounts(ctx context.Context, start, end uint64) ([]vaulttypes.AccountHealth, error)
	CheckLiquidity(ctx context.Context, amount math.Int) error
}

// ChainReader reads vault state from a node through store queries
type ChainReader struct {
	querier *cli.StoreQuerier
}

// NewChainReader wraps querier as a VaultReader
func NewChainReader(querier *cli.StoreQuerier) *ChainReader {
	return &ChainReader{querier: querier}
}

func (r *ChainReader) AccountCount(context.Context) (uint64, error) {
	return r.querier.AccountCount()
}

func (r *ChainReader) CollateralPrice(context.Context) (oracletypes.Price, error) {
	price, _, err := r.querier.CollateralPrice()
	return price, err
}

func (r *ChainReader) FetchUnhealthyAccounts(_ context.Context, start, end uint64) ([]vaulttypes.AccountHealth, error) {
	return r.querier.UnhealthyAccounts(start, end)
}

// CheckLiquidity fails when the vault holds less collateral than amount
func (r *ChainReader) CheckLiquidity(_ context.Context, amount math.Int) error {
	available, err := r.querier.VaultCollateral()
	if err != nil {
		return err
	}
	if amount.GT(available) {
		return vaulttypes.ErrInsufficientLiquidity.Wrapf("requested %s, available %s", amount, available)
	}
	return nil
}
