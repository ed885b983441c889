package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/openalpha/tau-vault/x/vault/types"
)

// HealthInfo is a CLI-friendly view of an account's health
type HealthInfo struct {
	Account         string `json:"account"`
	Collateral      string `json:"collateral"`
	Debt            string `json:"debt"`
	HealthFactor    string `json:"health_factor"`
	Healthy         bool   `json:"healthy"`
	MaxLiquidatable string `json:"max_liquidatable"`
	PriceHeight     int64  `json:"price_height"`
}

// StatusInfo is a CLI-friendly view of the vault's global state
type StatusInfo struct {
	Paused          bool   `json:"paused"`
	TotalDebt       string `json:"total_debt"`
	AccountCount    uint64 `json:"account_count"`
	VaultCollateral string `json:"vault_collateral"`
}

// GetQueryCmd returns the cli query commands for the vault module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the vault module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPosition(),
		CmdQueryHealth(),
		CmdQueryUsers(),
		CmdQueryUnhealthy(),
		CmdQueryDrip(),
		CmdQueryFee(),
		CmdQueryParams(),
		CmdQueryStatus(),
	)

	return cmd
}

func printJSON(clientCtx client.Context, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return clientCtx.PrintString(string(output) + "\n")
}

// queryRunE builds a RunE that hands a StoreQuerier to fn
func queryRunE(fn func(clientCtx client.Context, q *StoreQuerier, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		clientCtx, err := client.GetClientQueryContext(cmd)
		if err != nil {
			return err
		}
		return fn(clientCtx, NewStoreQuerier(clientCtx), args)
	}
}

func parseRange(args []string) (uint64, uint64, error) {
	start, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start index: %w", err)
	}
	end, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end index: %w", err)
	}
	return start, end, nil
}

// CmdQueryPosition returns the command to query a position
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [owner]",
		Short: "Query an account's collateral and debt",
		Args:  cobra.ExactArgs(1),
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, args []string) error {
			pos, err := q.Position(args[0])
			if err != nil {
				return err
			}
			return printJSON(clientCtx, pos)
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryHealth returns the command to query an account's health factor
func CmdQueryHealth() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health [owner]",
		Short: "Query an account's health factor and liquidatable debt",
		Args:  cobra.ExactArgs(1),
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, args []string) error {
			pos, err := q.SettledPosition(args[0])
			if err != nil {
				return err
			}
			price, record, err := q.CollateralPrice()
			if err != nil {
				return err
			}
			hf, err := types.PositionHealth(pos, price)
			if err != nil {
				return err
			}
			maxRepay, err := types.MaxLiquidatable(pos, price)
			if err != nil {
				return err
			}
			return printJSON(clientCtx, HealthInfo{
				Account:         pos.Owner,
				Collateral:      pos.Collateral.String(),
				Debt:            pos.Debt.String(),
				HealthFactor:    hf.String(),
				Healthy:         pos.Debt.IsZero() || hf.GTE(types.MinCollRatio),
				MaxLiquidatable: maxRepay.String(),
				PriceHeight:     record.Height,
			})
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryUsers returns the command to list account health in an index range
func CmdQueryUsers() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users [start] [end]",
		Short: "Query positions and health of accounts with index in [start, end)",
		Args:  cobra.ExactArgs(2),
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			users, err := q.Health(start, end)
			if err != nil {
				return err
			}
			return printJSON(clientCtx, users)
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryUnhealthy returns the command to list liquidatable accounts
func CmdQueryUnhealthy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unhealthy [start] [end]",
		Short: "Query liquidatable accounts with index in [start, end), lowest health first",
		Args:  cobra.ExactArgs(2),
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			accounts, err := q.UnhealthyAccounts(start, end)
			if err != nil {
				return err
			}
			return printJSON(clientCtx, accounts)
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryDrip returns the command to query the reward drip
func CmdQueryDrip() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drip",
		Short: "Query the reward drip state",
		Args:  cobra.NoArgs,
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, _ []string) error {
			state, err := q.Drip()
			if err != nil {
				return err
			}
			return printJSON(clientCtx, state)
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryFee returns the command to query a fee percentage
func CmdQueryFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee [key]",
		Short: "Query a fee percentage, scaled by 1e18",
		Args:  cobra.ExactArgs(1),
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, args []string) error {
			perc, err := q.Fee(args[0])
			if err != nil {
				return err
			}
			return printJSON(clientCtx, types.FeeEntry{Key: args[0], Perc: perc})
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryParams returns the command to query module parameters
func CmdQueryParams() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Query the vault parameters",
		Args:  cobra.NoArgs,
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, _ []string) error {
			params, err := q.Params()
			if err != nil {
				return err
			}
			return printJSON(clientCtx, params)
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryStatus returns the command to query the pause flag and totals
func CmdQueryStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query whether the vault is paused, its total debt and collateral",
		Args:  cobra.NoArgs,
		RunE: queryRunE(func(clientCtx client.Context, q *StoreQuerier, _ []string) error {
			paused, total, err := q.Status()
			if err != nil {
				return err
			}
			count, err := q.AccountCount()
			if err != nil {
				return err
			}
			collateral, err := q.VaultCollateral()
			if err != nil {
				return err
			}
			return printJSON(clientCtx, StatusInfo{
				Paused:          paused,
				TotalDebt:       total.String(),
				AccountCount:    count,
				VaultCollateral: collateral.String(),
			})
		}),
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
