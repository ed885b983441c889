package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/tau-vault/x/vault/types"
)

const (
	flagAll            = "all"
	flagMinReturn      = "min-return"
	flagMinCollateral  = "min-collateral-out"
	flagBurnProportion = "burn-proportion"
	flagAdapterData    = "adapter-data"
)

// GetTxCmd returns the transaction commands for the vault module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Vault module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdModify(),
		CmdDeposit(),
		CmdWithdraw(),
		CmdBorrow(),
		CmdRepay(),
		CmdEmergencyClose(),
		CmdLiquidate(),
		CmdDistributeRewards(),
		CmdSettleDrip(),
		CmdSwap(),
		CmdSetFee(),
		CmdPause(),
		CmdUnpause(),
	)

	return cmd
}

// validatedMsg is what every vault message offers the CLI
type validatedMsg interface {
	sdk.Msg
	ValidateBasic() error
}

func broadcast(cmd *cobra.Command, build func(from string) validatedMsg) error {
	clientCtx, err := client.GetClientTxContext(cmd)
	if err != nil {
		return err
	}

	msg := build(clientCtx.GetFromAddress().String())
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
}

// CmdModify returns the command to apply signed collateral and debt deltas
func CmdModify() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify [collateral-delta] [debt-delta]",
		Short: "Change a position by signed collateral and debt deltas",
		Long: `Positive collateral deposits, negative withdraws.
Positive debt borrows, negative repays. Pass --all to repay the whole debt.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repayAll, _ := cmd.Flags().GetBool(flagAll)
			debt := args[1]
			if repayAll {
				debt = "0"
			}
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgModifyPosition{
					Owner:           from,
					CollateralDelta: args[0],
					DebtDelta:       debt,
					RepayAll:        repayAll,
				}
			})
		},
	}

	cmd.Flags().Bool(flagAll, false, "Repay the whole outstanding debt")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// singleDeltaCmd builds a command that moves either collateral or debt by a
// positive amount in one direction.
func singleDeltaCmd(use, short string, collateral, negative bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [amount]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := types.ParseAmount("amount", args[0])
			if err != nil {
				return err
			}
			if !amount.IsPositive() {
				return fmt.Errorf("amount must be positive")
			}
			if negative {
				amount = amount.Neg()
			}

			collDelta, debtDelta := "0", "0"
			if collateral {
				collDelta = amount.String()
			} else {
				debtDelta = amount.String()
			}
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgModifyPosition{Owner: from, CollateralDelta: collDelta, DebtDelta: debtDelta}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDeposit returns the command to deposit collateral
func CmdDeposit() *cobra.Command {
	return singleDeltaCmd("deposit", "Deposit collateral into the vault", true, false)
}

// CmdWithdraw returns the command to withdraw collateral
func CmdWithdraw() *cobra.Command {
	return singleDeltaCmd("withdraw", "Withdraw collateral from the vault", true, true)
}

// CmdBorrow returns the command to mint stablecoin against collateral
func CmdBorrow() *cobra.Command {
	return singleDeltaCmd("borrow", "Borrow stablecoin against deposited collateral", false, false)
}

// CmdRepay returns the command to repay debt
func CmdRepay() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repay [amount]",
		Short: "Repay stablecoin debt",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repayAll, _ := cmd.Flags().GetBool(flagAll)
			debt := "0"
			switch {
			case repayAll && len(args) == 1:
				return fmt.Errorf("amount cannot be combined with --%s", flagAll)
			case !repayAll && len(args) == 0:
				return fmt.Errorf("amount required unless --%s is set", flagAll)
			case !repayAll:
				amount, err := types.ParseAmount("amount", args[0])
				if err != nil {
					return err
				}
				debt = amount.Neg().String()
			}
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgModifyPosition{Owner: from, CollateralDelta: "0", DebtDelta: debt, RepayAll: repayAll}
			})
		},
	}

	cmd.Flags().Bool(flagAll, false, "Repay the whole outstanding debt")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdEmergencyClose returns the command to repay all debt and withdraw everything
func CmdEmergencyClose() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emergency-close",
		Aliases: []string{"close"},
		Short:   "Repay all debt and withdraw all collateral, allowed while paused",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgEmergencyClose{Owner: from}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdLiquidate returns the command to liquidate an unhealthy account
func CmdLiquidate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidate [account] [repay-amount]",
		Short: "Repay an unhealthy account's debt in exchange for discounted collateral",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minOut, _ := cmd.Flags().GetString(flagMinCollateral)
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgLiquidate{
					Liquidator:       from,
					Account:          args[0],
					Amount:           args[1],
					MinCollateralOut: minOut,
				}
			})
		},
	}

	cmd.Flags().String(flagMinCollateral, "0", "Minimum collateral the liquidator must receive")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDistributeRewards returns the command to feed stablecoin into the reward drip
func CmdDistributeRewards() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute [amount]",
		Short: "Burn stablecoin and release it to borrowers over the drip period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgDistributeRewards{Sender: from, Amount: args[0]}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSettleDrip returns the command to release vested rewards
func CmdSettleDrip() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle-drip",
		Short: "Release rewards vested since the last disbursement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgSettleDrip{Sender: from}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSwap returns the command to swap a yield token held by the vault
func CmdSwap() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap [input-denom] [amount] [adapter]",
		Short: "Swap a yield token held by the vault for stablecoin through a registered adapter",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minReturn, _ := cmd.Flags().GetString(flagMinReturn)
			proportion, _ := cmd.Flags().GetString(flagBurnProportion)
			dataHex, _ := cmd.Flags().GetString(flagAdapterData)
			data, err := hex.DecodeString(dataHex)
			if err != nil {
				return fmt.Errorf("invalid adapter data: %w", err)
			}
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgSwapForStablecoin{
					Sender:         from,
					InputDenom:     args[0],
					Amount:         args[1],
					MinReturn:      minReturn,
					AdapterKey:     args[2],
					BurnProportion: proportion,
					AdapterData:    data,
				}
			})
		},
	}

	cmd.Flags().String(flagMinReturn, "0", "Minimum stablecoin output")
	cmd.Flags().String(flagBurnProportion, "0", "Share of the output kept out of the drip, scaled by 1e18")
	cmd.Flags().String(flagAdapterData, "", "Hex-encoded payload passed to the adapter")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetFee returns the command to set a fee percentage
func CmdSetFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee [key] [perc]",
		Short: "Set a protocol fee percentage, scaled by 1e18",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgSetFeePerc{Authority: from, Key: args[0], Perc: args[1]}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdPause returns the command to pause the vault
func CmdPause() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause every vault operation except emergency close",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgPause{Sender: from}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUnpause returns the command to resume the vault
func CmdUnpause() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpause",
		Short: "Resume vault operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return broadcast(cmd, func(from string) validatedMsg {
				return &types.MsgUnpause{Sender: from}
			})
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
