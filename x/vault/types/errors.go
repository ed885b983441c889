package types

import (
	"cosmossdk.io/errors"
)

// Vault error codes
var (
	ErrInsufficientCollateral        = errors.Register(ModuleName, 1, "insufficient collateral")
	ErrOracleCorrupt                 = errors.Register(ModuleName, 2, "oracle price corrupt")
	ErrCannotLiquidateHealthyAccount = errors.Register(ModuleName, 3, "cannot liquidate healthy account")
	ErrWrongLiquidationAmount        = errors.Register(ModuleName, 4, "wrong liquidation amount")
	ErrSlippageTooHigh               = errors.Register(ModuleName, 5, "slippage too high")
	ErrFeePercTooLarge               = errors.Register(ModuleName, 6, "fee percentage too large")
	ErrNotAuthorized                 = errors.Register(ModuleName, 7, "not authorized")
	ErrTokenCannotBeSwapped          = errors.Register(ModuleName, 8, "token cannot be swapped")
	ErrUnregisteredSwapAdapter       = errors.Register(ModuleName, 9, "unregistered swap adapter")
	ErrIndexOutOfBound               = errors.Register(ModuleName, 10, "index out of bound")

	ErrPaused                = errors.Register(ModuleName, 20, "vault is paused")
	ErrNotPaused             = errors.Register(ModuleName, 21, "vault is not paused")
	ErrInvalidAmount         = errors.Register(ModuleName, 22, "invalid amount")
	ErrInvalidProportion     = errors.Register(ModuleName, 23, "proportion exceeds precision")
	ErrInvalidParams         = errors.Register(ModuleName, 24, "invalid params")
	ErrInvalidFeeKey         = errors.Register(ModuleName, 25, "invalid fee key")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 26, "insufficient vault liquidity")
)
