package types

// Vault events
const (
	EventTypeDeposit        = "vault_deposit"
	EventTypeWithdraw       = "vault_withdraw"
	EventTypeBorrow         = "vault_borrow"
	EventTypeRepay          = "vault_repay"
	EventTypeLiquidation    = "vault_liquidation"
	EventTypeRewardAccrued  = "vault_reward_accrued"
	EventTypeRewardsAdded   = "vault_rewards_distributed"
	EventTypeDripSettled    = "vault_drip_settled"
	EventTypeSwap           = "vault_swap"
	EventTypeFeeUpdated     = "vault_fee_updated"
	EventTypePaused         = "vault_paused"
	EventTypeUnpaused       = "vault_unpaused"
	EventTypeEmergencyClose = "vault_emergency_close"

	AttributeKeyAccount              = "account"
	AttributeKeyAmount               = "amount"
	AttributeKeyLiquidator           = "liquidator"
	AttributeKeyRepaid               = "repaid"
	AttributeKeyCollateralLiquidated = "collateral_liquidated"
	AttributeKeyFeeShare             = "fee_share"
	AttributeKeyLiquidatorShare      = "liquidator_share"
	AttributeKeyHealthFactor         = "health_factor"
	AttributeKeyDiscount             = "discount"
	AttributeKeyRecordID             = "record_id"
	AttributeKeyRewardApplied        = "reward_applied"
	AttributeKeyRewardForfeited      = "reward_forfeited"
	AttributeKeyReleased             = "released"
	AttributeKeyWithheld             = "withheld"
	AttributeKeyInputDenom           = "input_denom"
	AttributeKeyAmountOut            = "amount_out"
	AttributeKeyBurned               = "burned"
	AttributeKeyProtocolFee          = "protocol_fee"
	AttributeKeyAdapter              = "adapter"
	AttributeKeyFeeKey               = "fee_key"
	AttributeKeyFeePerc              = "fee_perc"
	AttributeKeySender               = "sender"
)
