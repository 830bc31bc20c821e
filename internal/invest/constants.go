package invest

const (
	operationRegister      = "register_user"
	operationRegisterNum   = "register_number"
	operationSaveProfile   = "save_profile"
	operationAssignRole    = "assign_role"
	operationInitWallet    = "initialize_wallet"
	operationCreditWallet  = "credit_wallet"
	operationSetBalance    = "set_balance"
	operationPurchase      = "purchase_plan"
	operationSubmitLead    = "submit_lead"
	operationSubmitDeposit = "submit_deposit"
	operationUpdateBot     = "update_bot_config"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	initialWalletBalanceCents = 0
)
