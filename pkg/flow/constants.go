package flow

const (
	postLoginIntentKey = "postLoginIntent"

	operationRegister = "register"
	operationPurchase = "purchase"
	operationTimeout  = "inactivity_timeout"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	messageInvalidAmount       = "Please enter a valid amount"
	messageInsufficientBalance = "Wallet doesn't have enough balance"
)
