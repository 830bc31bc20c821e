package webapi

// Cache keys mirror the query hooks the UI depends on. Caller-scoped
// keys carry the principal so one user's mutation never evicts
// another's reads.
const (
	cacheKeyInvestmentPlans    = "investmentPlans"
	cacheKeyAIInsights         = "aiInsights"
	cacheKeyCallerBalance      = "callerWalletBalance"
	cacheKeyCallerWeeklyReturn = "callerWeeklyReturn"
	cacheKeyCallerProfile      = "callerUserProfile"
	cacheKeyCallerRole         = "callerUserRole"
	cacheKeyUniqueNumber       = "uniqueNumber"
	cacheKeyDepositEligibility = "depositEligibility"
	cacheKeyLeads              = "leads" // unscoped: anonymous submissions evict the admin list
)

func scopedKey(name string, caller string) string {
	if caller == "" {
		return name
	}
	return name + ":" + caller
}

func walletKeys(caller string) []string {
	return []string{
		scopedKey(cacheKeyCallerBalance, caller),
		scopedKey(cacheKeyCallerWeeklyReturn, caller),
	}
}
