package invest

import "context"

// Store is the persistence contract for the invest service. WithTx
// runs fn against a transactional view of the same store.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	GetAccount(ctx context.Context, principal Principal) (Account, bool, error)
	CreateAccount(ctx context.Context, account Account) error
	UpdateAccountRole(ctx context.Context, principal Principal, role Role) error
	SetAccountNumber(ctx context.Context, principal Principal, number int64) error

	GetProfile(ctx context.Context, principal Principal) (UserProfile, bool, error)
	SaveProfile(ctx context.Context, principal Principal, profile UserProfile) error
	FindPrincipalByEmail(ctx context.Context, email string) (Principal, bool, error)

	GetWallet(ctx context.Context, principal Principal) (Wallet, bool, error)
	SaveWallet(ctx context.Context, principal Principal, wallet Wallet) error

	ListPlans(ctx context.Context) ([]InvestmentPlan, error)
	GetPlan(ctx context.Context, planID string) (InvestmentPlan, bool, error)
	SeedPlans(ctx context.Context, plans []InvestmentPlan) error

	ListInsights(ctx context.Context) ([]AIInsight, error)
	SeedInsights(ctx context.Context, insights []AIInsight) error

	InsertLead(ctx context.Context, lead Lead) error
	ListLeads(ctx context.Context) ([]Lead, error)

	InsertDeposit(ctx context.Context, deposit DepositRequest) error
	ListDeposits(ctx context.Context) ([]DepositRequest, error)

	GetBotConfig(ctx context.Context) (TelegramBotConfig, bool, error)
	SaveBotConfig(ctx context.Context, config TelegramBotConfig) error
}
