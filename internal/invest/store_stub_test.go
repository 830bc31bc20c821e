package invest

import (
	"context"
	"testing"
)

// stubStore is an in-memory Store for service tests. WithTx runs the
// callback against the same maps, which is enough for single-threaded
// test flows.
type stubStore struct {
	accounts  map[string]Account
	profiles  map[string]UserProfile
	wallets   map[string]Wallet
	planOrder []string
	plans     map[string]InvestmentPlan
	insights  []AIInsight
	leads     []Lead
	deposits  []DepositRequest
	botConfig *TelegramBotConfig
}

func newStubStore() *stubStore {
	return &stubStore{
		accounts: map[string]Account{},
		profiles: map[string]UserProfile{},
		wallets:  map[string]Wallet{},
		plans:    map[string]InvestmentPlan{},
	}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) GetAccount(_ context.Context, principal Principal) (Account, bool, error) {
	account, exists := store.accounts[principal.String()]
	return account, exists, nil
}

func (store *stubStore) CreateAccount(_ context.Context, account Account) error {
	store.accounts[account.Principal] = account
	return nil
}

func (store *stubStore) UpdateAccountRole(_ context.Context, principal Principal, role Role) error {
	account, exists := store.accounts[principal.String()]
	if !exists {
		return ErrUnknownUser
	}
	account.Role = role
	store.accounts[principal.String()] = account
	return nil
}

func (store *stubStore) SetAccountNumber(_ context.Context, principal Principal, number int64) error {
	for _, account := range store.accounts {
		if account.Number != nil && *account.Number == number {
			return ErrNumberTaken
		}
	}
	account, exists := store.accounts[principal.String()]
	if !exists {
		return ErrUnknownUser
	}
	account.Number = &number
	store.accounts[principal.String()] = account
	return nil
}

func (store *stubStore) GetProfile(_ context.Context, principal Principal) (UserProfile, bool, error) {
	profile, exists := store.profiles[principal.String()]
	return profile, exists, nil
}

func (store *stubStore) SaveProfile(_ context.Context, principal Principal, profile UserProfile) error {
	store.profiles[principal.String()] = profile
	return nil
}

func (store *stubStore) FindPrincipalByEmail(_ context.Context, email string) (Principal, bool, error) {
	for raw, profile := range store.profiles {
		if profile.Email == email {
			principal, err := NewPrincipal(raw)
			return principal, err == nil, err
		}
	}
	return Principal{}, false, nil
}

func (store *stubStore) GetWallet(_ context.Context, principal Principal) (Wallet, bool, error) {
	wallet, exists := store.wallets[principal.String()]
	return wallet, exists, nil
}

func (store *stubStore) SaveWallet(_ context.Context, principal Principal, wallet Wallet) error {
	store.wallets[principal.String()] = wallet
	return nil
}

func (store *stubStore) ListPlans(_ context.Context) ([]InvestmentPlan, error) {
	plans := make([]InvestmentPlan, 0, len(store.planOrder))
	for _, planID := range store.planOrder {
		plans = append(plans, store.plans[planID])
	}
	return plans, nil
}

func (store *stubStore) GetPlan(_ context.Context, planID string) (InvestmentPlan, bool, error) {
	plan, exists := store.plans[planID]
	return plan, exists, nil
}

func (store *stubStore) SeedPlans(_ context.Context, plans []InvestmentPlan) error {
	for _, plan := range plans {
		if _, exists := store.plans[plan.PlanID]; exists {
			continue
		}
		store.plans[plan.PlanID] = plan
		store.planOrder = append(store.planOrder, plan.PlanID)
	}
	return nil
}

func (store *stubStore) ListInsights(_ context.Context) ([]AIInsight, error) {
	return store.insights, nil
}

func (store *stubStore) SeedInsights(_ context.Context, insights []AIInsight) error {
	if len(store.insights) == 0 {
		store.insights = insights
	}
	return nil
}

func (store *stubStore) InsertLead(_ context.Context, lead Lead) error {
	store.leads = append(store.leads, lead)
	return nil
}

func (store *stubStore) ListLeads(_ context.Context) ([]Lead, error) {
	return store.leads, nil
}

func (store *stubStore) InsertDeposit(_ context.Context, deposit DepositRequest) error {
	store.deposits = append(store.deposits, deposit)
	return nil
}

func (store *stubStore) ListDeposits(_ context.Context) ([]DepositRequest, error) {
	return store.deposits, nil
}

func (store *stubStore) GetBotConfig(_ context.Context) (TelegramBotConfig, bool, error) {
	if store.botConfig == nil {
		return TelegramBotConfig{}, false, nil
	}
	return *store.botConfig, true, nil
}

func (store *stubStore) SaveBotConfig(_ context.Context, config TelegramBotConfig) error {
	store.botConfig = &config
	return nil
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, func() int64 { return 1700000000 }, options...)
	if err != nil {
		test.Fatalf("service init: %v", err)
	}
	return service
}

func mustPrincipal(test *testing.T, raw string) Principal {
	test.Helper()
	principal, err := NewPrincipal(raw)
	if err != nil {
		test.Fatalf("principal %q: %v", raw, err)
	}
	return principal
}

func registeredCaller(test *testing.T, service *Service, raw string) Principal {
	test.Helper()
	caller := mustPrincipal(test, raw)
	if err := service.RegisterAuthenticatedUser(context.Background(), caller); err != nil {
		test.Fatalf("register %q: %v", raw, err)
	}
	return caller
}

func adminCaller(test *testing.T, store *stubStore, service *Service, raw string) Principal {
	test.Helper()
	caller := registeredCaller(test, service, raw)
	account := store.accounts[caller.String()]
	account.Role = RoleAdmin
	store.accounts[caller.String()] = account
	return caller
}
