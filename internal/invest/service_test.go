package invest

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAuthenticatedUserCreatesAccountAndWallet(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	caller := mustPrincipal(test, "principal-alice")

	if err := service.RegisterAuthenticatedUser(context.Background(), caller); err != nil {
		test.Fatalf("register: %v", err)
	}

	account, exists := store.accounts[caller.String()]
	if !exists {
		test.Fatalf("expected account to exist")
	}
	if account.Role != RoleUser {
		test.Fatalf("expected user role, got %s", account.Role)
	}
	wallet, exists := store.wallets[caller.String()]
	if !exists {
		test.Fatalf("expected wallet to exist")
	}
	if wallet.BalanceCents != 0 || wallet.WeeklyReturnCents != 0 {
		test.Fatalf("expected zeroed wallet, got %+v", wallet)
	}
}

func TestRegisterAuthenticatedUserIsIdempotent(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	caller := registeredCaller(test, service, "principal-alice")

	store.wallets[caller.String()] = Wallet{BalanceCents: 5000}

	if err := service.RegisterAuthenticatedUser(context.Background(), caller); err != nil {
		test.Fatalf("second register: %v", err)
	}
	if store.wallets[caller.String()].BalanceCents != 5000 {
		test.Fatalf("repeat registration reset the wallet")
	}
}

func TestRegisterAuthenticatedUserRejectsAnonymous(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	if err := service.RegisterAuthenticatedUser(context.Background(), Principal{}); !errors.Is(err, ErrNotAuthenticated) {
		test.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestBootstrapAdminReceivesAdminRole(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store, WithAdminBootstrap("principal-root"))
	caller := registeredCaller(test, service, "principal-root")

	if store.accounts[caller.String()].Role != RoleAdmin {
		test.Fatalf("expected bootstrap admin role, got %s", store.accounts[caller.String()].Role)
	}
}

func TestRegisterNumberOncePerCallerAndUnique(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	alice := registeredCaller(test, service, "principal-alice")
	bob := registeredCaller(test, service, "principal-bob")

	if err := service.RegisterNumber(context.Background(), alice, 42); err != nil {
		test.Fatalf("register number: %v", err)
	}
	if err := service.RegisterNumber(context.Background(), alice, 43); !errors.Is(err, ErrNumberRegistered) {
		test.Fatalf("expected ErrNumberRegistered, got %v", err)
	}
	if err := service.RegisterNumber(context.Background(), bob, 42); !errors.Is(err, ErrNumberTaken) {
		test.Fatalf("expected ErrNumberTaken, got %v", err)
	}
	if err := service.RegisterNumber(context.Background(), bob, 0); !errors.Is(err, ErrInvalidNumber) {
		test.Fatalf("expected ErrInvalidNumber, got %v", err)
	}

	number, err := service.CallerNumber(context.Background(), alice)
	if err != nil {
		test.Fatalf("caller number: %v", err)
	}
	if number == nil || *number != 42 {
		test.Fatalf("expected number 42, got %v", number)
	}
}

func TestCallerProfileNilUntilSaved(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	caller := registeredCaller(test, service, "principal-alice")

	profile, err := service.CallerProfile(context.Background(), caller)
	if err != nil {
		test.Fatalf("profile: %v", err)
	}
	if profile != nil {
		test.Fatalf("expected nil profile before save, got %+v", profile)
	}

	saved := UserProfile{Name: "Alice", Email: "alice@example.com", InvestmentPreference: "balanced"}
	if err := service.SaveCallerProfile(context.Background(), caller, saved); err != nil {
		test.Fatalf("save profile: %v", err)
	}
	profile, err = service.CallerProfile(context.Background(), caller)
	if err != nil {
		test.Fatalf("profile after save: %v", err)
	}
	if profile == nil || *profile != saved {
		test.Fatalf("expected saved profile, got %+v", profile)
	}
}

func TestSaveCallerProfileValidatesFields(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	caller := registeredCaller(test, service, "principal-alice")

	invalid := []UserProfile{
		{Name: "", Email: "alice@example.com"},
		{Name: "Alice", Email: ""},
		{Name: "Alice", Email: "not-an-email"},
		{Name: "Alice", Email: "alice@nodot"},
	}
	for _, profile := range invalid {
		if err := service.SaveCallerProfile(context.Background(), caller, profile); !errors.Is(err, ErrInvalidProfile) {
			test.Fatalf("profile %+v: expected ErrInvalidProfile, got %v", profile, err)
		}
	}
}

func TestCallerRoleDefaultsToGuest(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)

	role, err := service.CallerRole(context.Background(), Principal{})
	if err != nil || role != RoleGuest {
		test.Fatalf("anonymous role = %s, %v", role, err)
	}
	role, err = service.CallerRole(context.Background(), mustPrincipal(test, "never-registered"))
	if err != nil || role != RoleGuest {
		test.Fatalf("unregistered role = %s, %v", role, err)
	}

	caller := registeredCaller(test, service, "principal-alice")
	role, err = service.CallerRole(context.Background(), caller)
	if err != nil || role != RoleUser {
		test.Fatalf("registered role = %s, %v", role, err)
	}
}

func TestAssignRoleRequiresAdmin(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	alice := registeredCaller(test, service, "principal-alice")
	bob := registeredCaller(test, service, "principal-bob")

	if err := service.AssignRole(context.Background(), alice, bob, RoleAdmin); !errors.Is(err, ErrNotAdmin) {
		test.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	root := adminCaller(test, store, service, "principal-root")
	if err := service.AssignRole(context.Background(), root, bob, RoleAdmin); err != nil {
		test.Fatalf("assign role: %v", err)
	}
	isAdmin, err := service.IsCallerAdmin(context.Background(), bob)
	if err != nil || !isAdmin {
		test.Fatalf("expected bob to be admin, got %v, %v", isAdmin, err)
	}
}

func TestUserProfileOfRequiresAdmin(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	alice := registeredCaller(test, service, "principal-alice")

	if _, err := service.UserProfileOf(context.Background(), alice, alice); !errors.Is(err, ErrNotAdmin) {
		test.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}
