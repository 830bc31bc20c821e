package investclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/NexaProfitLabs/platform/internal/investapi"
	"github.com/NexaProfitLabs/platform/internal/store/gormstore"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testServiceToken = "client-test-token"

func newBackendServer(test *testing.T) *httptest.Server {
	test.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		test.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(gormstore.Models()...); err != nil {
		test.Fatalf("migrate: %v", err)
	}
	store := gormstore.New(db)
	service, err := invest.NewService(store, func() int64 { return 1700000000 }, invest.WithAdminBootstrap("principal-root"))
	if err != nil {
		test.Fatalf("service init: %v", err)
	}
	if err := service.SeedCatalogue(context.Background()); err != nil {
		test.Fatalf("seed: %v", err)
	}
	router := investapi.NewRouter(investapi.Config{ServiceToken: testServiceToken}, service, zap.NewNop())
	server := httptest.NewServer(router)
	test.Cleanup(server.Close)
	return server
}

func newTestClient(test *testing.T) *Client {
	test.Helper()
	server := newBackendServer(test)
	client, err := New(server.URL, testServiceToken)
	if err != nil {
		test.Fatalf("client init: %v", err)
	}
	return client
}

func TestClientRegisterAndWalletRoundTrip(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	if err := client.RegisterAuthenticatedUser(ctx, "principal-root"); err != nil {
		test.Fatalf("register admin: %v", err)
	}
	if err := client.RegisterAuthenticatedUser(ctx, "principal-alice"); err != nil {
		test.Fatalf("register user: %v", err)
	}

	balance, err := client.CallerWalletBalance(ctx, "principal-alice")
	if err != nil {
		test.Fatalf("balance: %v", err)
	}
	if balance == nil || *balance != 0 {
		test.Fatalf("expected zero opening balance, got %v", balance)
	}

	if err := client.CreditUserWallet(ctx, "principal-root", "principal-alice", 250.50); err != nil {
		test.Fatalf("credit: %v", err)
	}
	balance, err = client.CallerWalletBalance(ctx, "principal-alice")
	if err != nil {
		test.Fatalf("balance after credit: %v", err)
	}
	if balance == nil || *balance != 250.50 {
		test.Fatalf("expected balance 250.50, got %v", balance)
	}
}

func TestClientPurchaseUpdatesWeeklyReturn(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	if err := client.RegisterAuthenticatedUser(ctx, "principal-root"); err != nil {
		test.Fatalf("register admin: %v", err)
	}
	if err := client.RegisterAuthenticatedUser(ctx, "principal-alice"); err != nil {
		test.Fatalf("register user: %v", err)
	}
	if err := client.CreditUserWallet(ctx, "principal-root", "principal-alice", 200); err != nil {
		test.Fatalf("credit: %v", err)
	}
	if err := client.PurchaseInvestmentPlan(ctx, "principal-alice", "balanced-growth", 100); err != nil {
		test.Fatalf("purchase: %v", err)
	}

	weekly, err := client.CallerWeeklyReturn(ctx, "principal-alice")
	if err != nil {
		test.Fatalf("weekly return: %v", err)
	}
	if weekly == nil || *weekly != 5 {
		test.Fatalf("expected weekly return 5, got %v", weekly)
	}
}

func TestClientPurchaseErrorsCarrySentinels(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	if err := client.RegisterAuthenticatedUser(ctx, "principal-alice"); err != nil {
		test.Fatalf("register: %v", err)
	}
	err := client.PurchaseInvestmentPlan(ctx, "principal-alice", "balanced-growth", 100)
	if err == nil {
		test.Fatal("expected insufficient balance failure")
	}
	if !errors.Is(err, invest.ErrInsufficientBalance) {
		test.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	err = client.PurchaseInvestmentPlan(ctx, "principal-alice", "no-such-plan", 100)
	if !errors.Is(err, invest.ErrUnknownPlan) {
		test.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestClientAdminRejectionKeepsMessageVerbatim(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	if err := client.RegisterAuthenticatedUser(ctx, "principal-alice"); err != nil {
		test.Fatalf("register: %v", err)
	}
	_, err := client.Leads(ctx, "principal-alice")
	if err == nil {
		test.Fatal("expected admin rejection")
	}
	if !errors.Is(err, invest.ErrNotAdmin) {
		test.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unauthorized: Only admins can perform this action") {
		test.Fatalf("expected verbatim admin message, got %q", err.Error())
	}

	var apiError *APIError
	if !errors.As(err, &apiError) {
		test.Fatalf("expected APIError, got %T", err)
	}
	if apiError.Status != 403 || apiError.Code != invest.CodeNotAdmin {
		test.Fatalf("unexpected APIError %+v", apiError)
	}
}

func TestClientPublicSurfaceNeedsNoCaller(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	plans, err := client.InvestmentPlans(ctx)
	if err != nil {
		test.Fatalf("plans: %v", err)
	}
	if len(plans) != 3 {
		test.Fatalf("expected 3 seeded plans, got %d", len(plans))
	}

	insights, err := client.AIInsights(ctx)
	if err != nil {
		test.Fatalf("insights: %v", err)
	}
	if len(insights) == 0 {
		test.Fatal("expected seeded insights")
	}

	lead := invest.Lead{Name: "Alice", Email: "alice@example.com", Message: "Interested in the balanced plan"}
	if err := client.SubmitLead(ctx, lead); err != nil {
		test.Fatalf("submit lead: %v", err)
	}
}

func TestClientDepositEligibilityChain(test *testing.T) {
	test.Parallel()
	client := newTestClient(test)
	ctx := context.Background()

	eligibility, err := client.CheckDepositEligibility(ctx, "")
	if err != nil {
		test.Fatalf("anonymous eligibility: %v", err)
	}
	if eligibility.IsEligible || !eligibility.RequiresAuthentication {
		test.Fatalf("expected auth requirement, got %+v", eligibility)
	}

	if err := client.RegisterAuthenticatedUser(ctx, "principal-alice"); err != nil {
		test.Fatalf("register: %v", err)
	}
	if err := client.RegisterNumber(ctx, "principal-alice", 77); err != nil {
		test.Fatalf("register number: %v", err)
	}
	profile := invest.UserProfile{Name: "Alice", Email: "alice@example.com", InvestmentPreference: "balanced"}
	if err := client.SaveCallerProfile(ctx, "principal-alice", profile); err != nil {
		test.Fatalf("save profile: %v", err)
	}

	eligibility, err = client.CheckDepositEligibility(ctx, "principal-alice")
	if err != nil {
		test.Fatalf("eligibility: %v", err)
	}
	if !eligibility.IsEligible {
		test.Fatalf("expected eligible, got %+v", eligibility)
	}

	message, err := client.SubmitDeposit(ctx, "principal-alice", []byte("screenshot-bytes"))
	if err != nil {
		test.Fatalf("submit deposit: %v", err)
	}
	if message == "" {
		test.Fatal("expected confirmation message")
	}
}
