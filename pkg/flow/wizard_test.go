package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakePurchaser struct {
	calls   int
	planID  string
	amount  float64
	failure error
	started chan struct{}
	block   chan struct{}
}

func (purchaser *fakePurchaser) PurchaseInvestmentPlan(_ context.Context, planID string, amount float64) error {
	if purchaser.started != nil {
		close(purchaser.started)
	}
	if purchaser.block != nil {
		<-purchaser.block
	}
	purchaser.calls++
	purchaser.planID = planID
	purchaser.amount = amount
	return purchaser.failure
}

func growthPlan() PlanSummary {
	return PlanSummary{
		PlanID:                 "plan-growth",
		Name:                   "Growth Fund",
		Description:            "Balanced growth portfolio",
		MinimumInvestmentRange: "$100 - $10,000",
		WeeklyReturn:           0.05,
		RiskLevel:              "Medium",
	}
}

func newTestWizard(t *testing.T, balance float64, purchaser PlanPurchaser) *PurchaseWizard {
	t.Helper()
	wizard, err := NewPurchaseWizard(growthPlan(), balance, purchaser)
	if err != nil {
		t.Fatalf("wizard init failed: %v", err)
	}
	return wizard
}

func TestWizardStartsAtConfirm(t *testing.T) {
	wizard := newTestWizard(t, 1000, &fakePurchaser{})
	if wizard.Step() != StepConfirm {
		t.Fatalf("expected confirm step, got %q", wizard.Step())
	}
	view := wizard.View()
	if view.Plan.Name != "Growth Fund" || view.ErrorMessage != "" {
		t.Fatalf("unexpected initial view %+v", view)
	}
}

func TestWizardRejectsPlanWithoutIdentifier(t *testing.T) {
	if _, err := NewPurchaseWizard(PlanSummary{Name: "nameless"}, 100, &fakePurchaser{}); !errors.Is(err, ErrNoPlanSelected) {
		t.Fatalf("expected ErrNoPlanSelected, got %v", err)
	}
}

func TestWizardContinueMovesConfirmToAmount(t *testing.T) {
	wizard := newTestWizard(t, 1000, &fakePurchaser{})
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if wizard.Step() != StepAmount {
		t.Fatalf("expected amount step, got %q", wizard.Step())
	}
	if err := wizard.Continue(); err == nil {
		t.Fatalf("expected transition error when continuing past amount")
	}
}

func TestWizardReviewRejectsInvalidAmounts(t *testing.T) {
	invalid := []string{"", "   ", "abc", "12abc", "-5", "0", "NaN", "Inf"}
	for _, raw := range invalid {
		wizard := newTestWizard(t, 1000, &fakePurchaser{})
		if err := wizard.Continue(); err != nil {
			t.Fatalf("continue failed: %v", err)
		}
		if err := wizard.Review(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", raw, err)
		}
		view := wizard.View()
		if view.Step != StepAmount {
			t.Fatalf("amount %q: wizard advanced to %q", raw, view.Step)
		}
		if view.ErrorMessage != "Please enter a valid amount" {
			t.Fatalf("amount %q: unexpected message %q", raw, view.ErrorMessage)
		}
	}
}

func TestWizardReviewRejectsAmountOverBalance(t *testing.T) {
	wizard := newTestWizard(t, 200, &fakePurchaser{})
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("500"); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	view := wizard.View()
	if view.Step != StepAmount {
		t.Fatalf("wizard advanced to %q", view.Step)
	}
	if view.ErrorMessage != "Wallet doesn't have enough balance" {
		t.Fatalf("unexpected message %q", view.ErrorMessage)
	}
}

func TestWizardReviewComputesWeeklyEarnings(t *testing.T) {
	wizard := newTestWizard(t, 1000, &fakePurchaser{})
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	view := wizard.View()
	if view.Step != StepReview {
		t.Fatalf("expected review step, got %q", view.Step)
	}
	if view.Amount != "100" {
		t.Fatalf("unexpected amount %q", view.Amount)
	}
	if view.FormattedWeeklyEarnings != "$5.00" {
		t.Fatalf("unexpected weekly earnings %q", view.FormattedWeeklyEarnings)
	}
}

func TestWizardBackWalksReviewToAmountToConfirm(t *testing.T) {
	wizard := newTestWizard(t, 1000, &fakePurchaser{})
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := wizard.Back(); err != nil {
		t.Fatalf("back from review failed: %v", err)
	}
	if wizard.Step() != StepAmount {
		t.Fatalf("expected amount step, got %q", wizard.Step())
	}
	if err := wizard.Back(); err != nil {
		t.Fatalf("back from amount failed: %v", err)
	}
	if wizard.Step() != StepConfirm {
		t.Fatalf("expected confirm step, got %q", wizard.Step())
	}
	if err := wizard.Back(); err == nil {
		t.Fatalf("expected transition error backing out of confirm")
	}
}

func TestWizardBackClearsValidationError(t *testing.T) {
	wizard := newTestWizard(t, 200, &fakePurchaser{})
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("500"); err == nil {
		t.Fatalf("expected validation failure")
	}
	if err := wizard.Back(); err != nil {
		t.Fatalf("back failed: %v", err)
	}
	if view := wizard.View(); view.ErrorMessage != "" {
		t.Fatalf("expected cleared error, got %q", view.ErrorMessage)
	}
}

func TestWizardConfirmPurchasesAndReportsSuccess(t *testing.T) {
	purchaser := &fakePurchaser{}
	wizard := newTestWizard(t, 1000, purchaser)
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := wizard.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if wizard.Step() != StepSuccess {
		t.Fatalf("expected success step, got %q", wizard.Step())
	}
	if purchaser.calls != 1 || purchaser.planID != "plan-growth" || purchaser.amount != 100 {
		t.Fatalf("unexpected purchase call %+v", purchaser)
	}
	message := wizard.SuccessMessage()
	if !strings.Contains(message, "invested $100.00") || !strings.Contains(message, "Growth Fund") {
		t.Fatalf("unexpected success message %q", message)
	}
}

func TestWizardConfirmFailureStaysOnReview(t *testing.T) {
	purchaser := &fakePurchaser{failure: errors.New("wallet backend unavailable")}
	wizard := newTestWizard(t, 1000, purchaser)
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := wizard.Confirm(context.Background()); err == nil {
		t.Fatalf("expected confirm failure")
	}
	view := wizard.View()
	if view.Step != StepReview {
		t.Fatalf("expected review step after failure, got %q", view.Step)
	}
	if view.ErrorMessage == "" {
		t.Fatalf("expected error message after failed purchase")
	}
	if err := wizard.Confirm(context.Background()); err == nil {
		t.Fatalf("expected retry to fail again")
	}
	if purchaser.calls != 2 {
		t.Fatalf("expected retry to reach purchaser, got %d calls", purchaser.calls)
	}
}

func TestWizardConfirmOnlyAllowedFromReview(t *testing.T) {
	wizard := newTestWizard(t, 1000, &fakePurchaser{})
	if err := wizard.Confirm(context.Background()); !errors.Is(err, ErrWizardTransition) {
		t.Fatalf("expected transition error from confirm step, got %v", err)
	}
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Confirm(context.Background()); !errors.Is(err, ErrWizardTransition) {
		t.Fatalf("expected transition error from amount step, got %v", err)
	}
}

func TestWizardConcurrentConfirmRunsPurchaseOnce(t *testing.T) {
	purchaser := &fakePurchaser{started: make(chan struct{}), block: make(chan struct{})}
	wizard := newTestWizard(t, 1000, purchaser)
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	first := make(chan error, 1)
	go func() {
		first <- wizard.Confirm(context.Background())
	}()
	<-purchaser.started
	if err := wizard.Confirm(context.Background()); !errors.Is(err, ErrPurchaseInFlight) {
		t.Fatalf("expected ErrPurchaseInFlight, got %v", err)
	}
	close(purchaser.block)
	if err := <-first; err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if purchaser.calls != 1 {
		t.Fatalf("expected single purchase, got %d", purchaser.calls)
	}
}

func TestWizardResetReturnsToConfirm(t *testing.T) {
	purchaser := &fakePurchaser{}
	wizard := newTestWizard(t, 1000, purchaser)
	if err := wizard.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := wizard.Review("100"); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := wizard.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	wizard.Reset()
	view := wizard.View()
	if view.Step != StepConfirm || view.ErrorMessage != "" || view.Amount != "" {
		t.Fatalf("unexpected view after reset %+v", view)
	}
}
