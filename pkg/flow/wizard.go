package flow

import (
	"context"
	"fmt"
	"sync"
)

// WizardStep enumerates the purchase wizard states.
type WizardStep string

const (
	StepConfirm WizardStep = "confirm"
	StepAmount  WizardStep = "amount"
	StepReview  WizardStep = "review"
	StepSuccess WizardStep = "success"
)

// PlanSummary carries the plan details the wizard is bound to.
type PlanSummary struct {
	PlanID                 string
	Name                   string
	Description            string
	MinimumInvestmentRange string
	WeeklyReturn           float64
	RiskLevel              string
	AINarrative            string
}

// PlanPurchaser issues the remote purchase call for the review step.
type PlanPurchaser interface {
	PurchaseInvestmentPlan(ctx context.Context, planID string, amount float64) error
}

// WizardView is a read-only snapshot of the wizard state.
type WizardView struct {
	Step                     WizardStep
	Plan                     PlanSummary
	Amount                   string
	ErrorMessage             string
	InFlight                 bool
	AvailableBalance         float64
	EstimatedWeeklyEarnings  float64
	FormattedWeeklyEarnings  string
	FormattedAvailableAmount string
}

// PurchaseWizard is the four-step investment purchase flow:
// confirm -> amount -> review -> success, with back-navigation from
// amount and review. State is entirely session-local and discarded on
// close.
type PurchaseWizard struct {
	mu               sync.Mutex
	plan             PlanSummary
	availableBalance float64
	purchaser        PlanPurchaser
	logger           OperationLogger

	step         WizardStep
	amount       string
	errorMessage string
	inFlight     bool
}

// WizardOption configures a PurchaseWizard.
type WizardOption func(*PurchaseWizard)

// WithWizardLogger wires a logger that receives purchase outcomes.
func WithWizardLogger(logger OperationLogger) WizardOption {
	return func(wizard *PurchaseWizard) {
		wizard.logger = logger
	}
}

// NewPurchaseWizard opens a wizard bound to the selected plan. The flow
// always starts at the confirm step. The purchaser may be nil when no
// actor is configured; confirming then fails without leaving review.
func NewPurchaseWizard(plan PlanSummary, availableBalance float64, purchaser PlanPurchaser, options ...WizardOption) (*PurchaseWizard, error) {
	if plan.PlanID == "" {
		return nil, fmt.Errorf("%w: missing plan id", ErrNoPlanSelected)
	}
	wizard := &PurchaseWizard{
		plan:             plan,
		availableBalance: availableBalance,
		purchaser:        purchaser,
		step:             StepConfirm,
	}
	for _, option := range options {
		if option != nil {
			option(wizard)
		}
	}
	return wizard, nil
}

// Continue advances confirm -> amount.
func (wizard *PurchaseWizard) Continue() error {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	if wizard.step != StepConfirm {
		return fmt.Errorf("%w: continue from %s", ErrWizardTransition, wizard.step)
	}
	wizard.step = StepAmount
	return nil
}

// EnterAmount records the typed amount and clears any prior validation
// error, mirroring field edits on the amount step.
func (wizard *PurchaseWizard) EnterAmount(raw string) error {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	if wizard.step != StepAmount {
		return fmt.Errorf("%w: enter amount from %s", ErrWizardTransition, wizard.step)
	}
	wizard.amount = raw
	wizard.errorMessage = ""
	return nil
}

// Review validates the entered amount and advances amount -> review.
// Invalid input keeps the wizard on the amount step with the validation
// message set.
func (wizard *PurchaseWizard) Review(rawAmount string) error {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	if wizard.step != StepAmount {
		return fmt.Errorf("%w: review from %s", ErrWizardTransition, wizard.step)
	}
	wizard.amount = rawAmount
	parsed, err := ParseAmount(rawAmount)
	if err != nil {
		wizard.errorMessage = messageInvalidAmount
		return err
	}
	if parsed > wizard.availableBalance {
		wizard.errorMessage = messageInsufficientBalance
		return fmt.Errorf("%w: %s exceeds available %s", ErrInsufficientBalance, FormatUSD(parsed), FormatUSD(wizard.availableBalance))
	}
	wizard.errorMessage = ""
	wizard.step = StepReview
	return nil
}

// Back navigates review -> amount or amount -> confirm, clearing any
// error and any in-flight purchase state.
func (wizard *PurchaseWizard) Back() error {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	switch wizard.step {
	case StepAmount:
		wizard.step = StepConfirm
	case StepReview:
		wizard.step = StepAmount
	default:
		return fmt.Errorf("%w: back from %s", ErrWizardTransition, wizard.step)
	}
	wizard.errorMessage = ""
	wizard.inFlight = false
	return nil
}

// Confirm issues the remote purchase from the review step. Success
// advances to the terminal success step; failure keeps the wizard on
// review with a non-empty error message.
func (wizard *PurchaseWizard) Confirm(ctx context.Context) error {
	wizard.mu.Lock()
	if wizard.step != StepReview {
		wizard.mu.Unlock()
		return fmt.Errorf("%w: confirm from %s", ErrWizardTransition, wizard.step)
	}
	if wizard.inFlight {
		wizard.mu.Unlock()
		return ErrPurchaseInFlight
	}
	amount, err := ParseAmount(wizard.amount)
	if err != nil {
		wizard.errorMessage = messageInvalidAmount
		wizard.mu.Unlock()
		return err
	}
	if wizard.purchaser == nil {
		wizard.errorMessage = ErrActorUnavailable.Error()
		wizard.mu.Unlock()
		return ErrActorUnavailable
	}
	wizard.inFlight = true
	planID := wizard.plan.PlanID
	logger := wizard.logger
	wizard.mu.Unlock()

	purchaseErr := wizard.purchaser.PurchaseInvestmentPlan(ctx, planID, amount)

	wizard.mu.Lock()
	wizard.inFlight = false
	if purchaseErr != nil {
		wizard.errorMessage = purchaseErr.Error()
	} else {
		wizard.errorMessage = ""
		wizard.step = StepSuccess
	}
	wizard.mu.Unlock()

	logOperation(ctx, logger, OperationLog{
		Operation: operationPurchase,
		Step:      StepReview,
		Amount:    amount,
		Error:     purchaseErr,
	})
	return purchaseErr
}

// Reset returns the wizard to its initial state. The caller schedules
// this after the dialog-close settle delay.
func (wizard *PurchaseWizard) Reset() {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	wizard.step = StepConfirm
	wizard.amount = ""
	wizard.errorMessage = ""
	wizard.inFlight = false
}

// View returns a consistent snapshot of the wizard state.
func (wizard *PurchaseWizard) View() WizardView {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	earnings := wizard.estimatedWeeklyEarningsLocked()
	return WizardView{
		Step:                     wizard.step,
		Plan:                     wizard.plan,
		Amount:                   wizard.amount,
		ErrorMessage:             wizard.errorMessage,
		InFlight:                 wizard.inFlight,
		AvailableBalance:         wizard.availableBalance,
		EstimatedWeeklyEarnings:  earnings,
		FormattedWeeklyEarnings:  FormatUSD(earnings),
		FormattedAvailableAmount: FormatUSD(wizard.availableBalance),
	}
}

// Step returns the current wizard step.
func (wizard *PurchaseWizard) Step() WizardStep {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	return wizard.step
}

// SuccessMessage renders the terminal confirmation line.
func (wizard *PurchaseWizard) SuccessMessage() string {
	wizard.mu.Lock()
	defer wizard.mu.Unlock()
	amount, err := ParseAmount(wizard.amount)
	if err != nil {
		amount = 0
	}
	return fmt.Sprintf("You have successfully invested %s in %s.", FormatUSD(amount), wizard.plan.Name)
}

func (wizard *PurchaseWizard) estimatedWeeklyEarningsLocked() float64 {
	amount, err := ParseAmount(wizard.amount)
	if err != nil {
		return 0
	}
	return amount * wizard.plan.WeeklyReturn
}
