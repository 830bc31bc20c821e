package invest

import (
	"context"
	"math"
)

// InvestmentPlans lists the seeded plan catalogue.
func (service *Service) InvestmentPlans(ctx context.Context) ([]InvestmentPlan, error) {
	return service.store.ListPlans(ctx)
}

// AIInsights lists the seeded dashboard insights.
func (service *Service) AIInsights(ctx context.Context) ([]AIInsight, error) {
	return service.store.ListInsights(ctx)
}

// PurchaseInvestmentPlan debits the caller's balance by amount dollars
// and adds amount times the plan's weekly return to the accumulated
// weekly-return figure.
func (service *Service) PurchaseInvestmentPlan(ctx context.Context, caller Principal, planID string, amount float64) error {
	operationError := func() error {
		if err := service.requireCaller(caller); err != nil {
			return err
		}
		amountCents, err := DollarsToCents(amount)
		if err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			plan, exists, err := transactionStore.GetPlan(ctx, planID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrUnknownPlan
			}
			wallet, exists, err := transactionStore.GetWallet(ctx, caller)
			if err != nil {
				return err
			}
			if !exists {
				return ErrWalletNotInitialized
			}
			if wallet.BalanceCents < amountCents {
				return ErrInsufficientBalance
			}
			wallet.BalanceCents -= amountCents
			wallet.WeeklyReturnCents += int64(math.Round(float64(amountCents) * plan.WeeklyReturn))
			return transactionStore.SaveWallet(ctx, caller, wallet)
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationPurchase,
		Principal: caller,
		Subject:   planID,
		Amount:    amount,
		Error:     operationError,
	})
	return operationError
}
