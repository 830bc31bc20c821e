package webapi

import (
	"context"

	"github.com/NexaProfitLabs/platform/internal/investclient"
	"github.com/NexaProfitLabs/platform/pkg/flow"
)

// actorRegistrar adapts the backend client to the guard's registrar.
type actorRegistrar struct {
	client *investclient.Client
}

func (registrar actorRegistrar) RegisterAuthenticatedUser(ctx context.Context, principal flow.Principal) error {
	return registrar.client.RegisterAuthenticatedUser(ctx, principal.String())
}

// actorPurchaser adapts the backend client to the wizard's purchaser,
// bound to the caller it acts for.
type actorPurchaser struct {
	client *investclient.Client
	caller string
}

func (purchaser actorPurchaser) PurchaseInvestmentPlan(ctx context.Context, planID string, amount float64) error {
	return purchaser.client.PurchaseInvestmentPlan(ctx, purchaser.caller, planID, amount)
}
