package webapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/NexaProfitLabs/platform/pkg/flow"
	"github.com/gin-gonic/gin"
)

type wizardStartRequest struct {
	PlanID string `json:"planId"`
}

type wizardAmountRequest struct {
	Amount string `json:"amount"`
}

// handleWizardStart opens a purchase wizard for the selected plan. Plan
// details and the available balance come through the query cache; the
// wizard always opens at the confirm step.
func (handler *httpHandler) handleWizardStart(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request wizardStartRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}

	plans, err := handler.cachedPlans(ctx)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	var selected *invest.InvestmentPlan
	for index := range plans {
		if plans[index].PlanID == request.PlanID {
			selected = &plans[index]
			break
		}
	}
	if selected == nil {
		ctx.JSON(http.StatusNotFound, errorResponse("unknown_plan", "no such investment plan"))
		return
	}

	balance, err := handler.cachedBalance(ctx, caller)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	availableBalance := 0.0
	if balance != nil {
		availableBalance = *balance
	}

	wizard, err := flow.NewPurchaseWizard(
		flow.PlanSummary{
			PlanID:                 selected.PlanID,
			Name:                   selected.Name,
			Description:            selected.Description,
			MinimumInvestmentRange: selected.MinimumInvestmentRange,
			WeeklyReturn:           selected.WeeklyReturn,
			RiskLevel:              selected.RiskLevel,
			AINarrative:            selected.AINarrative,
		},
		availableBalance,
		actorPurchaser{client: handler.actor, caller: caller},
		flow.WithWizardLogger(handler.flowLogger),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "wizard init failed"))
		return
	}

	_, state, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	state.openWizard(wizard)
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardView(ctx *gin.Context) {
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardContinue(ctx *gin.Context) {
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	if err := wizard.Continue(); err != nil {
		handler.respondWizardError(ctx, err)
		return
	}
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardAmount(ctx *gin.Context) {
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	var request wizardAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := wizard.EnterAmount(request.Amount); err != nil {
		handler.respondWizardError(ctx, err)
		return
	}
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardReview(ctx *gin.Context) {
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	var request wizardAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := wizard.Review(request.Amount); err != nil && !validationStaysInWizard(err) {
		handler.respondWizardError(ctx, err)
		return
	}
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardBack(ctx *gin.Context) {
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	if err := wizard.Back(); err != nil {
		handler.respondWizardError(ctx, err)
		return
	}
	handler.respondWizardView(ctx, wizard)
}

// handleWizardConfirm performs the purchase. Success invalidates the
// caller's wallet keys so the next read reflects the debit; failure
// keeps the wizard on review with the error in the view.
func (handler *httpHandler) handleWizardConfirm(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	wizard, ok := handler.openWizard(ctx)
	if !ok {
		return
	}
	err := wizard.Confirm(ctx.Request.Context())
	if err == nil {
		handler.cache.Invalidate(walletKeys(caller)...)
		handler.respondWizardView(ctx, wizard)
		return
	}
	if errors.Is(err, flow.ErrPurchaseInFlight) || errors.Is(err, flow.ErrWizardTransition) {
		handler.respondWizardError(ctx, err)
		return
	}
	handler.respondWizardView(ctx, wizard)
}

func (handler *httpHandler) handleWizardClose(ctx *gin.Context) {
	_, state, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	state.closeWizard(handler.cfg.WizardSettleDelay)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) openWizard(ctx *gin.Context) (*flow.PurchaseWizard, bool) {
	if handler.callerID(ctx) == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return nil, false
	}
	_, state, ok := handler.sessionID(ctx)
	if !ok {
		return nil, false
	}
	wizard := state.currentWizard()
	if wizard == nil {
		ctx.JSON(http.StatusNotFound, errorResponse("no_wizard", "no purchase wizard is open"))
		return nil, false
	}
	return wizard, true
}

func (handler *httpHandler) respondWizardView(ctx *gin.Context, wizard *flow.PurchaseWizard) {
	view := wizard.View()
	payload := gin.H{
		"step":                     string(view.Step),
		"planId":                   view.Plan.PlanID,
		"planName":                 view.Plan.Name,
		"amount":                   view.Amount,
		"errorMessage":             view.ErrorMessage,
		"inFlight":                 view.InFlight,
		"availableBalance":         view.AvailableBalance,
		"estimatedWeeklyEarnings":  view.EstimatedWeeklyEarnings,
		"formattedWeeklyEarnings":  view.FormattedWeeklyEarnings,
		"formattedAvailableAmount": view.FormattedAvailableAmount,
	}
	if view.Step == flow.StepSuccess {
		payload["successMessage"] = wizard.SuccessMessage()
	}
	ctx.JSON(http.StatusOK, gin.H{"wizard": payload})
}

func (handler *httpHandler) respondWizardError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, flow.ErrWizardTransition):
		ctx.JSON(http.StatusConflict, errorResponse("wizard_transition", err.Error()))
	case errors.Is(err, flow.ErrPurchaseInFlight):
		ctx.JSON(http.StatusConflict, errorResponse("purchase_in_flight", err.Error()))
	default:
		ctx.JSON(http.StatusBadRequest, errorResponse("wizard_error", err.Error()))
	}
}

// validationStaysInWizard reports whether a review failure is a
// validation outcome the wizard keeps in its own view rather than an
// HTTP-level error.
func validationStaysInWizard(err error) bool {
	return errors.Is(err, flow.ErrInvalidAmount) || errors.Is(err, flow.ErrInsufficientBalance)
}

// Admin handlers forward to the backend, which enforces the role.

type adminCreditRequest struct {
	Principal string  `json:"principal"`
	Amount    float64 `json:"amount"`
}

type adminBalanceRequest struct {
	Principal string  `json:"principal"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
}

type adminRoleRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

func (handler *httpHandler) handleAdminCredit(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request adminCreditRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := handler.actor.CreditUserWallet(ctx.Request.Context(), caller, request.Principal, request.Amount); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(walletKeys(request.Principal)...)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleAdminSetBalance(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request adminBalanceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	target := request.Principal
	if request.Email != "" {
		resolved, err := handler.actor.SetWalletBalanceByEmail(ctx.Request.Context(), caller, request.Email, request.Balance)
		if err != nil {
			handler.respondActorError(ctx, err)
			return
		}
		target = resolved
	} else if err := handler.actor.SetWalletBalance(ctx.Request.Context(), caller, request.Principal, request.Balance); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	if target != "" {
		handler.cache.Invalidate(walletKeys(target)...)
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleAdminAssignRole(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request adminRoleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	role, err := invest.ParseRole(request.Role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_role", err.Error()))
		return
	}
	if err := handler.actor.AssignRole(ctx.Request.Context(), caller, request.Principal, role); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(scopedKey(cacheKeyCallerRole, request.Principal))
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleAdminLeads(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), cacheKeyLeads, func(fetchCtx context.Context) (any, error) {
		return handler.actor.Leads(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	leads, _ := value.([]invest.Lead)
	ctx.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (handler *httpHandler) handleAdminDeposits(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	deposits, err := handler.actor.DepositRequests(ctx.Request.Context(), caller)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

func (handler *httpHandler) handleAdminTelegramGet(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	config, err := handler.actor.TelegramConfig(ctx.Request.Context(), caller)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"config": config})
}

func (handler *httpHandler) handleAdminTelegramUpdate(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var config invest.TelegramBotConfig
	if err := ctx.ShouldBindJSON(&config); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := handler.actor.UpdateTelegramConfig(ctx.Request.Context(), caller, config); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
