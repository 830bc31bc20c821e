package investapi

import (
	"encoding/base64"
	"net/http"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type actorHandler struct {
	service *invest.Service
	logger  *zap.Logger
}

type registerNumberRequest struct {
	Number int64 `json:"number"`
}

type assignRoleRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

type creditWalletRequest struct {
	Principal string  `json:"principal"`
	Amount    float64 `json:"amount"`
}

type setBalanceRequest struct {
	Principal string  `json:"principal"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
}

type purchaseRequest struct {
	PlanID string  `json:"planId"`
	Amount float64 `json:"amount"`
}

type submitDepositRequest struct {
	Screenshot string `json:"screenshot"`
}

func (handler *actorHandler) handleRegister(ctx *gin.Context) {
	caller := callerPrincipal(ctx)
	if err := handler.service.RegisterAuthenticatedUser(ctx.Request.Context(), caller); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleRegisterNumber(ctx *gin.Context) {
	var request registerNumberRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	if err := handler.service.RegisterNumber(ctx.Request.Context(), callerPrincipal(ctx), request.Number); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleCallerNumber(ctx *gin.Context) {
	number, err := handler.service.CallerNumber(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"number": number})
}

func (handler *actorHandler) handleCallerProfile(ctx *gin.Context) {
	profile, err := handler.service.CallerProfile(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (handler *actorHandler) handleSaveProfile(ctx *gin.Context) {
	var profile invest.UserProfile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	if err := handler.service.SaveCallerProfile(ctx.Request.Context(), callerPrincipal(ctx), profile); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleUserProfile(ctx *gin.Context) {
	target, err := invest.NewPrincipal(ctx.Param("principal"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	profile, err := handler.service.UserProfileOf(ctx.Request.Context(), callerPrincipal(ctx), target)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (handler *actorHandler) handleCallerRole(ctx *gin.Context) {
	role, err := handler.service.CallerRole(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"role": role})
}

func (handler *actorHandler) handleIsAdmin(ctx *gin.Context) {
	isAdmin, err := handler.service.IsCallerAdmin(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"isAdmin": isAdmin})
}

func (handler *actorHandler) handleAssignRole(ctx *gin.Context) {
	var request assignRoleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	target, err := invest.NewPrincipal(request.Principal)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	role, err := invest.ParseRole(request.Role)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if err := handler.service.AssignRole(ctx.Request.Context(), callerPrincipal(ctx), target, role); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleWalletBalance(ctx *gin.Context) {
	balance, err := handler.service.CallerWalletBalance(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (handler *actorHandler) handleWeeklyReturn(ctx *gin.Context) {
	weeklyReturn, err := handler.service.CallerWeeklyReturn(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"weeklyReturn": weeklyReturn})
}

func (handler *actorHandler) handleInitializeWallet(ctx *gin.Context) {
	if err := handler.service.InitializeCallerWallet(ctx.Request.Context(), callerPrincipal(ctx)); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleCreditWallet(ctx *gin.Context) {
	var request creditWalletRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	target, err := invest.NewPrincipal(request.Principal)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if err := handler.service.CreditUserWallet(ctx.Request.Context(), callerPrincipal(ctx), target, request.Amount); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleSetBalance(ctx *gin.Context) {
	var request setBalanceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	caller := callerPrincipal(ctx)
	if request.Email != "" {
		target, err := handler.service.SetWalletBalanceByEmail(ctx.Request.Context(), caller, request.Email, request.Balance)
		if err != nil {
			handler.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "principal": target.String()})
		return
	}
	target, err := invest.NewPrincipal(request.Principal)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if err := handler.service.SetWalletBalance(ctx.Request.Context(), caller, target, request.Balance); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleUserWalletBalance(ctx *gin.Context) {
	target, err := invest.NewPrincipal(ctx.Param("principal"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	balance, err := handler.service.UserWalletBalance(ctx.Request.Context(), callerPrincipal(ctx), target)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (handler *actorHandler) handleUserWeeklyReturn(ctx *gin.Context) {
	target, err := invest.NewPrincipal(ctx.Param("principal"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	weeklyReturn, err := handler.service.UserWeeklyReturn(ctx.Request.Context(), callerPrincipal(ctx), target)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"weeklyReturn": weeklyReturn})
}

func (handler *actorHandler) handlePlans(ctx *gin.Context) {
	plans, err := handler.service.InvestmentPlans(ctx.Request.Context())
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (handler *actorHandler) handlePurchase(ctx *gin.Context) {
	var request purchaseRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	if err := handler.service.PurchaseInvestmentPlan(ctx.Request.Context(), callerPrincipal(ctx), request.PlanID, request.Amount); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleInsights(ctx *gin.Context) {
	insights, err := handler.service.AIInsights(ctx.Request.Context())
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (handler *actorHandler) handleSubmitLead(ctx *gin.Context) {
	var lead invest.Lead
	if err := ctx.ShouldBindJSON(&lead); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	if err := handler.service.SubmitLead(ctx.Request.Context(), lead); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) handleLeads(ctx *gin.Context) {
	leads, err := handler.service.Leads(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (handler *actorHandler) handleDepositEligibility(ctx *gin.Context) {
	eligibility, err := handler.service.CheckDepositEligibility(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"eligibility": eligibility})
}

func (handler *actorHandler) handleSubmitDeposit(ctx *gin.Context) {
	var request submitDepositRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	screenshot, err := base64.StdEncoding.DecodeString(request.Screenshot)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "screenshot must be base64"))
		return
	}
	message, err := handler.service.SubmitDeposit(ctx.Request.Context(), callerPrincipal(ctx), screenshot)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message})
}

func (handler *actorHandler) handleDeposits(ctx *gin.Context) {
	deposits, err := handler.service.DepositRequests(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

func (handler *actorHandler) handleTelegramConfig(ctx *gin.Context) {
	config, err := handler.service.TelegramConfig(ctx.Request.Context(), callerPrincipal(ctx))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"config": config})
}

func (handler *actorHandler) handleUpdateTelegramConfig(ctx *gin.Context) {
	var config invest.TelegramBotConfig
	if err := ctx.ShouldBindJSON(&config); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(invest.CodeInvalidArgument, "expected JSON body"))
		return
	}
	if err := handler.service.UpdateTelegramConfig(ctx.Request.Context(), callerPrincipal(ctx), config); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *actorHandler) respondError(ctx *gin.Context, err error) {
	code := invest.CodeOf(err)
	if code == invest.CodeInternal && handler.logger != nil {
		handler.logger.Error("actor operation failed", zap.Error(err))
	}
	ctx.JSON(statusOf(code), errorResponse(code, err.Error()))
}

func callerPrincipal(ctx *gin.Context) invest.Principal {
	raw := ctx.GetHeader(HeaderCallerPrincipal)
	principal, err := invest.NewPrincipal(raw)
	if err != nil {
		return invest.Principal{}
	}
	return principal
}

func statusOf(code string) int {
	switch code {
	case invest.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case invest.CodeNotAdmin:
		return http.StatusForbidden
	case invest.CodeUnknownUser, invest.CodeUnknownPlan:
		return http.StatusNotFound
	case invest.CodeConflict:
		return http.StatusConflict
	case invest.CodeInvalidArgument:
		return http.StatusBadRequest
	case invest.CodeInsufficientBalance, invest.CodeWalletNotInitialized, invest.CodeNotEligible:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
