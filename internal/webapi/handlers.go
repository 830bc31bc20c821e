package webapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/NexaProfitLabs/platform/internal/investclient"
	"github.com/NexaProfitLabs/platform/pkg/flow"
	"github.com/NexaProfitLabs/platform/pkg/querycache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
)

type httpHandler struct {
	cfg        Config
	logger     *zap.Logger
	flowLogger flow.OperationLogger
	actor      *investclient.Client
	cache      *querycache.Cache[string, any]
	sessions   *sessionRegistry
	intents    *flow.IntentStore
	params     *flow.ParamStore
	guard      *flow.Guard
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func getClaims(ctx *gin.Context) *sessionvalidator.Claims {
	claimsValue, ok := ctx.Get("auth_claims")
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*sessionvalidator.Claims)
	return claims
}

// callerID returns the authenticated principal, empty for anonymous
// visitors.
func (handler *httpHandler) callerID(ctx *gin.Context) string {
	claims := getClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.GetUserID()
}

// sessionKey identifies the flow session: the authenticated user when
// signed in, otherwise an anonymous flow cookie minted on first touch.
func (handler *httpHandler) sessionKey(ctx *gin.Context) string {
	if caller := handler.callerID(ctx); caller != "" {
		return "user:" + caller
	}
	cookie, err := ctx.Cookie(handler.cfg.FlowCookieName)
	if err == nil && cookie != "" {
		return "anon:" + cookie
	}
	minted := uuid.NewString()
	ctx.SetCookie(handler.cfg.FlowCookieName, minted, 0, "/", "", false, true)
	return "anon:" + minted
}

func (handler *httpHandler) sessionID(ctx *gin.Context) (flow.SessionID, *sessionState, bool) {
	key := handler.sessionKey(ctx)
	sessionID, err := flow.NewSessionID(key)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "session unavailable"))
		return flow.SessionID{}, nil, false
	}
	return sessionID, handler.sessions.get(key), true
}

func (handler *httpHandler) respondActorError(ctx *gin.Context, err error) {
	var apiError *investclient.APIError
	if errors.As(err, &apiError) {
		ctx.JSON(apiError.Status, errorResponse(apiError.Code, apiError.Message))
		return
	}
	handler.logger.Error("backend call failed", zap.Error(err))
	ctx.JSON(http.StatusBadGateway, errorResponse("backend_error", "backend unavailable"))
}

func (handler *httpHandler) requireActor(ctx *gin.Context) bool {
	if handler.actor != nil {
		return true
	}
	ctx.JSON(http.StatusServiceUnavailable, errorResponse("actor_unavailable", "no backend actor configured"))
	return false
}

// handleSession echoes the validated session claims.
func (handler *httpHandler) handleSession(ctx *gin.Context) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"user_id": claims.GetUserID(),
		"email":   claims.GetUserEmail(),
		"display": claims.GetUserDisplayName(),
		"expires": claims.GetExpiresAt().Unix(),
	})
}

type navigateRequest struct {
	Hash         string   `json:"hash"`
	SecretParams []string `json:"secretParams"`
}

// handleNavigate resolves the hash, strips secret parameters into the
// session store, records the route, and reports the guard verdict for
// protected routes. Unauthenticated visits to protected routes park a
// post-login intent and land on home.
func (handler *httpHandler) handleNavigate(ctx *gin.Context) {
	var request navigateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	sessionID, state, ok := handler.sessionID(ctx)
	if !ok {
		return
	}

	hash := request.Hash
	secrets := make(map[string]string, len(request.SecretParams))
	for _, name := range request.SecretParams {
		value, strippedHash, found, err := handler.params.Secret(ctx.Request.Context(), sessionID, hash, name)
		if err != nil {
			handler.logger.Warn("secret param extraction failed", zap.String("param", name), zap.Error(err))
			continue
		}
		hash = strippedHash
		if found {
			secrets[name] = value
		}
	}

	route := flow.ResolveHash(hash)
	response := gin.H{"route": route.String(), "hash": hash}

	if route.IsDashboardFamily() {
		principal, _ := flow.NewPrincipal(handler.callerID(ctx))
		if principal.IsZero() {
			if err := handler.intents.Set(ctx.Request.Context(), sessionID, flow.PostLoginIntent{Route: route}); err != nil {
				handler.logger.Warn("intent store failed", zap.Error(err))
			}
			route = flow.RouteHome
			response["route"] = route.String()
			response["guard"] = gin.H{"state": string(flow.GuardUnauthenticated)}
		} else if handler.guard == nil {
			response["guard"] = gin.H{"state": string(flow.GuardReady)}
		} else {
			status := handler.guard.Admit(ctx.Request.Context(), principal)
			guardPayload := gin.H{"state": string(status.State)}
			if status.RegistrationErr != nil {
				guardPayload["registrationError"] = status.RegistrationErr.Error()
			}
			response["guard"] = guardPayload
		}
	}

	if err := state.ensureWatcher(handler.cfg.InactivityTimeout, handler.flowLogger); err != nil {
		handler.logger.Warn("inactivity watcher init failed", zap.Error(err))
	}
	state.setRoute(route)
	if len(secrets) > 0 {
		response["secrets"] = secrets
	}
	ctx.JSON(http.StatusOK, response)
}

func (handler *httpHandler) handleActivity(ctx *gin.Context) {
	_, state, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	state.activity()
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleFlowState(ctx *gin.Context) {
	_, state, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"route": state.currentRoute().String()})
}

type intentRequest struct {
	Route  string `json:"route"`
	Action string `json:"action"`
}

func (handler *httpHandler) handleIntentSet(ctx *gin.Context) {
	var request intentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	route, err := flow.ParseRoute(request.Route)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_route", err.Error()))
		return
	}
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	if err := handler.intents.Set(ctx.Request.Context(), sessionID, flow.PostLoginIntent{Route: route, Action: request.Action}); err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "intent store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleIntentPeek(ctx *gin.Context) {
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	intent, err := handler.intents.Peek(ctx.Request.Context(), sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "intent store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"intent": intent})
}

func (handler *httpHandler) handleIntentConsume(ctx *gin.Context) {
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	intent, err := handler.intents.Consume(ctx.Request.Context(), sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "intent store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"intent": intent})
}

type paramRequest struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
}

func (handler *httpHandler) handleSecretParam(ctx *gin.Context) {
	var request paramRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Name == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with a param name"))
		return
	}
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	value, strippedHash, found, err := handler.params.Secret(ctx.Request.Context(), sessionID, request.Hash, request.Name)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "param store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"value": value, "found": found, "hash": strippedHash})
}

func (handler *httpHandler) handlePersistedParam(ctx *gin.Context) {
	var request paramRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Name == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with a param name"))
		return
	}
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	value, found, err := handler.params.Persisted(ctx.Request.Context(), sessionID, request.Hash, request.Name)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "param store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"value": value, "found": found})
}

func (handler *httpHandler) handleClearParam(ctx *gin.Context) {
	var request paramRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Name == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with a param name"))
		return
	}
	sessionID, _, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	if err := handler.params.Clear(ctx.Request.Context(), sessionID, request.Name); err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal", "param store failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) cachedPlans(ctx *gin.Context) ([]invest.InvestmentPlan, error) {
	if handler.actor == nil {
		return []invest.InvestmentPlan{}, nil
	}
	value, err := handler.cache.Get(ctx.Request.Context(), cacheKeyInvestmentPlans, func(fetchCtx context.Context) (any, error) {
		return handler.actor.InvestmentPlans(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	plans, _ := value.([]invest.InvestmentPlan)
	return plans, nil
}

func (handler *httpHandler) handlePlans(ctx *gin.Context) {
	plans, err := handler.cachedPlans(ctx)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (handler *httpHandler) handleInsights(ctx *gin.Context) {
	if handler.actor == nil {
		ctx.JSON(http.StatusOK, gin.H{"insights": []invest.AIInsight{}})
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), cacheKeyAIInsights, func(fetchCtx context.Context) (any, error) {
		return handler.actor.AIInsights(fetchCtx)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	insights, _ := value.([]invest.AIInsight)
	ctx.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (handler *httpHandler) cachedBalance(ctx *gin.Context, caller string) (*float64, error) {
	value, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyCallerBalance, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CallerWalletBalance(fetchCtx, caller)
	})
	if err != nil {
		return nil, err
	}
	balance, _ := value.(*float64)
	return balance, nil
}

func (handler *httpHandler) handleWallet(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if handler.actor == nil {
		ctx.JSON(http.StatusOK, gin.H{"balance": nil, "weeklyReturn": nil})
		return
	}
	balance, err := handler.cachedBalance(ctx, caller)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	weeklyValue, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyCallerWeeklyReturn, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CallerWeeklyReturn(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	weeklyReturn, _ := weeklyValue.(*float64)
	ctx.JSON(http.StatusOK, gin.H{"balance": balance, "weeklyReturn": weeklyReturn})
}

func (handler *httpHandler) handleInitializeWallet(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	if err := handler.actor.InitializeCallerWallet(ctx.Request.Context(), caller); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(walletKeys(caller)...)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleProfileGet(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if handler.actor == nil {
		ctx.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyCallerProfile, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CallerProfile(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	profile, _ := value.(*invest.UserProfile)
	ctx.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (handler *httpHandler) handleProfileSave(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var profile invest.UserProfile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := handler.actor.SaveCallerProfile(ctx.Request.Context(), caller, profile); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(
		scopedKey(cacheKeyCallerProfile, caller),
		scopedKey(cacheKeyDepositEligibility, caller),
	)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleRole(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if handler.actor == nil || caller == "" {
		ctx.JSON(http.StatusOK, gin.H{"role": string(invest.RoleGuest), "isAdmin": false})
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyCallerRole, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CallerRole(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	role, _ := value.(invest.Role)
	ctx.JSON(http.StatusOK, gin.H{"role": string(role), "isAdmin": role == invest.RoleAdmin})
}

type registerNumberRequest struct {
	Number int64 `json:"number"`
}

func (handler *httpHandler) handleRegisterNumber(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request registerNumberRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := handler.actor.RegisterNumber(ctx.Request.Context(), caller, request.Number); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(
		scopedKey(cacheKeyUniqueNumber, caller),
		scopedKey(cacheKeyDepositEligibility, caller),
	)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleNumber(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if handler.actor == nil {
		ctx.JSON(http.StatusOK, gin.H{"number": nil})
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyUniqueNumber, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CallerNumber(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	number, _ := value.(*int64)
	ctx.JSON(http.StatusOK, gin.H{"number": number})
}

func (handler *httpHandler) handleLeadSubmit(ctx *gin.Context) {
	if !handler.requireActor(ctx) {
		return
	}
	var lead invest.Lead
	if err := ctx.ShouldBindJSON(&lead); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	if err := handler.actor.SubmitLead(ctx.Request.Context(), lead); err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	handler.cache.Invalidate(cacheKeyLeads)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) handleDepositEligibility(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if handler.actor == nil {
		ctx.JSON(http.StatusOK, gin.H{"eligibility": invest.DepositEligibility{}})
		return
	}
	value, err := handler.cache.Get(ctx.Request.Context(), scopedKey(cacheKeyDepositEligibility, caller), func(fetchCtx context.Context) (any, error) {
		return handler.actor.CheckDepositEligibility(fetchCtx, caller)
	})
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	eligibility, _ := value.(invest.DepositEligibility)
	ctx.JSON(http.StatusOK, gin.H{"eligibility": eligibility})
}

type depositRequest struct {
	Screenshot string `json:"screenshot"`
}

func (handler *httpHandler) handleDepositSubmit(ctx *gin.Context) {
	caller := handler.callerID(ctx)
	if caller == "" {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	if !handler.requireActor(ctx) {
		return
	}
	var request depositRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	screenshot, err := base64.StdEncoding.DecodeString(request.Screenshot)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "screenshot must be base64"))
		return
	}
	message, err := handler.actor.SubmitDeposit(ctx.Request.Context(), caller, screenshot)
	if err != nil {
		handler.respondActorError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message})
}
