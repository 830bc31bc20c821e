// Package investapi exposes the invest service over JSON HTTP for the
// web gateway. Callers authenticate with a shared bearer token and
// forward the end-user principal in a header.
package investapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderCallerPrincipal carries the authenticated end-user identity
// from the gateway; absent or empty means anonymous.
const HeaderCallerPrincipal = "X-Caller-Principal"

const bearerPrefix = "Bearer "

// Config configures the actor API server.
type Config struct {
	ServiceToken string
}

// NewRouter builds the gin engine serving the actor surface.
func NewRouter(cfg Config, service *invest.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := &actorHandler{service: service, logger: logger}

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	actor := router.Group("/v1/actor")
	actor.Use(serviceTokenMiddleware(cfg.ServiceToken))

	actor.POST("/register", handler.handleRegister)
	actor.POST("/register-number", handler.handleRegisterNumber)
	actor.GET("/number", handler.handleCallerNumber)

	actor.GET("/profile", handler.handleCallerProfile)
	actor.POST("/profile", handler.handleSaveProfile)
	actor.GET("/users/:principal/profile", handler.handleUserProfile)

	actor.GET("/role", handler.handleCallerRole)
	actor.GET("/is-admin", handler.handleIsAdmin)
	actor.POST("/roles", handler.handleAssignRole)

	actor.GET("/wallet/balance", handler.handleWalletBalance)
	actor.GET("/wallet/weekly-return", handler.handleWeeklyReturn)
	actor.POST("/wallet/initialize", handler.handleInitializeWallet)
	actor.POST("/wallet/credit", handler.handleCreditWallet)
	actor.POST("/wallet/balance", handler.handleSetBalance)
	actor.GET("/users/:principal/wallet/balance", handler.handleUserWalletBalance)
	actor.GET("/users/:principal/wallet/weekly-return", handler.handleUserWeeklyReturn)

	actor.GET("/plans", handler.handlePlans)
	actor.POST("/plans/purchase", handler.handlePurchase)
	actor.GET("/insights", handler.handleInsights)

	actor.POST("/leads", handler.handleSubmitLead)
	actor.GET("/leads", handler.handleLeads)

	actor.GET("/deposits/eligibility", handler.handleDepositEligibility)
	actor.POST("/deposits", handler.handleSubmitDeposit)
	actor.GET("/deposits", handler.handleDeposits)

	actor.GET("/telegram-config", handler.handleTelegramConfig)
	actor.POST("/telegram-config", handler.handleUpdateTelegramConfig)

	return router
}

func serviceTokenMiddleware(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing bearer token"))
			return
		}
		presented := strings.TrimPrefix(header, bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid bearer token"))
			return
		}
		ctx.Next()
	}
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
