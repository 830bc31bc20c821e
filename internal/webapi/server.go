package webapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NexaProfitLabs/platform/internal/investclient"
	"github.com/NexaProfitLabs/platform/internal/store/memstore"
	"github.com/NexaProfitLabs/platform/internal/store/redisstore"
	"github.com/NexaProfitLabs/platform/pkg/flow"
	"github.com/NexaProfitLabs/platform/pkg/querycache"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
)

// Run boots the app gateway using the supplied configuration.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sessionStore, err := openSessionStore(cfg)
	if err != nil {
		return err
	}

	actor, err := investclient.New(cfg.BackendAddress, cfg.BackendToken, investclient.WithTimeout(cfg.BackendTimeout))
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	sessionValidator, err := sessionvalidator.New(sessionvalidator.Config{
		SigningKey: []byte(cfg.SessionSigningKey),
		Issuer:     cfg.SessionIssuer,
		CookieName: cfg.SessionCookieName,
	})
	if err != nil {
		return fmt.Errorf("session validator: %w", err)
	}

	handler, err := newHandler(cfg, actor, sessionStore, logger)
	if err != nil {
		return err
	}
	defer handler.sessions.stopAll()

	router := setupRouter(cfg, handler, sessionValidator)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webapi listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func openSessionStore(cfg Config) (flow.SessionStore, error) {
	switch cfg.SessionStore {
	case SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		return redisstore.New(client)
	default:
		return memstore.New(), nil
	}
}

// newHandler wires the gateway's flow components. A nil actor is
// allowed; reads then serve empty defaults and writes report
// actor_unavailable.
func newHandler(cfg Config, actor *investclient.Client, sessionStore flow.SessionStore, logger *zap.Logger) (*httpHandler, error) {
	intents, err := flow.NewIntentStore(sessionStore)
	if err != nil {
		return nil, fmt.Errorf("intent store: %w", err)
	}
	params, err := flow.NewParamStore(sessionStore)
	if err != nil {
		return nil, fmt.Errorf("param store: %w", err)
	}
	flowLogger := newZapFlowLogger(logger)
	var guard *flow.Guard
	if actor != nil {
		guard, err = flow.NewGuard(actorRegistrar{client: actor}, flow.WithGuardLogger(flowLogger))
		if err != nil {
			return nil, fmt.Errorf("guard: %w", err)
		}
	}
	return &httpHandler{
		cfg:        cfg,
		logger:     logger,
		flowLogger: flowLogger,
		actor:      actor,
		cache:      querycache.New[string, any](),
		sessions:   newSessionRegistry(),
		intents:    intents,
		params:     params,
		guard:      guard,
	}, nil
}

func setupRouter(cfg Config, handler *httpHandler, validator *sessionvalidator.Validator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(validator.GinMiddleware("auth_claims"))

	api.GET("/session", handler.handleSession)

	api.POST("/flow/navigate", handler.handleNavigate)
	api.POST("/flow/activity", handler.handleActivity)
	api.GET("/flow/state", handler.handleFlowState)
	api.POST("/flow/intent", handler.handleIntentSet)
	api.GET("/flow/intent", handler.handleIntentPeek)
	api.POST("/flow/intent/consume", handler.handleIntentConsume)
	api.POST("/flow/params/secret", handler.handleSecretParam)
	api.POST("/flow/params/persist", handler.handlePersistedParam)
	api.POST("/flow/params/clear", handler.handleClearParam)

	api.GET("/plans", handler.handlePlans)
	api.GET("/insights", handler.handleInsights)
	api.GET("/wallet", handler.handleWallet)
	api.POST("/wallet/initialize", handler.handleInitializeWallet)
	api.GET("/profile", handler.handleProfileGet)
	api.POST("/profile", handler.handleProfileSave)
	api.GET("/role", handler.handleRole)
	api.GET("/number", handler.handleNumber)
	api.POST("/register-number", handler.handleRegisterNumber)
	api.POST("/leads", handler.handleLeadSubmit)
	api.GET("/deposit/eligibility", handler.handleDepositEligibility)
	api.POST("/deposit", handler.handleDepositSubmit)

	api.POST("/wizard/start", handler.handleWizardStart)
	api.GET("/wizard", handler.handleWizardView)
	api.POST("/wizard/continue", handler.handleWizardContinue)
	api.POST("/wizard/amount", handler.handleWizardAmount)
	api.POST("/wizard/review", handler.handleWizardReview)
	api.POST("/wizard/back", handler.handleWizardBack)
	api.POST("/wizard/confirm", handler.handleWizardConfirm)
	api.POST("/wizard/close", handler.handleWizardClose)

	api.POST("/admin/wallet/credit", handler.handleAdminCredit)
	api.POST("/admin/wallet/balance", handler.handleAdminSetBalance)
	api.POST("/admin/roles", handler.handleAdminAssignRole)
	api.GET("/admin/leads", handler.handleAdminLeads)
	api.GET("/admin/deposits", handler.handleAdminDeposits)
	api.GET("/admin/telegram-config", handler.handleAdminTelegramGet)
	api.POST("/admin/telegram-config", handler.handleAdminTelegramUpdate)

	return router
}
