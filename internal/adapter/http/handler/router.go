package handler

import (
	"custodial-wallet/internal/adapter/http/middleware"
	redisStore "custodial-wallet/internal/adapter/storage/redis"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	KeySvc         ports.ApiKeyService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/google", rl("auth_login"), authHandler.GoogleLogin)
	}

	// Provider webhook. Authenticity comes from the HMAC signature over the
	// body, not from a caller credential.
	webhookHandler := NewWebhookHandler(deps.WalletSvc)
	v1.POST("/webhook/paystack", rl("webhook"), webhookHandler.HandlePaystack)

	// --- Wallet routes (API key or session, per-route permission) ---
	authz := func(p domain.Permission) gin.HandlerFunc {
		return middleware.Auth(deps.KeySvc, deps.TokenSvc, p, deps.Logger)
	}
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet")
	{
		wallet.POST("/deposit", rl("deposit"), authz(domain.PermissionDeposit), walletHandler.InitiateDeposit)
		wallet.GET("/deposit/:reference", rl("read"), authz(domain.PermissionRead), walletHandler.GetDepositStatus)
		wallet.POST("/transfer", rl("transfer"), authz(domain.PermissionTransfer), walletHandler.Transfer)
		wallet.GET("", rl("read"), authz(domain.PermissionRead), walletHandler.GetWalletInfo)
		wallet.GET("/balance", rl("read"), authz(domain.PermissionRead), walletHandler.GetBalance)
		wallet.GET("/transactions", rl("read"), authz(domain.PermissionRead), walletHandler.ListTransactions)
	}

	// --- API-key management (session only; keys cannot mint keys) ---
	sessionAuth := middleware.SessionAuth(deps.TokenSvc)
	keyHandler := NewApiKeyHandler(deps.KeySvc)
	keys := v1.Group("/api-keys", sessionAuth)
	{
		keys.POST("", rl("keys"), keyHandler.CreateKey)
		keys.POST("/rollover", rl("keys"), keyHandler.RolloverKey)
		keys.GET("", rl("keys"), keyHandler.ListKeys)
	}

	return r
}
