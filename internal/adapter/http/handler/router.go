package handler

import (
	"marketplace-wallet/internal/adapter/http/middleware"
	"marketplace-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	SettlementSvc  ports.SettlementService
	Provider       ports.PaymentProvider
	TokenSvc       ports.TokenService
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

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Provider webhooks (signature-authenticated, no bearer token) ---
	webhookHandler := NewWebhookHandler(deps.Provider, deps.SettlementSvc, deps.Logger)
	v1.POST("/webhooks/paystack", webhookHandler.HandlePaystackEvent)

	// --- Authenticated wallet routes ---
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.SettlementSvc)
	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	{
		authed.GET("/wallets/me", walletHandler.GetWallet)
		authed.GET("/wallets/me/transactions", walletHandler.Statement)
		authed.POST("/wallets/withdraw", walletHandler.Withdraw)
		authed.POST("/payments/link", walletHandler.CreatePaymentLink)
	}

	return r
}
