package handler

import (
	"paybridge/internal/adapter/http/middleware"
	"paybridge/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Orchestrator   ports.PaymentOrchestrator
	Registry       ports.GatewayRegistry
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

	paymentHandler := NewPaymentHandler(deps.Orchestrator)
	payments := v1.Group("/payments")
	{
		payments.POST("/initialize", paymentHandler.InitializePayment)
	}

	webhookHandler := NewWebhookHandler(deps.Orchestrator, deps.Registry, deps.Logger)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/:provider", webhookHandler.HandleWebhook)
	}

	return r
}
