package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paybridge/config"
	httpHandler "paybridge/internal/adapter/http/handler"
	pgStorage "paybridge/internal/adapter/storage/postgres"
	redisStorage "paybridge/internal/adapter/storage/redis"
	"paybridge/internal/core/domain"
	"paybridge/internal/core/ports"
	"paybridge/internal/gateway/paystack"
	"paybridge/internal/notify"
	"paybridge/internal/service"
	"paybridge/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting PayBridge")

	// Domain limits are fixed before any request handling.
	domain.SetMaxAmount(cfg.Payments.MaxAmount)

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize storage adapters
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	initCache := redisStorage.NewInitCache(rdb)

	// Initialize provider gateways and registry
	paystackGateway := paystack.New(cfg.Paystack, logger.ForComponent(log, "paystack"))
	registry := service.NewGatewayRegistry(paystackGateway)

	// Initialize settlement notifier
	notifier := notify.NewHTTPSink(10*time.Second, logger.ForComponent(log, "notify"))

	// Initialize orchestrator
	orchestrator := service.NewOrchestrator(paymentRepo, registry, notifier, initCache, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Orchestrator:   orchestrator,
		Registry:       registry,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
