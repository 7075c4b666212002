package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"custodial-wallet/config"
	googleAuth "custodial-wallet/internal/adapter/google"
	httpHandler "custodial-wallet/internal/adapter/http/handler"
	"custodial-wallet/internal/adapter/paystack"
	pgStorage "custodial-wallet/internal/adapter/storage/postgres"
	redisStorage "custodial-wallet/internal/adapter/storage/redis"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/service"
	"custodial-wallet/pkg/logger"
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
		Msg("Starting Custodial Wallet Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Run schema migrations
	if err := pgStorage.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Migrations applied")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	keyRepo := pgStorage.NewApiKeyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	httpClient := &http.Client{Timeout: 10 * time.Second}
	hashSvc := service.NewBcryptHashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	sigVerifier := service.NewHMACSignatureVerifier(cfg.Paystack.SecretKey)
	idVerifier := googleAuth.NewVerifier(cfg.Google.ClientID, httpClient)
	provider := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, httpClient, log)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, walletRepo, idVerifier, tokenSvc, transactor, log)
	keySvc := service.NewApiKeyService(keyRepo, hashSvc, log)
	walletSvc := service.NewWalletService(
		userRepo,
		walletRepo,
		txRepo,
		provider,
		sigVerifier,
		transactor,
		cfg.WebhookVerificationEnabled(),
		cfg.App.BaseURL,
		log,
	)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		WalletSvc:      walletSvc,
		KeySvc:         keySvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
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
