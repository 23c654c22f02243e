package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"provenance-ledger/config"
	httpHandler "provenance-ledger/internal/adapter/http/handler"
	pgStorage "provenance-ledger/internal/adapter/storage/postgres"
	redisStorage "provenance-ledger/internal/adapter/storage/redis"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/internal/service"
	"provenance-ledger/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting provenance ledger")

	ctx := context.Background()

	// The master key is checked before any connection is opened.
	wrapper, err := service.NewMasterKeyWrapper(cfg.Keys.MasterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid master key")
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Repositories
	productLineRepo := pgStorage.NewProductLineRepo(pool)
	itemRepo := pgStorage.NewItemRepo(pool)
	blockRepo := pgStorage.NewBlockRepo(pool)
	ledgerTxRepo := pgStorage.NewLedgerTransactionRepo(pool)
	keyEpochRepo := pgStorage.NewKeyEpochRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	nonceStore := redisStorage.NewNonceStore(rdb)

	// Services
	auditSvc := service.NewAuditService(auditRepo, log)
	custodian := service.NewKeyCustodian(keyEpochRepo, wrapper, cfg.Keys.RotationMonths, time.Now, auditSvc, log)
	tagSvc := service.NewTagService(custodian, cfg.Tag.BaseURL, log)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	itemSvc := service.NewItemService(service.ItemServiceDeps{
		ProductLines: productLineRepo,
		Items:        itemRepo,
		Blocks:       blockRepo,
		Transactions: ledgerTxRepo,
		Transactor:   transactor,
		Keys:         custodian,
		Tags:         tagSvc,
		Nonces:       nonceStore,
		NonceTTL:     cfg.Redis.NonceTTL,
		Audit:        auditSvc,
	}, log)

	// Make sure an epoch exists so the first mint does not pay for rotation.
	if active, err := custodian.CurrentKey(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load tag key epoch")
	} else {
		log.Info().Str("key_version", active.Version).Msg("Tag key epoch ready")
	}

	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ItemSvc:        itemSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
