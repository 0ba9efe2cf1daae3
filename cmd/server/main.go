package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/client"
	"github.com/segyhp/loan-console/internal/config"
	"github.com/segyhp/loan-console/internal/handler"
	"github.com/segyhp/loan-console/internal/logger"
	"github.com/segyhp/loan-console/internal/repository"
	"github.com/segyhp/loan-console/internal/service"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)

	// Optional reconciliation journal
	var db *sqlx.DB
	journal := repository.NewNoopJournalRepository()
	if cfg.JournalEnabled() {
		db, err = initDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		journal = repository.NewJournalRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, payment journal disabled")
	}

	// Optional payment lock
	var redisClient *redis.Client
	lock := repository.NewNoopPaymentLock()
	if cfg.LockEnabled() {
		redisClient = initRedis(cfg)
		defer redisClient.Close()
		lock = repository.NewRedisPaymentLock(redisClient, cfg.GetLockTTL())
	} else {
		log.Warn("REDIS_HOST not set, concurrent payments on one installment are not guarded")
	}

	// Initialize backend clients
	timeout := cfg.GetBackendTimeout()
	loanClient := client.NewLoanClient(cfg.Backend.LoansURL, timeout, log)
	scheduleClient := client.NewScheduleClient(cfg.Backend.LoansURL, timeout, log)
	ledgerClient := client.NewLedgerClient(cfg.Backend.LedgerURL, timeout, log)

	// Initialize services
	coordinator := service.NewPaymentCoordinator(
		ledgerClient,
		scheduleClient,
		cfg.Ledger.OriginAccount,
		service.WithJournal(journal),
		service.WithLock(lock),
		service.WithCardMovementType(cfg.GetCardMovementType()),
		service.WithLogger(log),
	)
	consoleService := service.NewConsoleService(loanClient, scheduleClient, coordinator, cfg.Report.PageSize, log)

	consoleHandler := handler.NewConsoleHandler(consoleService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := handler.NewRouter(consoleHandler, healthHandler, log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
