package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/client"
	"github.com/segyhp/loan-console/internal/config"
	"github.com/segyhp/loan-console/internal/logger"
	"github.com/segyhp/loan-console/internal/notify"
	"github.com/segyhp/loan-console/internal/reconcile"
	"github.com/segyhp/loan-console/internal/repository"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.Info("Starting reconciliation scheduler...")

	if !cfg.JournalEnabled() {
		log.Fatal("DATABASE_URL is required to run the reconciliation scheduler")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Failed to prepare payment journal: %v", err)
	}

	var alerter reconcile.Alerter
	if cfg.AlertsEnabled() {
		alerter = notify.NewSender(cfg, log)
	} else {
		log.Warn("SMTP alerts not configured, stuck payments are only logged")
	}

	reconciler := reconcile.NewReconciler(
		repository.NewJournalRepository(db),
		client.NewScheduleClient(cfg.Backend.LoansURL, cfg.GetBackendTimeout(), log),
		alerter,
		cfg.Scheduler.ReconcileConcurrency,
		cfg.GetLockTTL(),
		log,
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	// Schedule tasks
	if err := setupCronJobs(c, cfg, reconciler, log); err != nil {
		log.Fatalf("Error scheduling reconciliation job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reconciler *reconcile.Reconciler, log logrus.FieldLogger) error {
	_, err := c.AddFunc(cfg.Scheduler.ReconcileSchedule, func() {
		log.Info("Running payment reconciliation job...")
		if _, err := reconciler.Run(context.Background()); err != nil {
			log.WithError(err).Error("Payment reconciliation failed")
		}
	})
	if err != nil {
		return err
	}

	log.WithField("schedule", cfg.Scheduler.ReconcileSchedule).Info("Cron jobs scheduled successfully")
	return nil
}
