package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"recipebox/internal/handler/http/respond"
	pgRepo "recipebox/internal/infra/adapter/persistence/postgres"
	"recipebox/internal/infra/db"
	"recipebox/internal/infra/fetcher"
	"recipebox/internal/infra/notifier"
	"recipebox/internal/observability/logging"
	workerPkg "recipebox/internal/infra/worker"
	"recipebox/internal/usecase/linkcheck"
	"recipebox/pkg/security/addrguard"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM recipes LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("sweep_timeout", workerConfig.SweepTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Webhook notifier: no-op unless NOTIFY_WEBHOOK_URL is configured
	reportNotifier := notifier.NewFromEnv()

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc, err := setupSweepService(logger, database, reportNotifier)
	if err != nil {
		logger.Error("failed to set up sweep service", slog.Any("error", err))
		os.Exit(1)
	}

	startCronWorker(logger, svc, workerConfig, workerMetrics, healthServer)
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// setupSweepService wires the link verification sweep. Probes go through the
// same guarded fetcher as imports so a recipe whose page moved behind an
// internal address is marked dead instead of probed.
func setupSweepService(logger *slog.Logger, database *sql.DB, n notifier.Notifier) (*linkcheck.Service, error) {
	recipeRepo := pgRepo.NewRecipeRepo(database)

	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load fetch config: %w", err)
	}

	sweepConfig := linkcheck.LoadConfigFromEnv()
	if err := sweepConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}

	guard := addrguard.NewGuard(nil)
	safeFetcher := fetcher.New(guard, fetchConfig)

	logger.Info("sweep service initialized",
		slog.Duration("recheck_interval", sweepConfig.RecheckInterval),
		slog.Int("batch_size", sweepConfig.BatchSize),
		slog.Int("parallelism", sweepConfig.Parallelism))

	return linkcheck.NewService(recipeRepo, safeFetcher, n, sweepConfig), nil
}

// startCronWorker starts the cron scheduler and runs the sweep job periodically.
func startCronWorker(logger *slog.Logger, svc *linkcheck.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runSweepJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runSweepJob executes a single verification sweep with timeout and error handling.
func runSweepJob(logger *slog.Logger, svc *linkcheck.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordSweepRun("started")
	logger.Info("link verification sweep started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout)
	defer cancel()

	report, err := svc.Run(ctx)
	if err != nil {
		// Sweep errors can carry DSNs; mask before logging.
		logger.Error("sweep failed", slog.Any("error", respond.SanitizeError(err)))
		metrics.RecordSweepRun("failure")
		metrics.RecordSweepDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordSweepRun("success")
	metrics.RecordSweepDuration(time.Since(startTime).Seconds())
	metrics.RecordLinksChecked(report.Checked)
	metrics.RecordLastSuccess()

	logger.Info("sweep completed",
		slog.Int("checked", report.Checked),
		slog.Int("alive", report.Alive),
		slog.Int("dead", report.Dead),
		slog.Int("newly_dead", len(report.NewlyDead)),
		slog.Duration("duration", report.Duration),
	)
}
