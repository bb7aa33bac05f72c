package worker

import (
	"fmt"
	"log/slog"
	"time"

	"recipebox/internal/pkg/config"
)

// WorkerConfig controls the link verification sweep: when it runs, how long
// it may take, and where the worker's health server listens.
type WorkerConfig struct {
	// CronSchedule is the five-field cron expression for the sweep.
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// SweepTimeout bounds a single sweep; the run is cancelled after it.
	SweepTimeout time.Duration

	// HealthPort is the worker health server port, 1024-65535.
	HealthPort int
}

// DefaultConfig returns the stock configuration: a nightly sweep at 3:00
// UTC, a 30-minute ceiling per run, and health checks on 9091.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 3 * * *",
		Timezone:     "UTC",
		SweepTimeout: 30 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.PositiveDuration(c.SweepTimeout); err != nil {
		errs = append(errs, fmt.Errorf("sweep timeout: %w", err))
	}
	if err := config.IntBetween(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration fail-open: a rejected
// value is logged, counted in metrics, and replaced by its default, so the
// worker never refuses to start over configuration.
//
// Environment variables:
//
//	CRON_SCHEDULE       cron expression, default "0 3 * * *"
//	WORKER_TIMEZONE     IANA zone, default "UTC"
//	SWEEP_TIMEOUT       duration in [1m, 4h], default 30m
//	WORKER_HEALTH_PORT  1024-65535, default 9091
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	def := DefaultConfig()
	cfg := def
	fallbackApplied := false

	reject := func(field, warning string) {
		fallbackApplied = true
		metrics.Config.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.String("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	if schedule.Applied() {
		reject("cron_schedule", schedule.Warning)
	}

	tz := config.String("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	if tz.Applied() {
		reject("timezone", tz.Warning)
	}

	timeout := config.Duration("SWEEP_TIMEOUT", def.SweepTimeout,
		config.DurationBetween(1*time.Minute, 4*time.Hour))
	cfg.SweepTimeout = timeout.Value
	if timeout.Applied() {
		reject("sweep_timeout", timeout.Warning)
	}

	port := config.Int("WORKER_HEALTH_PORT", def.HealthPort, config.IntBetween(1024, 65535))
	cfg.HealthPort = port.Value
	if port.Applied() {
		reject("health_port", port.Warning)
	}

	metrics.Config.SetFallbackActive(fallbackApplied)
	metrics.Config.RecordLoad()

	return &cfg, nil
}
