package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"recipebox/pkg/ratelimit"
)

// RateLimitSettings bundles the limiter configuration with the operational
// knobs that live outside the limiter itself.
type RateLimitSettings struct {
	// Config is the per-caller sliding-window limiter configuration.
	Config ratelimit.Config

	// SweepInterval is how often idle callers are removed from memory.
	SweepInterval time.Duration
}

// LoadRateLimitConfig loads import admission settings from environment
// variables. Invalid values are logged and replaced with safe defaults
// instead of failing startup.
//
// Environment variables:
//   - RATELIMIT_LIMIT: Admissions per caller per window (default: 10)
//   - RATELIMIT_WINDOW: Sliding window size (default: 1m)
//   - RATELIMIT_MAX_CALLERS: Maximum tracked callers in memory (default: 10000)
//   - RATELIMIT_SWEEP_INTERVAL: Idle caller cleanup interval (default: 5m)
//
// Returns:
//   - RateLimitSettings: Validated settings with defaults applied
//   - error: Always nil (validation failures result in warnings and defaults)
func LoadRateLimitConfig() (RateLimitSettings, error) {
	cfg := ratelimit.DefaultConfig()

	limit := GetEnvInt("RATELIMIT_LIMIT", cfg.Limit)
	if limit <= 0 {
		slog.Warn("invalid RATELIMIT_LIMIT, using default",
			slog.Int("value", limit),
			slog.Int("default", cfg.Limit))
		limit = cfg.Limit
	}
	cfg.Limit = limit

	window := GetEnvDuration("RATELIMIT_WINDOW", cfg.Window)
	if err := ValidatePositiveDuration(window); err != nil {
		slog.Warn("invalid RATELIMIT_WINDOW, using default",
			slog.String("value", window.String()),
			slog.String("default", cfg.Window.String()),
			slog.String("error", err.Error()))
		window = cfg.Window
	}
	cfg.Window = window

	maxCallers := GetEnvInt("RATELIMIT_MAX_CALLERS", cfg.MaxCallers)
	if maxCallers <= 0 {
		slog.Warn("invalid RATELIMIT_MAX_CALLERS, using default",
			slog.Int("value", maxCallers),
			slog.Int("default", cfg.MaxCallers))
		maxCallers = cfg.MaxCallers
	}
	cfg.MaxCallers = maxCallers

	sweepInterval := GetEnvDuration("RATELIMIT_SWEEP_INTERVAL", 5*time.Minute)
	if err := ValidatePositiveDuration(sweepInterval); err != nil {
		slog.Warn("invalid RATELIMIT_SWEEP_INTERVAL, using default",
			slog.String("value", sweepInterval.String()),
			slog.String("default", "5m"),
			slog.String("error", err.Error()))
		sweepInterval = 5 * time.Minute
	}

	// Validate the assembled configuration
	if err := cfg.Validate(); err != nil {
		slog.Warn("rate limit configuration validation failed, applying defaults",
			slog.String("error", err.Error()))
		cfg = ratelimit.DefaultConfig()
	}

	return RateLimitSettings{
		Config:        cfg,
		SweepInterval: sweepInterval,
	}, nil
}

// CSPConfig contains the configuration for Content Security Policy.
//
// This struct holds settings for CSP headers, which help prevent
// cross-site scripting (XSS) and other code injection attacks.
type CSPConfig struct {
	// Enabled controls whether CSP headers are applied
	Enabled bool

	// ReportOnly sets the header to Content-Security-Policy-Report-Only
	// instead of Content-Security-Policy, which logs violations but does not enforce
	ReportOnly bool

	// TrustedScriptSources lists additional trusted script sources (e.g., CDN URLs)
	TrustedScriptSources []string

	// TrustedStyleSources lists additional trusted style sources (e.g., CDN URLs)
	TrustedStyleSources []string
}

// LoadCSPConfig loads Content Security Policy configuration from environment
// variables.
//
// Environment variables:
//   - CSP_ENABLED: Enable/disable CSP headers (default: true)
//   - CSP_REPORT_ONLY: Use report-only mode (default: false)
//
// Returns:
//   - *CSPConfig: CSP configuration
//   - error: Always nil
func LoadCSPConfig() (*CSPConfig, error) {
	config := &CSPConfig{
		Enabled:    GetEnvBool("CSP_ENABLED", true),
		ReportOnly: GetEnvBool("CSP_REPORT_ONLY", false),
	}

	return config, nil
}

// ValidateTrustedProxies validates a list of CIDR ranges for trusted proxies.
//
// Each entry must be in valid CIDR notation (e.g., "10.0.0.0/8").
func ValidateTrustedProxies(cidrs []string) error {
	for _, cidr := range cidrs {
		if cidr == "" {
			return fmt.Errorf("CIDR cannot be empty")
		}
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
	}
	return nil
}
