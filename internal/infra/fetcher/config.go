package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the guarded page fetcher.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Bounds the manually driven redirect chain
//   - FetchTimeout: One wall-clock deadline covering DNS, connects, every
//     redirect hop, and the body read combined
//
// All three limits exist because the target URL is attacker-controlled
// input; none of them is a tuning knob for throughput.
type Config struct {
	// FetchTimeout is the overall deadline for one fetch. A chain of fast
	// redirects shares this single budget; there is no per-hop timeout.
	// Default: 15s
	FetchTimeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced during the capped read, with the Content-Length header used
	// only as an early rejection, never as the trust boundary.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirect hops to follow.
	// Every hop is re-validated against the address guard before its
	// connection is opened.
	// Default: 5
	MaxRedirects int

	// UserAgent identifies the fetcher to target sites. Fixed per
	// deployment; never impersonates a browser.
	UserAgent string
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 15 * time.Second,
		MaxBodySize:  10 * 1024 * 1024, // 10MB
		MaxRedirects: 5,
		UserAgent:    "RecipeBoxBot/1.0 (+https://recipebox.dev/bot)",
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - FetchTimeout: > 0 (must have a deadline)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - MaxRedirects: 0-10 (reasonable redirect limit)
//   - UserAgent: non-empty (targets must be able to identify us)
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
// After loading, the configuration is validated.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string, e.g., "15s" (default: 15s)
//   - FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - FETCH_MAX_REDIRECTS: integer (default: 5)
//   - FETCH_USER_AGENT: string (default: RecipeBoxBot UA)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_TIMEOUT: %v (expected format: '15s', '1m')", err)
		}
		cfg.FetchTimeout = parsed
	}

	if val := os.Getenv("FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("FETCH_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
