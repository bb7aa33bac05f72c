package renderer

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds render service client configuration.
type Config struct {
	// Endpoint is the base URL of the render service. Empty disables the
	// render fallback entirely.
	Endpoint string

	// Timeout is the per-render request timeout. Rendering a JS-heavy
	// page takes seconds, so this is longer than ordinary HTTP calls.
	Timeout time.Duration

	// RequestsPerSecond throttles calls to the render service.
	RequestsPerSecond float64

	// Burst is the token bucket burst size.
	Burst int
}

// DefaultConfig returns the default render client configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:          "",
		Timeout:           20 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// Validate checks the configuration for invalid values. An empty endpoint is
// valid; it means the render fallback is disabled.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("renderer: timeout must be positive, got %s", c.Timeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("renderer: requests per second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("renderer: burst must be positive, got %d", c.Burst)
	}
	return nil
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
//
// Environment variables:
//   - RENDER_SERVICE_URL: render service base URL (empty disables rendering)
//   - RENDER_TIMEOUT: per-request timeout (e.g. "20s")
//   - RENDER_RPS: requests per second toward the render service
//   - RENDER_BURST: token bucket burst
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Endpoint = os.Getenv("RENDER_SERVICE_URL")

	if v := os.Getenv("RENDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("renderer: invalid RENDER_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv("RENDER_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("renderer: invalid RENDER_RPS %q: %w", v, err)
		}
		cfg.RequestsPerSecond = f
	}

	if v := os.Getenv("RENDER_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("renderer: invalid RENDER_BURST %q: %w", v, err)
		}
		cfg.Burst = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
