package aiparse

import (
	"fmt"
	"os"

	"recipebox/internal/usecase/importer"
)

// Config selects and enables the AI extraction stage.
type Config struct {
	// Enabled turns the AI fallback on. Off by default; the import
	// pipeline's markup-based strategy is unaffected either way.
	Enabled bool

	// Provider is "openai", "claude", or "noop".
	Provider string

	// APIKey is the provider API key. Required for openai and claude.
	APIKey string
}

// LoadConfigFromEnv builds a Config from environment variables.
//
// Environment variables:
//   - AI_PARSE_ENABLED: "true" enables the stage (default: false)
//   - AI_PARSE_PROVIDER: "openai", "claude", or "noop" (default: noop)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY: provider credentials
func LoadConfigFromEnv() Config {
	cfg := Config{
		Enabled:  os.Getenv("AI_PARSE_ENABLED") == "true",
		Provider: os.Getenv("AI_PARSE_PROVIDER"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "noop"
	}

	switch cfg.Provider {
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case "claude":
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg
}

// New creates the configured parser. Returns (nil, nil) when the stage is
// disabled; the pipeline treats a nil parser as "no AI stage".
func New(cfg Config) (importer.AIParser, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("aiparse: OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAI(cfg.APIKey), nil
	case "claude":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("aiparse: ANTHROPIC_API_KEY is required for the claude provider")
		}
		return NewClaude(cfg.APIKey), nil
	case "noop":
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("aiparse: unknown provider %q", cfg.Provider)
	}
}
