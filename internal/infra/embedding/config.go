package embedding

import (
	"fmt"
	"os"

	"recipebox/internal/usecase/ai"
)

// Config enables and selects the embedding provider.
type Config struct {
	// Enabled turns embedding generation and similarity search on.
	Enabled bool

	// APIKey is the OpenAI API key. Required when Enabled.
	APIKey string
}

// LoadConfigFromEnv builds a Config from environment variables.
//
// Environment variables:
//   - EMBEDDING_ENABLED: "true" enables embeddings (default: false)
//   - OPENAI_API_KEY: API key for the embeddings API
func LoadConfigFromEnv() Config {
	return Config{
		Enabled: os.Getenv("EMBEDDING_ENABLED") == "true",
		APIKey:  os.Getenv("OPENAI_API_KEY"),
	}
}

// New creates the configured provider. A disabled config yields the NoOp
// provider so wiring never branches on nil.
func New(cfg Config) (ai.EmbeddingProvider, error) {
	if !cfg.Enabled {
		return NewNoOp(), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: OPENAI_API_KEY is required when EMBEDDING_ENABLED=true")
	}
	return NewOpenAI(cfg.APIKey), nil
}
