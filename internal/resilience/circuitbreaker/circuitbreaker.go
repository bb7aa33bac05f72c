// Package circuitbreaker wraps github.com/sony/gobreaker for the
// external dependencies of the import pipeline. Each dependency gets a
// named preset tuned to how it fails: paid parser APIs recover fast,
// the self-hosted renderer and the notification webhook stay down
// longer once they go down.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes one breaker. FailureThreshold is the failure ratio that
// trips the circuit once at least MinRequests calls were observed in the
// current Interval.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClaudeAPIConfig covers the Claude recipe-extraction calls.
func ClaudeAPIConfig() Config {
	return DefaultConfig("claude-api")
}

// OpenAIAPIConfig covers both OpenAI extraction and embedding calls.
func OpenAIAPIConfig() Config {
	return DefaultConfig("openai-api")
}

// RenderServiceConfig covers the headless render fallback. The renderer
// is a single self-hosted process, so once it is down it tends to stay
// down and the breaker backs off twice as long as the API presets.
func RenderServiceConfig() Config {
	cfg := DefaultConfig("render-service")
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	return cfg
}

// NotifierConfig covers webhook delivery. Notifications are best-effort,
// so the breaker tolerates more failures and waits five minutes before
// probing again.
func NotifierConfig() Config {
	cfg := DefaultConfig("notifier")
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 300 * time.Second
	cfg.FailureThreshold = 0.8
	return cfg
}

// CircuitBreaker is a thin named wrapper around gobreaker. State changes
// are logged so an open circuit shows up next to the failures that
// caused it.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn through the breaker. An open circuit returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
