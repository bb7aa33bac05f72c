package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

// fastBreaker trips after 2 failures out of 2 and re-probes quickly so
// state transitions can be exercised without long sleeps.
func fastBreaker(name string) *CircuitBreaker {
	return New(Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 1.0,
		MinRequests:      2,
	})
}

func alwaysFail(cb *CircuitBreaker, times int) {
	for i := 0; i < times; i++ {
		cb.Execute(func() (interface{}, error) {
			return nil, errors.New("parser unreachable")
		})
	}
}

func TestNew_StartsClosed(t *testing.T) {
	cb := New(DefaultConfig("extraction"))
	if cb.Name() != "extraction" {
		t.Errorf("Name = %q, want extraction", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed || cb.IsOpen() {
		t.Errorf("fresh breaker should be closed, state = %v", cb.State())
	}
}

func TestExecute_PassesThroughResultAndError(t *testing.T) {
	cb := New(DefaultConfig("extraction"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "parsed recipe", nil
	})
	if err != nil || result != "parsed recipe" {
		t.Errorf("success call: result = %v, err = %v", result, err)
	}

	wantErr := errors.New("model overloaded")
	_, err = cb.Execute(func() (interface{}, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("failure call: err = %v, want %v", err, wantErr)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("one failure must not trip the circuit, state = %v", cb.State())
	}
}

func TestExecute_TripsAtThreshold(t *testing.T) {
	cb := fastBreaker("extraction")

	alwaysFail(cb, 2)
	if !cb.IsOpen() {
		t.Fatalf("breaker should open after threshold, state = %v", cb.State())
	}

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open circuit: err = %v, want ErrOpenState", err)
	}
	if called {
		t.Error("open circuit must not invoke the wrapped call")
	}
}

func TestExecute_StaysClosedBelowMinRequests(t *testing.T) {
	cb := fastBreaker("extraction")

	alwaysFail(cb, 1)
	if cb.IsOpen() {
		t.Error("a single failure below MinRequests should not trip")
	}
}

func TestExecute_RecoversThroughHalfOpen(t *testing.T) {
	cb := fastBreaker("renderer")

	alwaysFail(cb, 2)
	if !cb.IsOpen() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(60 * time.Millisecond)

	// First call after the timeout is the half-open probe; success
	// closes the circuit again.
	_, err := cb.Execute(func() (interface{}, error) { return "up again", nil })
	if err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state after successful probe = %v, want closed", cb.State())
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantName    string
		wantTimeout time.Duration
	}{
		{name: "claude", cfg: ClaudeAPIConfig(), wantName: "claude-api", wantTimeout: 60 * time.Second},
		{name: "openai", cfg: OpenAIAPIConfig(), wantName: "openai-api", wantTimeout: 60 * time.Second},
		{name: "renderer backs off longer", cfg: RenderServiceConfig(), wantName: "render-service", wantTimeout: 120 * time.Second},
		{name: "notifier waits longest", cfg: NotifierConfig(), wantName: "notifier", wantTimeout: 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.cfg.Name, tt.wantName)
			}
			if tt.cfg.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", tt.cfg.Timeout, tt.wantTimeout)
			}
			if tt.cfg.MinRequests == 0 || tt.cfg.FailureThreshold <= 0 {
				t.Error("preset must set a trip threshold")
			}
		})
	}

	if NotifierConfig().FailureThreshold <= ClaudeAPIConfig().FailureThreshold {
		t.Error("notifier preset should tolerate a higher failure ratio than the API presets")
	}
}
