package notifier

import (
	"context"
	"testing"
)

func TestNoOpNotifier_NotifyLinkReport(t *testing.T) {
	t.Run("TC-1: should accept any report without error", func(t *testing.T) {
		n := NewNoOpNotifier()
		if err := n.NotifyLinkReport(context.Background(), testReport()); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-2: should accept a nil report", func(t *testing.T) {
		n := NewNoOpNotifier()
		if err := n.NotifyLinkReport(context.Background(), nil); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}

func TestNewFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		enabled    string
		webhookURL string
		wantNoop   bool
	}{
		{"TC-1: disabled yields no-op", "false", "https://hooks.example.com/t", true},
		{"TC-2: missing webhook URL yields no-op", "true", "", true},
		{"TC-3: enabled with URL yields slack notifier", "true", "https://hooks.example.com/t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NOTIFIER_ENABLED", tt.enabled)
			t.Setenv("NOTIFIER_WEBHOOK_URL", tt.webhookURL)

			n := NewFromEnv()
			_, isNoop := n.(*NoOpNotifier)
			if isNoop != tt.wantNoop {
				t.Errorf("NewFromEnv() = %T, wantNoop %v", n, tt.wantNoop)
			}
		})
	}
}
