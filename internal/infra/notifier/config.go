package notifier

import (
	"log/slog"
	"time"

	"recipebox/pkg/config"
)

// LoadSlackConfigFromEnv reads webhook notification settings from
// environment variables:
//
//	NOTIFIER_ENABLED     - enable webhook notifications (default: false)
//	NOTIFIER_WEBHOOK_URL - Slack-compatible Incoming Webhook URL
//	NOTIFIER_TIMEOUT     - per-request timeout (default: 10s)
func LoadSlackConfigFromEnv() SlackConfig {
	return SlackConfig{
		Enabled:    config.GetEnvBool("NOTIFIER_ENABLED", false),
		WebhookURL: config.GetEnvString("NOTIFIER_WEBHOOK_URL", ""),
		Timeout:    config.GetEnvDuration("NOTIFIER_TIMEOUT", 10*time.Second),
	}
}

// NewFromEnv builds the Notifier implementation selected by the
// environment. Returns a NoOpNotifier when notifications are disabled or
// the webhook URL is missing, so callers never have to nil-check.
func NewFromEnv() Notifier {
	cfg := LoadSlackConfigFromEnv()

	if !cfg.Enabled || cfg.WebhookURL == "" {
		slog.Info("webhook notifications disabled, using no-op notifier")
		return NewNoOpNotifier()
	}

	slog.Info("webhook notifications enabled",
		slog.Duration("timeout", cfg.Timeout))
	return NewSlackNotifier(cfg)
}
