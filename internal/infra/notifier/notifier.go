// Package notifier provides abstraction for sending operational
// notifications. It defines the Notifier interface which allows different
// notification mechanisms (Slack-compatible webhooks, email, etc.) to be used
// interchangeably through dependency injection.
//
// The package includes a Slack-compatible webhook implementation and a no-op
// notifier for when notifications are disabled.
package notifier

import (
	"context"
	"time"
)

// DeadLink identifies a recipe whose source page stopped answering.
type DeadLink struct {
	RecipeID int64
	Title    string
	URL      string
}

// LinkReport summarizes one verification sweep over stored recipes.
type LinkReport struct {
	Checked   int
	Alive     int
	Dead      int
	NewlyDead []DeadLink
	Duration  time.Duration
}

// Notifier is an interface for sending link verification reports.
// Implementations should handle rate limiting, retries, and error logging
// internally.
type Notifier interface {
	// NotifyLinkReport sends a summary of a completed verification sweep.
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with exponential backoff
	//   - Respect context cancellation
	NotifyLinkReport(ctx context.Context, report *LinkReport) error
}
