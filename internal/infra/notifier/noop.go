package notifier

import "context"

// NoOpNotifier discards link reports. The sweep service always gets a
// non-nil Notifier, so disabling delivery never needs a nil check.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) NotifyLinkReport(ctx context.Context, report *LinkReport) error {
	return nil
}
