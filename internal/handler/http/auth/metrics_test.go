package auth

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAuthRequest(t *testing.T) {
	before := testutil.ToFloat64(authRequestsTotal.WithLabelValues(RoleAdmin, "success"))
	RecordAuthRequest(RoleAdmin, "success")
	after := testutil.ToFloat64(authRequestsTotal.WithLabelValues(RoleAdmin, "success"))
	if after != before+1 {
		t.Errorf("auth_requests_total{admin,success} = %v, want %v", after, before+1)
	}

	failBefore := testutil.ToFloat64(authRequestsTotal.WithLabelValues("unknown", "failure"))
	RecordAuthRequest("unknown", "failure")
	if got := testutil.ToFloat64(authRequestsTotal.WithLabelValues("unknown", "failure")); got != failBefore+1 {
		t.Errorf("auth_requests_total{unknown,failure} = %v, want %v", got, failBefore+1)
	}
}

func TestRecordForbiddenAttempt(t *testing.T) {
	before := testutil.ToFloat64(forbiddenAttempts.WithLabelValues(RoleViewer, "POST"))
	recordForbiddenAttempt(RoleViewer, "POST")
	if got := testutil.ToFloat64(forbiddenAttempts.WithLabelValues(RoleViewer, "POST")); got != before+1 {
		t.Errorf("forbidden_attempts_total = %v, want %v", got, before+1)
	}
}

func TestDurationMetricsDoNotPanic(t *testing.T) {
	RecordAuthDuration(RoleAdmin, 0.005)
	RecordAuthDuration("unknown", 0)
	recordAuthzCheck(0.0002)
}
