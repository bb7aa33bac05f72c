package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordImportOutcome(t *testing.T) {
	ImportsTotal.Reset()

	RecordImportOutcome("success")
	RecordImportOutcome("success")
	RecordImportOutcome("blocked")

	assert.Equal(t, 2.0, testutil.ToFloat64(ImportsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ImportsTotal.WithLabelValues("blocked")))
	assert.Equal(t, 0.0, testutil.ToFloat64(ImportsTotal.WithLabelValues("rate_limited")))
}

func TestRecordExtractionStage(t *testing.T) {
	ImportExtractionStage.Reset()

	for _, stage := range []string{"static", "static", "rendered", "ai", "none"} {
		RecordExtractionStage(stage)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(ImportExtractionStage.WithLabelValues("static")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ImportExtractionStage.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ImportExtractionStage.WithLabelValues("ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ImportExtractionStage.WithLabelValues("none")))
}

func TestRecordSSRFBlocked(t *testing.T) {
	SSRFBlockedTotal.Reset()

	RecordSSRFBlocked("initial")
	RecordSSRFBlocked("redirect")
	RecordSSRFBlocked("redirect")

	assert.Equal(t, 1.0, testutil.ToFloat64(SSRFBlockedTotal.WithLabelValues("initial")))
	assert.Equal(t, 2.0, testutil.ToFloat64(SSRFBlockedTotal.WithLabelValues("redirect")))
}

func TestRecordRenderFallback(t *testing.T) {
	RenderFallbackTotal.Reset()

	RecordRenderFallback("rendered")
	RecordRenderFallback("empty")
	RecordRenderFallback("error")

	for _, result := range []string{"rendered", "empty", "error"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(RenderFallbackTotal.WithLabelValues(result)), result)
	}
}

func TestUpdateRecipesTotal(t *testing.T) {
	UpdateRecipesTotal(100)
	assert.Equal(t, 100.0, testutil.ToFloat64(RecipesTotal))

	// The gauge follows the count down after deletions.
	UpdateRecipesTotal(97)
	assert.Equal(t, 97.0, testutil.ToFloat64(RecipesTotal))
}

func TestRecordLinkCheck(t *testing.T) {
	LinkChecksTotal.Reset()

	RecordLinkCheck("alive")
	RecordLinkCheck("alive")
	RecordLinkCheck("dead")

	assert.Equal(t, 2.0, testutil.ToFloat64(LinkChecksTotal.WithLabelValues("alive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(LinkChecksTotal.WithLabelValues("dead")))
	assert.Equal(t, 0.0, testutil.ToFloat64(LinkChecksTotal.WithLabelValues("error")))
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(5, 10)
	assert.Equal(t, 5.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 10.0, testutil.ToFloat64(DBConnectionsIdle))

	UpdateDBConnectionStats(0, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 0.0, testutil.ToFloat64(DBConnectionsIdle))
}

// Histogram helpers only observe, so the check is that the sample lands
// without panicking even at the bucket edges.
func TestHistogramRecorders(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordFetchDuration(0)
		RecordFetchDuration(14 * time.Second)
		RecordRedirectHops(0)
		RecordRedirectHops(5)
		RecordDBQuery("select_recipes", 10*time.Millisecond)
		RecordDBQuery("similarity_search", 500*time.Millisecond)
	})
}
