package metrics

import "time"

// RecordImportOutcome records the terminal outcome of one recipe import.
// Each import reaches exactly one outcome, so summing the counter over all
// labels gives the total attempt count.
func RecordImportOutcome(outcome string) {
	ImportsTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchDuration records the time a guarded page fetch took, from the
// first hostname guard through the capped body read.
func RecordFetchDuration(duration time.Duration) {
	ImportFetchDuration.Observe(duration.Seconds())
}

// RecordExtractionStage records which stage of the extraction strategy
// produced the result. Stage is "static", "rendered", "ai", or "none".
func RecordExtractionStage(stage string) {
	ImportExtractionStage.WithLabelValues(stage).Inc()
}

// RecordRedirectHops records how many redirect hops a fetch followed before
// reaching its terminal response.
func RecordRedirectHops(hops int) {
	RedirectHops.Observe(float64(hops))
}

// RecordSSRFBlocked records that the address guard refused a target. Hop is
// "initial" for the caller-supplied URL and "redirect" for a later hop.
func RecordSSRFBlocked(hop string) {
	SSRFBlockedTotal.WithLabelValues(hop).Inc()
}

// RecordRenderFallback records a render fallback invocation.
// Result is "rendered", "empty", or "error".
func RecordRenderFallback(result string) {
	RenderFallbackTotal.WithLabelValues(result).Inc()
}

// UpdateRecipesTotal updates the total count of recipes in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateRecipesTotal(count int) {
	RecipesTotal.Set(float64(count))
}

// RecordLinkCheck records the outcome of one source link verification.
// Result is "alive", "dead", or "error".
func RecordLinkCheck(result string) {
	LinkChecksTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_recipes", "insert_recipe").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
