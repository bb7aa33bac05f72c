package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes configuration health for one component:
// {component}_config_load_timestamp, {component}_config_fallbacks_total,
// and {component}_config_fallback_active. A non-zero fallback_active gauge
// means the process is running on defaults in place of whatever the
// operator configured.
type Metrics struct {
	loadTimestamp  prometheus.Gauge
	fallbacksTotal *prometheus.CounterVec
	fallbackActive prometheus.Gauge
}

// NewMetrics registers the metric set under the given component prefix via
// the default registry. Component names must be unique per process.
func NewMetrics(component string) *Metrics {
	return &Metrics{
		loadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of the last %s configuration load", component),
		}),
		fallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total %s configuration fallbacks by field", component),
		}, []string{"field"}),
		fallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 while any %s configuration field runs on its default after a rejected value", component),
		}),
	}
}

// RecordLoad marks a completed configuration load.
func (m *Metrics) RecordLoad() {
	m.loadTimestamp.SetToCurrentTime()
}

// RecordFallback counts one rejected value for the named field.
func (m *Metrics) RecordFallback(field string) {
	m.fallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flags whether any field is currently on its default.
func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.fallbackActive.Set(1)
	} else {
		m.fallbackActive.Set(0)
	}
}
