// Package metrics exposes Prometheus instrumentation for the monitor loop.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "batobs_"

// Tick results.
const (
	ResultAlert       = "alert"
	ResultQuiet       = "quiet"
	ResultDisabled    = "disabled"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

var (
	registerOnce sync.Once

	ticksTotal       *prometheus.CounterVec
	alertsTotal      *prometheus.CounterVec
	notifierFailures *prometheus.CounterVec
	batteryLevel     prometheus.Gauge
	alertingEnabled  prometheus.Gauge
	tickDuration     prometheus.Histogram
)

// Init registers the collectors with reg. Later calls are no-ops.
// A nil reg uses the default registerer.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ticksTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticks_total",
				Help: "Total monitor ticks by result",
			},
			[]string{"result"},
		)
		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_total",
				Help: "Total alerts emitted by kind",
			},
			[]string{"kind"},
		)
		notifierFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifier_failures_total",
				Help: "Total failed alert deliveries by notifier",
			},
			[]string{"notifier"},
		)
		batteryLevel = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "battery_level_percent",
				Help: "Last available battery charge in percent",
			},
		)
		alertingEnabled = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alerting_enabled",
				Help: "1 when alerting is enabled, 0 otherwise",
			},
		)
		tickDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "tick_duration_seconds",
				Help:    "Monitor tick duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		reg.MustRegister(
			ticksTotal,
			alertsTotal,
			notifierFailures,
			batteryLevel,
			alertingEnabled,
			tickDuration,
		)
	})
}

// ObserveTick records a finished tick.
func ObserveTick(result string, seconds float64) {
	if result == "" {
		result = "unknown"
	}
	if ticksTotal != nil {
		ticksTotal.WithLabelValues(result).Inc()
	}
	if tickDuration != nil {
		tickDuration.Observe(seconds)
	}
}

// IncAlert counts an emitted alert.
func IncAlert(kind string) {
	if kind == "" {
		return
	}
	if alertsTotal != nil {
		alertsTotal.WithLabelValues(kind).Inc()
	}
}

// IncNotifierFailure counts a failed delivery.
func IncNotifierFailure(notifier string) {
	if notifier == "" {
		return
	}
	if notifierFailures != nil {
		notifierFailures.WithLabelValues(notifier).Inc()
	}
}

// SetBatteryLevel records the latest available reading.
func SetBatteryLevel(percent int) {
	if batteryLevel != nil {
		batteryLevel.Set(float64(percent))
	}
}

// SetAlertingEnabled mirrors the alerting toggle.
func SetAlertingEnabled(enabled bool) {
	if alertingEnabled == nil {
		return
	}
	if enabled {
		alertingEnabled.Set(1)
	} else {
		alertingEnabled.Set(0)
	}
}
