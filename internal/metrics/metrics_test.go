package metrics_test

import (
	"strings"
	"testing"

	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Init(reg)
	// Second init must not panic on duplicate registration.
	metrics.Init(reg)

	metrics.ObserveTick(metrics.ResultAlert, 0.01)
	metrics.ObserveTick(metrics.ResultQuiet, 0.01)
	metrics.ObserveTick(metrics.ResultQuiet, 0.01)
	metrics.IncAlert("low")
	metrics.IncAlert("")
	metrics.IncNotifierFailure("slack")
	metrics.SetBatteryLevel(42)
	metrics.SetAlertingEnabled(true)

	expected := `
# HELP batobs_ticks_total Total monitor ticks by result
# TYPE batobs_ticks_total counter
batobs_ticks_total{result="alert"} 1
batobs_ticks_total{result="quiet"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "batobs_ticks_total"))

	expected = `
# HELP batobs_battery_level_percent Last available battery charge in percent
# TYPE batobs_battery_level_percent gauge
batobs_battery_level_percent 42
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "batobs_battery_level_percent"))

	count, err := testutil.GatherAndCount(reg, "batobs_alerts_total", "batobs_notifier_failures_total", "batobs_alerting_enabled")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
