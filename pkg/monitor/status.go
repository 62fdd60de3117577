package monitor

import (
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/engine"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// Status is a point-in-time view of the monitor.
type Status struct {
	Enabled       bool            `json:"enabled"`
	Mode          engine.Mode     `json:"mode"`
	LastAlert     model.AlertKind `json:"last_alert"`
	LastReading   model.Reading   `json:"last_reading"`
	LastReadingAt time.Time       `json:"last_reading_at,omitempty"`
	LastTickAt    time.Time       `json:"last_tick_at,omitempty"`
	LastOutcome   string          `json:"last_outcome,omitempty"`
	Ticks         int64           `json:"ticks"`
	Alerts        int64           `json:"alerts"`

	// Trend is the smoothed charge rate in percent per minute, negative
	// while discharging. Valid once TrendKnown is set.
	Trend      float64 `json:"trend_percent_per_minute"`
	TrendKnown bool    `json:"trend_known"`
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	m.stateMu.RLock()
	s := m.state
	m.stateMu.RUnlock()

	s.Enabled = m.enabled.Load()
	s.Mode = m.engine.Mode()
	s.LastAlert = m.engine.LastAlert()
	return s
}
