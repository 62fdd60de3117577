// Package monitor ties a power source, the threshold store and the alert
// engine together into a single tick.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VividCortex/ewma"

	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
	"github.com/ogulcanaydogan/battery-observer/pkg/alerts"
	"github.com/ogulcanaydogan/battery-observer/pkg/engine"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/power"
)

// ThresholdSource supplies the effective thresholds for a tick.
type ThresholdSource interface {
	Get(ctx context.Context) (model.Thresholds, error)
}

// Recorder persists emitted alerts.
type Recorder interface {
	RecordAlert(ctx context.Context, record *model.AlertRecord) error
}

// Presenter delivers alerts without blocking the caller.
type Presenter interface {
	Dispatch(alert alerts.Alert)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Monitor runs one battery check per Tick. Ticks are serialised.
type Monitor struct {
	reader     power.Reader
	thresholds ThresholdSource
	engine     *engine.Engine
	presenter  Presenter
	template   *alerts.Template
	recorder   Recorder
	clock      Clock
	logger     *slog.Logger

	enabled atomic.Bool

	tickMu sync.Mutex

	stateMu sync.RWMutex
	state   Status
	trend   ewma.MovingAverage
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(m *Monitor) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithRecorder persists every emitted alert.
func WithRecorder(r Recorder) Option {
	return func(m *Monitor) { m.recorder = r }
}

// WithTemplate sets the message template.
func WithTemplate(t *alerts.Template) Option {
	return func(m *Monitor) {
		if t != nil {
			m.template = t
		}
	}
}

// New creates a monitor with alerting enabled.
func New(reader power.Reader, thresholds ThresholdSource, eng *engine.Engine, presenter Presenter, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		reader:     reader,
		thresholds: thresholds,
		engine:     eng,
		presenter:  presenter,
		clock:      systemClock{},
		logger:     logger,
		trend:      ewma.NewMovingAverage(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.template == nil {
		// The default template always parses.
		m.template, _ = alerts.NewTemplate("")
	}
	m.enabled.Store(true)
	metrics.SetAlertingEnabled(true)
	return m
}

// Result describes the outcome of a single tick.
type Result struct {
	Outcome string           `json:"outcome"`
	Reading model.Reading    `json:"reading"`
	Event   model.AlertEvent `json:"event"`
	Fired   bool             `json:"fired"`
}

// Tick samples the battery and emits at most one alert.
func (m *Monitor) Tick(ctx context.Context) Result {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	start := m.clock.Now()
	res := m.tick(ctx, start)
	metrics.ObserveTick(res.Outcome, m.clock.Now().Sub(start).Seconds())

	m.stateMu.Lock()
	m.state.LastTickAt = start
	m.state.LastOutcome = res.Outcome
	m.state.Ticks++
	if res.Reading.Available {
		m.observeTrend(res.Reading.Percent, start)
		m.state.LastReading = res.Reading
		m.state.LastReadingAt = start
	}
	if res.Fired {
		m.state.Alerts++
	}
	m.stateMu.Unlock()

	return res
}

// observeTrend folds the change since the previous reading into the
// smoothed charge rate. Callers hold stateMu.
func (m *Monitor) observeTrend(level int, at time.Time) {
	prev := m.state.LastReadingAt
	if prev.IsZero() {
		return
	}
	minutes := at.Sub(prev).Minutes()
	if minutes <= 0 {
		return
	}
	m.trend.Add(float64(level-m.state.LastReading.Percent) / minutes)
	m.state.Trend = m.trend.Value()
	m.state.TrendKnown = true
}

func (m *Monitor) tick(ctx context.Context, now time.Time) Result {
	if !m.enabled.Load() {
		m.logger.Debug("alerting disabled, skipping tick")
		return Result{Outcome: metrics.ResultDisabled}
	}

	th, err := m.thresholds.Get(ctx)
	if err != nil {
		m.logger.Error("read thresholds", "error", err)
		return Result{Outcome: metrics.ResultError}
	}

	reading, err := power.Sample(ctx, m.reader)
	if err != nil {
		if !errors.Is(err, power.ErrUnavailable) {
			m.logger.Warn("read battery", "error", err)
		} else {
			m.logger.Debug("battery reading unavailable", "error", err)
		}
		return Result{Outcome: metrics.ResultUnavailable, Reading: reading}
	}
	metrics.SetBatteryLevel(reading.Percent)

	ev, fired := m.engine.Tick(reading, th, m.enabled.Load())
	if !fired {
		m.logger.Debug("battery checked", "level", reading.Percent, "low", th.Low, "high", th.High)
		return Result{Outcome: metrics.ResultQuiet, Reading: reading}
	}

	m.emit(ctx, ev, th, now)
	return Result{Outcome: metrics.ResultAlert, Reading: reading, Event: ev, Fired: true}
}

func (m *Monitor) emit(ctx context.Context, ev model.AlertEvent, th model.Thresholds, now time.Time) {
	m.logger.Warn("battery threshold crossed",
		"kind", ev.Kind.String(),
		"level", ev.Level,
		"low", th.Low,
		"high", th.High,
	)
	metrics.IncAlert(ev.Kind.String())

	alert, err := m.template.Build(ev, th, now)
	if err != nil {
		m.logger.Error("render alert", "error", err)
		alert = alerts.Alert{
			Kind:      ev.Kind,
			Level:     ev.Level,
			Low:       th.Low,
			High:      th.High,
			Title:     alerts.Headline(ev.Kind),
			Message:   alerts.Headline(ev.Kind),
			Timestamp: now,
		}
	}

	if m.recorder != nil {
		rec := &model.AlertRecord{
			Kind:      ev.Kind,
			Level:     ev.Level,
			Low:       th.Low,
			High:      th.High,
			Timestamp: now,
		}
		if err := m.recorder.RecordAlert(ctx, rec); err != nil {
			m.logger.Error("record alert", "error", err)
		}
	}

	if m.presenter != nil {
		m.presenter.Dispatch(alert)
	}
}

// SetEnabled turns alerting on or off. It takes effect on the next tick.
func (m *Monitor) SetEnabled(enabled bool) {
	if m.enabled.Swap(enabled) != enabled {
		m.logger.Info("alerting toggled", "enabled", enabled)
	}
	metrics.SetAlertingEnabled(enabled)
}

// Enabled reports whether alerting is on.
func (m *Monitor) Enabled() bool {
	return m.enabled.Load()
}

// Toggle flips alerting and returns the new state.
func (m *Monitor) Toggle() bool {
	for {
		old := m.enabled.Load()
		if m.enabled.CompareAndSwap(old, !old) {
			m.logger.Info("alerting toggled", "enabled", !old)
			metrics.SetAlertingEnabled(!old)
			return !old
		}
	}
}

// Thresholds returns the thresholds the next tick would use.
func (m *Monitor) Thresholds(ctx context.Context) (model.Thresholds, error) {
	return m.thresholds.Get(ctx)
}
