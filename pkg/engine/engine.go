// Package engine decides when a battery reading should raise a low or high
// charge alert.
//
// Two re-arm policies are available. ModeReference keeps a single record of
// the last alert kind: once Low has fired it fires again only after a High
// alert (and vice versa). ModeIndependent keeps one armed flag per zone and
// re-arms a zone as soon as the level leaves it.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// Mode selects the re-arm policy.
type Mode string

const (
	ModeReference   Mode = "reference"
	ModeIndependent Mode = "independent"
)

// ParseMode converts a configuration value into a Mode.
// An empty string selects ModeReference.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeReference:
		return ModeReference, nil
	case ModeIndependent:
		return ModeIndependent, nil
	}
	return "", fmt.Errorf("unknown engine mode %q", s)
}

// Engine holds the debounce state between ticks. It is safe for concurrent use.
type Engine struct {
	mu   sync.Mutex
	mode Mode

	last model.AlertKind

	lowArmed  bool
	highArmed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode sets the re-arm policy.
func WithMode(m Mode) Option {
	return func(e *Engine) {
		if m != "" {
			e.mode = m
		}
	}
}

// New creates an engine with no alert history.
func New(opts ...Option) *Engine {
	e := &Engine{mode: ModeReference}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

// Tick evaluates one reading and returns the event to present, if any.
// A disabled engine or an unavailable reading leaves the state untouched.
func (e *Engine) Tick(reading model.Reading, th model.Thresholds, enabled bool) (model.AlertEvent, bool) {
	if !enabled || !reading.Available {
		return model.AlertEvent{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeIndependent {
		return e.tickIndependent(reading.Percent, th)
	}
	return e.tickReference(reading.Percent, th)
}

// Low is evaluated first. High is considered only when Low did not fire, so
// with inverted thresholds a level inside both zones alternates Low and High.
func (e *Engine) tickReference(level int, th model.Thresholds) (model.AlertEvent, bool) {
	if level <= th.Low && e.last != model.AlertLow {
		e.last = model.AlertLow
		return model.AlertEvent{Kind: model.AlertLow, Level: level}, true
	} else if level >= th.High && e.last != model.AlertHigh {
		e.last = model.AlertHigh
		return model.AlertEvent{Kind: model.AlertHigh, Level: level}, true
	}
	return model.AlertEvent{}, false
}

func (e *Engine) tickIndependent(level int, th model.Thresholds) (model.AlertEvent, bool) {
	inLow := level <= th.Low
	inHigh := level >= th.High

	if !inLow {
		e.lowArmed = true
	}
	if !inHigh {
		e.highArmed = true
	}

	switch {
	case inLow:
		if e.lowArmed {
			e.lowArmed = false
			e.last = model.AlertLow
			return model.AlertEvent{Kind: model.AlertLow, Level: level}, true
		}
	case inHigh:
		if e.highArmed {
			e.highArmed = false
			e.last = model.AlertHigh
			return model.AlertEvent{Kind: model.AlertHigh, Level: level}, true
		}
	}
	return model.AlertEvent{}, false
}

// LastAlert returns the kind of the most recent alert emitted.
func (e *Engine) LastAlert() model.AlertKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Mode returns the configured re-arm policy.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Reset forgets all alert history, as on process start.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.last = model.AlertNone
	e.lowArmed = true
	e.highArmed = true
}
