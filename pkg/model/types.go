package model

import (
	"fmt"
	"strings"
	"time"
)

// Reading is a single battery sample taken from a power source.
type Reading struct {
	Percent   int  `json:"percent"`
	Available bool `json:"available"`
}

// ReadingOf returns an available reading at the given charge percentage.
func ReadingOf(percent int) Reading {
	return Reading{Percent: percent, Available: true}
}

// Unavailable returns a reading that carries no level.
func Unavailable() Reading {
	return Reading{}
}

// Thresholds holds the effective low and high charge limits.
// Low < High is expected but not enforced.
type Thresholds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// AlertKind identifies which threshold an alert belongs to.
type AlertKind int

const (
	AlertNone AlertKind = iota
	AlertLow
	AlertHigh
)

func (k AlertKind) String() string {
	switch k {
	case AlertLow:
		return "low"
	case AlertHigh:
		return "high"
	default:
		return "none"
	}
}

// MarshalText encodes the kind by name.
func (k AlertKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind produced by MarshalText.
func (k *AlertKind) UnmarshalText(text []byte) error {
	parsed, err := ParseAlertKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseAlertKind converts "none", "low" or "high" into an AlertKind.
func ParseAlertKind(s string) (AlertKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AlertNone, nil
	case "low":
		return AlertLow, nil
	case "high":
		return AlertHigh, nil
	}
	return AlertNone, fmt.Errorf("unknown alert kind %q", s)
}

// AlertEvent is emitted by the engine when a threshold is crossed.
type AlertEvent struct {
	Kind  AlertKind `json:"kind"`
	Level int       `json:"level"`
}

// AlertRecord is a persisted alert event.
type AlertRecord struct {
	ID        string    `json:"id" db:"id"`
	Kind      AlertKind `json:"kind" db:"kind"`
	Level     int       `json:"level" db:"level"`
	Low       int       `json:"low" db:"low_threshold"`
	High      int       `json:"high" db:"high_threshold"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// HistoryFilter controls which alert records are returned.
type HistoryFilter struct {
	Kind      AlertKind `json:"kind,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	Limit     int       `json:"limit,omitempty"`
}
