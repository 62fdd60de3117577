// Package thresholds stores the user's low and high charge limits.
package thresholds

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/storage"
)

const (
	KeyLow  = "lowThreshold"
	KeyHigh = "highThreshold"

	DefaultLow  = 20
	DefaultHigh = 80
)

// Ranges offered by the preferences sliders. Values outside them are
// stored anyway and only produce a warning.
const (
	minLow  = 5
	maxLow  = 50
	minHigh = 50
	maxHigh = 100
)

// EffectiveThreshold maps a stored value to the value the engine uses.
// Zero means unset and yields def; anything else is returned unchanged.
func EffectiveThreshold(stored, def int) int {
	if stored == 0 {
		return def
	}
	return stored
}

// Store reads and writes thresholds through a settings backend.
type Store struct {
	settings storage.Settings
}

// NewStore creates a threshold store.
func NewStore(settings storage.Settings) *Store {
	return &Store{settings: settings}
}

// Low returns the effective low threshold.
func (s *Store) Low(ctx context.Context) (int, error) {
	return s.effective(ctx, KeyLow, DefaultLow)
}

// High returns the effective high threshold.
func (s *Store) High(ctx context.Context) (int, error) {
	return s.effective(ctx, KeyHigh, DefaultHigh)
}

// Get returns both effective thresholds.
func (s *Store) Get(ctx context.Context) (model.Thresholds, error) {
	low, err := s.Low(ctx)
	if err != nil {
		return model.Thresholds{}, err
	}
	high, err := s.High(ctx)
	if err != nil {
		return model.Thresholds{}, err
	}
	return model.Thresholds{Low: low, High: high}, nil
}

// SetLow persists the low threshold verbatim.
func (s *Store) SetLow(ctx context.Context, v int) error {
	if err := s.settings.SetSetting(ctx, KeyLow, v); err != nil {
		return fmt.Errorf("set low threshold: %w", err)
	}
	return nil
}

// SetHigh persists the high threshold verbatim.
func (s *Store) SetHigh(ctx context.Context, v int) error {
	if err := s.settings.SetSetting(ctx, KeyHigh, v); err != nil {
		return fmt.Errorf("set high threshold: %w", err)
	}
	return nil
}

func (s *Store) effective(ctx context.Context, key string, def int) (int, error) {
	v, err := s.settings.GetSetting(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	return EffectiveThreshold(v, def), nil
}

// Validate returns human-readable warnings for suspicious thresholds.
// It never rejects a value.
func Validate(th model.Thresholds) []string {
	var warnings []string
	if th.Low >= th.High {
		warnings = append(warnings, fmt.Sprintf("low threshold %d is not below high threshold %d; low alerts take priority", th.Low, th.High))
	}
	if th.Low < 0 || th.Low > 100 {
		warnings = append(warnings, fmt.Sprintf("low threshold %d is outside 0-100", th.Low))
	} else if th.Low < minLow || th.Low > maxLow {
		warnings = append(warnings, fmt.Sprintf("low threshold %d is outside the usual %d-%d range", th.Low, minLow, maxLow))
	}
	if th.High < 0 || th.High > 100 {
		warnings = append(warnings, fmt.Sprintf("high threshold %d is outside 0-100", th.High))
	} else if th.High < minHigh || th.High > maxHigh {
		warnings = append(warnings, fmt.Sprintf("high threshold %d is outside the usual %d-%d range", th.High, minHigh, maxHigh))
	}
	return warnings
}
