package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// ErrNotFound is returned when a requested setting does not exist.
var ErrNotFound = errors.New("not found")

// Settings is a string-keyed integer store that survives restarts.
type Settings interface {
	// GetSetting returns the stored value for key, or ErrNotFound.
	GetSetting(ctx context.Context, key string) (int, error)

	// SetSetting stores value under key, replacing any previous value.
	SetSetting(ctx context.Context, key string, value int) error
}

// Storage defines the persistence layer for settings and alert history.
type Storage interface {
	Settings

	// RecordAlert persists a single alert record.
	RecordAlert(ctx context.Context, record *model.AlertRecord) error

	// ListAlerts returns alert records matching the filter, newest first.
	ListAlerts(ctx context.Context, filter model.HistoryFilter) ([]model.AlertRecord, error)

	// Close releases resources.
	Close() error
}
