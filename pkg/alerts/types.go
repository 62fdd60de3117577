package alerts

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// Alert is a rendered battery threshold notification.
type Alert struct {
	Kind      model.AlertKind `json:"kind"`
	Level     int             `json:"level"`
	Low       int             `json:"low_threshold"`
	High      int             `json:"high_threshold"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// Headline is the short call to action shown for each alert kind.
func Headline(kind model.AlertKind) string {
	switch kind {
	case model.AlertLow:
		return "Plug in!"
	case model.AlertHigh:
		return "Enough!"
	default:
		return ""
	}
}

// Notifier delivers alerts to a user-visible surface.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
