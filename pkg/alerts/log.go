package alerts

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs at warn level.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Send(ctx context.Context, alert Alert) error {
	l.logger.WarnContext(ctx, alert.Title,
		"kind", alert.Kind.String(),
		"level", alert.Level,
		"low", alert.Low,
		"high", alert.High,
		"message", alert.Message,
	)
	return nil
}
