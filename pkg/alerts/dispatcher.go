package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSendTimeout bounds a single notifier call.
const DefaultSendTimeout = 10 * time.Second

// Dispatcher fans an alert out to every notifier in the background.
// Delivery failures are logged and reported to the failure hook only.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *slog.Logger
	onFailure func(notifier string, err error)

	wg sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSendTimeout sets the per-notifier deadline.
func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(ds *Dispatcher) {
		if d > 0 {
			ds.timeout = d
		}
	}
}

// WithFailureHook registers a callback for failed deliveries.
func WithFailureHook(fn func(notifier string, err error)) DispatcherOption {
	return func(ds *Dispatcher) { ds.onFailure = fn }
}

// NewDispatcher creates a dispatcher over notifiers. Nil entries are skipped.
func NewDispatcher(notifiers []Notifier, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{timeout: DefaultSendTimeout, logger: logger}
	for _, n := range notifiers {
		if n != nil {
			d.notifiers = append(d.notifiers, n)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts delivery and returns immediately.
func (d *Dispatcher) Dispatch(alert Alert) {
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			d.send(n, alert)
		}(n)
	}
}

func (d *Dispatcher) send(n Notifier, alert Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := n.Send(ctx, alert); err != nil {
		d.logger.Error("send alert failed",
			"notifier", n.Name(),
			"kind", alert.Kind.String(),
			"level", alert.Level,
			"error", err,
		)
		if d.onFailure != nil {
			d.onFailure(n.Name(), err)
		}
		return
	}
	d.logger.Debug("alert delivered", "notifier", n.Name(), "kind", alert.Kind.String())
}

// Wait blocks until all in-flight deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Names lists the configured notifiers.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}
