package alerts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// DesktopNotifier shows alerts through the OS notification service.
type DesktopNotifier struct {
	goos    string
	display time.Duration
	run     func(ctx context.Context, name string, args ...string) error
}

// DesktopOption configures a DesktopNotifier.
type DesktopOption func(*DesktopNotifier)

// WithCommandRunner replaces command execution.
func WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) DesktopOption {
	return func(d *DesktopNotifier) { d.run = run }
}

// WithGOOS selects the platform command set.
func WithGOOS(goos string) DesktopOption {
	return func(d *DesktopNotifier) { d.goos = goos }
}

// NewDesktopNotifier creates a notifier that shows a banner for a few seconds.
func NewDesktopNotifier(opts ...DesktopOption) *DesktopNotifier {
	d := &DesktopNotifier{
		goos:    runtime.GOOS,
		display: 3 * time.Second,
		run: func(ctx context.Context, name string, args ...string) error {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DesktopNotifier) Name() string { return "desktop" }

func (d *DesktopNotifier) Send(ctx context.Context, alert Alert) error {
	name, args, err := d.command(alert)
	if err != nil {
		return err
	}
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("show desktop notification: %w", err)
	}
	return nil
}

func (d *DesktopNotifier) command(alert Alert) (string, []string, error) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			strconv.Quote(alert.Message), strconv.Quote("Battery: "+alert.Title))
		return "osascript", []string{"-e", script}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		urgency := "normal"
		if alert.Kind == model.AlertLow {
			urgency = "critical"
		}
		return "notify-send", []string{
			"--app-name=batobs",
			"--urgency=" + urgency,
			"--expire-time=" + strconv.FormatInt(d.display.Milliseconds(), 10),
			alert.Title,
			alert.Message,
		}, nil
	}
	return "", nil, fmt.Errorf("desktop notifications unsupported on %s", d.goos)
}
