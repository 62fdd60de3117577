package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ogulcanaydogan/battery-observer/internal/config"
	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
	"github.com/ogulcanaydogan/battery-observer/pkg/alerts"
	"github.com/ogulcanaydogan/battery-observer/pkg/engine"
	"github.com/ogulcanaydogan/battery-observer/pkg/monitor"
	"github.com/ogulcanaydogan/battery-observer/pkg/mqttclient"
	"github.com/ogulcanaydogan/battery-observer/pkg/power"
	"github.com/ogulcanaydogan/battery-observer/pkg/storage"
	"github.com/ogulcanaydogan/battery-observer/pkg/thresholds"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "batobs",
	Short: "Battery Observer - low and high battery charge alerts",
	Long: `Battery Observer polls the battery charge level and raises a single alert
when it drops to the low threshold or climbs to the high threshold. It runs
as a background daemon with a local control API, and the CLI can adjust
thresholds, switch alerting on or off and show the alert history.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.batobs/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config. When a log file is
// configured, records go to stderr and to the rotated file.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates alert notifiers from config. The returned function
// releases any broker connection the notifiers hold.
func initNotifiers(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]alerts.Notifier, func(), error) {
	var notifiers []alerts.Notifier
	cleanup := func() {}

	if cfg.Alerts.Log.Enabled {
		notifiers = append(notifiers, alerts.NewLogNotifier(logger))
	}

	if cfg.Alerts.Desktop.Enabled {
		notifiers = append(notifiers, alerts.NewDesktopNotifier())
	}

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	if cfg.Alerts.MQTT.Enabled && cfg.Alerts.MQTT.Server != "" {
		cm, err := mqttclient.Connect(ctx, mqttclient.Config{
			Server:   cfg.Alerts.MQTT.Server,
			User:     cfg.Alerts.MQTT.User,
			Password: cfg.Alerts.MQTT.Password,
			ClientID: mqttclient.ClientID("", "batobs-alerts"),
		}, "", nil, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect alert broker: %w", err)
		}
		notifiers = append(notifiers, alerts.NewMQTTNotifier(cm, cfg.Alerts.MQTT.Topic))
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = cm.Disconnect(ctx)
		}
	}

	return notifiers, cleanup, nil
}

// initReader creates the configured battery source.
func initReader(ctx context.Context, cfg *config.Config, th *thresholds.Store, logger *slog.Logger) (power.Reader, error) {
	opts := power.Options{
		Source:    cfg.Reader.Source,
		Timeout:   cfg.Reader.Timeout,
		SysfsRoot: cfg.Reader.Sysfs.Root,
		MQTT: power.MQTTOptions{
			Server:   cfg.Reader.MQTT.Server,
			Topic:    cfg.Reader.MQTT.Topic,
			User:     cfg.Reader.MQTT.User,
			Password: cfg.Reader.MQTT.Password,
			MaxAge:   cfg.Reader.MQTT.MaxAge,
		},
	}
	if opts.Source == power.SourceSimulate {
		current, err := th.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("read thresholds: %w", err)
		}
		opts.Simulate = current
	}
	return power.New(ctx, opts, logger)
}

// app bundles the wired components shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      storage.Storage
	thresholds *thresholds.Store
	reader     power.Reader
	dispatcher *alerts.Dispatcher
	monitor    *monitor.Monitor
	cleanup    func()
}

func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.cleanup != nil {
		a.cleanup()
	}
	if a.reader != nil {
		if err := power.Close(a.reader); err != nil {
			a.logger.Warn("close power source", "error", err)
		}
	}
	a.store.Close()
}

// initMonitor creates a fully wired monitor.
func initMonitor(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := newLogger(cfg)

	mode, err := engine.ParseMode(cfg.Engine.Mode)
	if err != nil {
		return nil, err
	}
	tpl, err := alerts.NewTemplate(cfg.Alerts.Template)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, store: store, thresholds: thresholds.NewStore(store)}

	a.reader, err = initReader(ctx, cfg, a.thresholds, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifiers, cleanup, err := initNotifiers(ctx, cfg, logger)
	a.cleanup = cleanup
	if err != nil {
		a.Close()
		return nil, err
	}

	a.dispatcher = alerts.NewDispatcher(notifiers, logger,
		alerts.WithSendTimeout(cfg.Alerts.SendTimeout),
		alerts.WithFailureHook(func(name string, _ error) { metrics.IncNotifierFailure(name) }),
	)
	a.monitor = monitor.New(a.reader, a.thresholds, engine.New(engine.WithMode(mode)), a.dispatcher, logger,
		monitor.WithRecorder(store),
		monitor.WithTemplate(tpl),
	)
	return a, nil
}
