package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all Battery Observer configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Reader   ReaderConfig   `mapstructure:"reader" yaml:"reader"`
	Alerts   AlertsConfig   `mapstructure:"alerts" yaml:"alerts"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ScheduleConfig defines how often the battery is polled.
type ScheduleConfig struct {
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	RunOnStart bool          `mapstructure:"run_on_start" yaml:"run_on_start"`
}

// EngineConfig selects the alert re-arm policy.
type EngineConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// ReaderConfig selects and configures the battery source.
type ReaderConfig struct {
	Source  string        `mapstructure:"source" yaml:"source"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Sysfs   SysfsConfig   `mapstructure:"sysfs" yaml:"sysfs"`
	MQTT    MQTTConfig    `mapstructure:"mqtt" yaml:"mqtt"`
}

// SysfsConfig defines the Linux power_supply location.
type SysfsConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
}

// MQTTConfig defines a broker connection.
type MQTTConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Server   string        `mapstructure:"server" yaml:"server"`
	Topic    string        `mapstructure:"topic" yaml:"topic"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password"`
	MaxAge   time.Duration `mapstructure:"max_age" yaml:"max_age,omitempty"`
}

// AlertsConfig defines alert presenters.
type AlertsConfig struct {
	SendTimeout time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`
	Template    string        `mapstructure:"template" yaml:"template"`
	Log         ToggleConfig  `mapstructure:"log" yaml:"log"`
	Desktop     ToggleConfig  `mapstructure:"desktop" yaml:"desktop"`
	Slack       SlackConfig   `mapstructure:"slack" yaml:"slack"`
	Webhook     WebhookConfig `mapstructure:"webhook" yaml:"webhook"`
	MQTT        MQTTConfig    `mapstructure:"mqtt" yaml:"mqtt"`
}

// ToggleConfig enables a presenter that needs no other settings.
type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
	Channel    string `mapstructure:"channel" yaml:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
	Secret  string `mapstructure:"secret" yaml:"secret"`
}

// ServerConfig defines the local control API.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Dir returns the per-user state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".batobs")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", filepath.Join(Dir(), "batobs.db"))
	v.SetDefault("schedule.interval", "20s")
	v.SetDefault("schedule.run_on_start", true)
	v.SetDefault("engine.mode", "reference")
	v.SetDefault("reader.source", "auto")
	v.SetDefault("reader.timeout", "5s")
	v.SetDefault("reader.sysfs.root", "/sys/class/power_supply")
	v.SetDefault("reader.mqtt.server", "")
	v.SetDefault("reader.mqtt.topic", "")
	v.SetDefault("reader.mqtt.user", "")
	v.SetDefault("reader.mqtt.password", "")
	v.SetDefault("reader.mqtt.max_age", "5m")
	v.SetDefault("alerts.send_timeout", "10s")
	v.SetDefault("alerts.template", "")
	v.SetDefault("alerts.log.enabled", true)
	v.SetDefault("alerts.desktop.enabled", false)
	v.SetDefault("alerts.slack.enabled", false)
	v.SetDefault("alerts.slack.webhook_url", "")
	v.SetDefault("alerts.slack.channel", "#battery")
	v.SetDefault("alerts.webhook.enabled", false)
	v.SetDefault("alerts.webhook.url", "")
	v.SetDefault("alerts.webhook.secret", "")
	v.SetDefault("alerts.mqtt.enabled", false)
	v.SetDefault("alerts.mqtt.server", "")
	v.SetDefault("alerts.mqtt.topic", "batobs/alerts")
	v.SetDefault("alerts.mqtt.user", "")
	v.SetDefault("alerts.mqtt.password", "")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen", "127.0.0.1:7420")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("BATOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

const redactedValue = "<redacted>"

// Redacted returns a copy with credentials replaced, for display.
func (c Config) Redacted() Config {
	redact := func(s *string) {
		if *s != "" {
			*s = redactedValue
		}
	}
	redact(&c.Reader.MQTT.Password)
	redact(&c.Alerts.Slack.WebhookURL)
	redact(&c.Alerts.Webhook.Secret)
	redact(&c.Alerts.MQTT.Password)
	return c
}
