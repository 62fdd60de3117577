// Package power reads the host battery charge from platform sources.
package power

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/mqttclient"
)

// ErrUnavailable means the source could not produce a charge level.
var ErrUnavailable = errors.New("battery reading unavailable")

// Reader returns the current battery charge on demand.
type Reader interface {
	Read(ctx context.Context) (model.Reading, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context) (model.Reading, error)

func (f ReaderFunc) Read(ctx context.Context) (model.Reading, error) { return f(ctx) }

// Sample reads once and folds every failure into an unavailable reading.
func Sample(ctx context.Context, r Reader) (model.Reading, error) {
	reading, err := r.Read(ctx)
	if err != nil {
		return model.Unavailable(), err
	}
	if !reading.Available {
		return model.Unavailable(), ErrUnavailable
	}
	if reading.Percent < 0 || reading.Percent > 100 {
		return model.Unavailable(), fmt.Errorf("%w: level %d outside 0-100", ErrUnavailable, reading.Percent)
	}
	return reading, nil
}

// chargeOf truncates a raw charge value, rejecting anything that is not a
// finite percentage.
func chargeOf(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: charge %v is not finite", ErrUnavailable, f)
	}
	if f < 0 || f >= 101 {
		return 0, fmt.Errorf("%w: charge %v outside 0-100", ErrUnavailable, f)
	}
	return int(f), nil
}

// percentOf converts a charge/capacity pair into a whole percentage,
// truncating toward zero.
func percentOf(now, full float64) (int, error) {
	if full <= 0 {
		return 0, fmt.Errorf("%w: capacity is %v", ErrUnavailable, full)
	}
	return chargeOf(now / full * 100)
}

// Source names accepted by New.
const (
	SourceAuto     = "auto"
	SourceSysfs    = "sysfs"
	SourcePmset    = "pmset"
	SourceMQTT     = "mqtt"
	SourceSimulate = "simulate"
)

// Options selects and configures a Reader.
type Options struct {
	Source    string
	Timeout   time.Duration
	SysfsRoot string
	MQTT      MQTTOptions
	Simulate  model.Thresholds
}

// MQTTOptions configures the MQTT source.
type MQTTOptions struct {
	Server   string
	Topic    string
	User     string
	Password string
	MaxAge   time.Duration
}

// New builds the reader named by opts.Source. The returned reader may
// implement io.Closer and should be closed when it does.
func New(ctx context.Context, opts Options, logger *slog.Logger) (Reader, error) {
	source := opts.Source
	if source == "" || source == SourceAuto {
		source = SourceSysfs
		if runtime.GOOS == "darwin" {
			source = SourcePmset
		}
	}

	var r Reader
	switch source {
	case SourceSysfs:
		r = NewSysfsReader(opts.SysfsRoot)
	case SourcePmset:
		r = NewPmsetReader()
	case SourceMQTT:
		if opts.MQTT.Topic == "" {
			return nil, fmt.Errorf("mqtt source requires a topic")
		}
		m := NewMQTTReader(opts.MQTT.Topic, opts.MQTT.MaxAge)
		err := m.Connect(ctx, mqttclient.Config{
			Server:   opts.MQTT.Server,
			User:     opts.MQTT.User,
			Password: opts.MQTT.Password,
			ClientID: mqttclient.ClientID("", "batobs-reader"),
		}, logger)
		if err != nil {
			return nil, err
		}
		r = m
	case SourceSimulate:
		r = NewSimulator(100, opts.Simulate, 1)
	default:
		return nil, fmt.Errorf("unknown power source %q", opts.Source)
	}

	logger.Info("power source selected", "source", source)
	if opts.Timeout > 0 {
		return WithTimeout(r, opts.Timeout), nil
	}
	return r, nil
}

// Close releases r if it holds resources.
func Close(r Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
