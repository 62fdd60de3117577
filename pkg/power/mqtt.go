package power

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/mqttclient"
)

// DefaultMaxAge is how long an MQTT sample stays usable.
const DefaultMaxAge = 5 * time.Minute

// chargeKeys are the JSON fields accepted as a charge percentage, in order.
var chargeKeys = []string{"battery.charge", "battery_charge", "percent", "charge", "level"}

// MQTTReader reports the most recent charge published on a topic.
type MQTTReader struct {
	topic  string
	maxAge time.Duration
	now    func() time.Time

	mu     sync.RWMutex
	level  int
	seenAt time.Time

	cm *autopaho.ConnectionManager
}

// MQTTOption configures an MQTTReader.
type MQTTOption func(*MQTTReader)

// WithNow overrides the reader's clock.
func WithNow(now func() time.Time) MQTTOption {
	return func(m *MQTTReader) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMQTTReader creates a reader for topic. Samples older than maxAge are
// treated as unavailable.
func NewMQTTReader(topic string, maxAge time.Duration, opts ...MQTTOption) *MQTTReader {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	m := &MQTTReader{topic: topic, maxAge: maxAge, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect subscribes to the reader's topic on the given broker.
func (m *MQTTReader) Connect(ctx context.Context, cfg mqttclient.Config, logger *slog.Logger) error {
	cm, err := mqttclient.Connect(ctx, cfg, m.topic, func(topic string, payload []byte) {
		if topic != m.topic {
			logger.Debug("ignoring message on unexpected topic", "topic", topic)
			return
		}
		if err := m.Observe(payload); err != nil {
			logger.Warn("invalid battery message", "topic", topic, "payload", string(payload), "error", err)
		}
	}, logger)
	if err != nil {
		return err
	}
	m.cm = cm
	return nil
}

// Observe records a published payload as the latest sample.
func (m *MQTTReader) Observe(payload []byte) error {
	level, err := ParseChargePayload(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.level = level
	m.seenAt = m.now()
	m.mu.Unlock()
	return nil
}

func (m *MQTTReader) Read(_ context.Context) (model.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.seenAt.IsZero() {
		return model.Unavailable(), fmt.Errorf("%w: no message on %s yet", ErrUnavailable, m.topic)
	}
	if age := m.now().Sub(m.seenAt); age > m.maxAge {
		return model.Unavailable(), fmt.Errorf("%w: last message on %s is %s old", ErrUnavailable, m.topic, age.Round(time.Second))
	}
	return model.ReadingOf(m.level), nil
}

// Close disconnects from the broker.
func (m *MQTTReader) Close() error {
	if m.cm == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.cm.Disconnect(ctx)
}

// ParseChargePayload accepts a bare number or a JSON object carrying one of
// the known charge fields. Fractional values are truncated.
func ParseChargePayload(payload []byte) (int, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("empty payload")
	}

	if trimmed[0] != '{' {
		return parseChargeValue(string(trimmed))
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return 0, fmt.Errorf("decode payload: %w", err)
	}
	for _, key := range chargeKeys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return chargeOf(val)
		case string:
			return parseChargeValue(val)
		default:
			return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
		}
	}
	return 0, fmt.Errorf("payload has none of %s", strings.Join(chargeKeys, ", "))
}

func parseChargeValue(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse charge %q: %w", s, err)
	}
	return chargeOf(f)
}
