package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eclipse/paho.golang/paho"
)

// Publisher is the subset of an MQTT connection used for alerts.
// *autopaho.ConnectionManager satisfies it.
type Publisher interface {
	Publish(ctx context.Context, p *paho.Publish) (*paho.PublishResponse, error)
}

// MQTTNotifier publishes alerts as JSON to a topic.
type MQTTNotifier struct {
	pub   Publisher
	topic string
}

// NewMQTTNotifier creates a notifier that publishes to topic.
func NewMQTTNotifier(pub Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic}
}

func (m *MQTTNotifier) Name() string { return "mqtt" }

func (m *MQTTNotifier) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}
	if _, err := m.pub.Publish(ctx, &paho.Publish{
		Topic:   m.topic,
		QoS:     1,
		Payload: body,
	}); err != nil {
		return fmt.Errorf("publish mqtt alert: %w", err)
	}
	return nil
}
