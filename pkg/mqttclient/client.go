// Package mqttclient wraps autopaho connection setup shared by the MQTT
// battery source and the MQTT alert publisher.
package mqttclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
)

// Config describes a broker connection.
type Config struct {
	Server   string
	User     string
	Password string
	ClientID string

	// SessionExpiry is how long the broker keeps the session after a drop, in seconds.
	SessionExpiry uint32
}

// Handler receives every message published to a subscribed topic.
type Handler func(topic string, payload []byte)

// ServerURL turns "host:port" or a full URL into a broker URL.
func ServerURL(server string) (*url.URL, error) {
	if server == "" {
		return nil, fmt.Errorf("mqtt server is required")
	}
	if !strings.Contains(server, "://") {
		server = "mqtt://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse server URL %q: %w", server, err)
	}
	return u, nil
}

// ClientID returns id, or "<hostname>/<suffix>" when id is empty.
func ClientID(id, suffix string) string {
	if id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s/%s", host, suffix)
}

// Connect starts a managed connection. When topic is non-empty the client
// subscribes to it on every (re)connect and passes messages to handle.
// The connection runs until ctx is cancelled or Disconnect is called.
func Connect(ctx context.Context, cfg Config, topic string, handle Handler, logger *slog.Logger) (*autopaho.ConnectionManager, error) {
	serverURL, err := ServerURL(cfg.Server)
	if err != nil {
		return nil, err
	}

	expiry := cfg.SessionExpiry
	if expiry == 0 {
		expiry = 5 * 60
	}

	var onPublish []func(paho.PublishReceived) (bool, error)
	if handle != nil {
		onPublish = append(onPublish, func(pr paho.PublishReceived) (bool, error) {
			logger.Debug("mqtt message received", "topic", pr.Packet.Topic, "retain", pr.Packet.Retain)
			handle(pr.Packet.Topic, pr.Packet.Payload)
			return true, nil
		})
	}

	cliCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{serverURL},
		ConnectUsername:               cfg.User,
		ConnectPassword:               []byte(cfg.Password),
		KeepAlive:                     20,
		CleanStartOnInitialConnection: false,
		SessionExpiryInterval:         expiry,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			logger.Info("mqtt connected", "server", serverURL.Host)
			if topic == "" {
				return
			}
			// Subscribing here re-establishes the subscription after a reconnect.
			if _, err := cm.Subscribe(ctx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 1}},
			}); err != nil {
				logger.Error("mqtt subscribe", "topic", topic, "error", err)
				return
			}
			logger.Info("mqtt subscribed", "topic", topic)
		},
		OnConnectError: func(err error) {
			logger.Warn("mqtt connection attempt failed", "server", serverURL.Host, "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID:          ClientID(cfg.ClientID, "batobs"),
			OnPublishReceived: onPublish,
			OnClientError: func(err error) {
				logger.Error("mqtt client error", "error", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil {
					logger.Warn("mqtt server requested disconnect", "reason", d.Properties.ReasonString)
				} else {
					logger.Warn("mqtt server requested disconnect", "code", d.ReasonCode)
				}
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cliCfg)
	if err != nil {
		return nil, fmt.Errorf("start mqtt connection: %w", err)
	}
	return cm, nil
}
