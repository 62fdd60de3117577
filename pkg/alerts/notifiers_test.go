package alerts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/eclipse/paho.golang/paho"
	"github.com/ogulcanaydogan/battery-observer/pkg/alerts"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []*paho.Publish
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, p *paho.Publish) (*paho.PublishResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, p)
	return &paho.PublishResponse{}, nil
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	n := alerts.NewLogNotifier(logger)
	assert.Equal(t, "log", n.Name())

	err := n.Send(context.Background(), alerts.Alert{Kind: model.AlertLow, Level: 12, Title: "Plug in!"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Plug in!", entry["msg"])
	assert.Equal(t, "low", entry["kind"])
}

func TestDesktopNotifier_Linux(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := alerts.NewDesktopNotifier(
		alerts.WithGOOS("linux"),
		alerts.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}),
	)
	assert.Equal(t, "desktop", n.Name())

	err := n.Send(context.Background(), alerts.Alert{Kind: model.AlertLow, Title: "Plug in!", Message: "Battery at 10%"})
	require.NoError(t, err)
	assert.Equal(t, "notify-send", gotName)
	assert.Contains(t, gotArgs, "--urgency=critical")
	assert.Contains(t, gotArgs, "--expire-time=3000")
	assert.Equal(t, "Battery at 10%", gotArgs[len(gotArgs)-1])
}

func TestDesktopNotifier_Darwin(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := alerts.NewDesktopNotifier(
		alerts.WithGOOS("darwin"),
		alerts.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}),
	)

	err := n.Send(context.Background(), alerts.Alert{Kind: model.AlertHigh, Title: "Enough!", Message: `Battery at "85%"`})
	require.NoError(t, err)
	assert.Equal(t, "osascript", gotName)
	require.Len(t, gotArgs, 2)
	assert.Equal(t, `display notification "Battery at \"85%\"" with title "Battery: Enough!"`, gotArgs[1])
}

func TestDesktopNotifier_Errors(t *testing.T) {
	n := alerts.NewDesktopNotifier(alerts.WithGOOS("plan9"))
	assert.Error(t, n.Send(context.Background(), alerts.Alert{}))

	failing := alerts.NewDesktopNotifier(
		alerts.WithGOOS("linux"),
		alerts.WithCommandRunner(func(context.Context, string, ...string) error {
			return errors.New("no display")
		}),
	)
	assert.Error(t, failing.Send(context.Background(), alerts.Alert{Kind: model.AlertHigh}))
}

func TestMQTTNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := alerts.NewMQTTNotifier(pub, "batobs/alerts")
	assert.Equal(t, "mqtt", n.Name())

	err := n.Send(context.Background(), alerts.Alert{Kind: model.AlertHigh, Level: 81, Title: "Enough!"})
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "batobs/alerts", pub.published[0].Topic)
	assert.Equal(t, byte(1), pub.published[0].QoS)

	var got alerts.Alert
	require.NoError(t, json.Unmarshal(pub.published[0].Payload, &got))
	assert.Equal(t, model.AlertHigh, got.Kind)
	assert.Equal(t, 81, got.Level)

	pub.err = errors.New("not connected")
	assert.Error(t, n.Send(context.Background(), alerts.Alert{Kind: model.AlertLow}))
}
