package alerts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogulcanaydogan/battery-observer/pkg/alerts"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifier_Name(t *testing.T) {
	n := alerts.NewSlackNotifier("https://hooks.slack.com/test", "#test")
	assert.Equal(t, "slack", n.Name())
}

func TestSlackNotifier_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewSlackNotifier(server.URL, "#battery")

	alert := alerts.Alert{
		Kind:    model.AlertLow,
		Level:   19,
		Low:     20,
		High:    80,
		Title:   "Plug in!",
		Message: "Plug in! Battery at 19%",
	}

	err := n.Send(context.Background(), alert)
	require.NoError(t, err)
	assert.Equal(t, "#battery", received["channel"])

	attachments, ok := received["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	first := attachments[0].(map[string]any)
	assert.Equal(t, "Battery low: Plug in!", first["title"])
	assert.Equal(t, "#ff0000", first["color"])
}

func TestSlackNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := alerts.NewSlackNotifier(server.URL, "#test")
	err := n.Send(context.Background(), alerts.Alert{Kind: model.AlertHigh})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSlackNotifier_KindColors(t *testing.T) {
	tests := []struct {
		kind  model.AlertKind
		color string
	}{
		{model.AlertLow, "#ff0000"},
		{model.AlertHigh, "#ff9900"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			var color string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Attachments []struct {
						Color string `json:"color"`
					} `json:"attachments"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if len(body.Attachments) > 0 {
					color = body.Attachments[0].Color
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			n := alerts.NewSlackNotifier(server.URL, "#test")
			require.NoError(t, n.Send(context.Background(), alerts.Alert{Kind: tt.kind, Level: 50}))
			assert.Equal(t, tt.color, color)
		})
	}
}
