package model_test

import (
	"encoding/json"
	"testing"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingConstructors(t *testing.T) {
	r := model.ReadingOf(42)
	assert.True(t, r.Available)
	assert.Equal(t, 42, r.Percent)

	u := model.Unavailable()
	assert.False(t, u.Available)
	assert.Equal(t, 0, u.Percent)
}

func TestAlertKind_String(t *testing.T) {
	assert.Equal(t, "none", model.AlertNone.String())
	assert.Equal(t, "low", model.AlertLow.String())
	assert.Equal(t, "high", model.AlertHigh.String())
	assert.Equal(t, "none", model.AlertKind(99).String())
}

func TestParseAlertKind(t *testing.T) {
	tests := []struct {
		in   string
		want model.AlertKind
	}{
		{"low", model.AlertLow},
		{"HIGH", model.AlertHigh},
		{" none ", model.AlertNone},
		{"", model.AlertNone},
	}
	for _, tt := range tests {
		got, err := model.ParseAlertKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := model.ParseAlertKind("medium")
	assert.Error(t, err)
}

func TestAlertEvent_JSON(t *testing.T) {
	data, err := json.Marshal(model.AlertEvent{Kind: model.AlertLow, Level: 19})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"low","level":19}`, string(data))

	var ev model.AlertEvent
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"high","level":85}`), &ev))
	assert.Equal(t, model.AlertHigh, ev.Kind)
	assert.Equal(t, 85, ev.Level)
}
