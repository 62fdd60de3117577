package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Settings(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	_, err := m.GetSetting(ctx, "lowThreshold")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, m.SetSetting(ctx, "lowThreshold", 25))
	got, err := m.GetSetting(ctx, "lowThreshold")
	require.NoError(t, err)
	assert.Equal(t, 25, got)
}

func TestMemory_ListAlerts(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, m.RecordAlert(ctx, &model.AlertRecord{Kind: model.AlertLow, Level: 10, Timestamp: base}))
	require.NoError(t, m.RecordAlert(ctx, &model.AlertRecord{Kind: model.AlertHigh, Level: 90, Timestamp: base.Add(time.Minute)}))

	all, err := m.ListAlerts(ctx, model.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.AlertHigh, all[0].Kind)

	highs, err := m.ListAlerts(ctx, model.HistoryFilter{Kind: model.AlertHigh})
	require.NoError(t, err)
	assert.Len(t, highs, 1)

	limited, err := m.ListAlerts(ctx, model.HistoryFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.Error(t, m.RecordAlert(ctx, &model.AlertRecord{}))
}
