package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// Memory is a process-local Storage. Nothing survives a restart.
type Memory struct {
	mu       sync.RWMutex
	settings map[string]int
	alerts   []model.AlertRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{settings: make(map[string]int)}
}

func (m *Memory) GetSetting(_ context.Context, key string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	if !ok {
		return 0, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (m *Memory) SetSetting(_ context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *Memory) RecordAlert(_ context.Context, record *model.AlertRecord) error {
	if record.Kind == model.AlertNone {
		return fmt.Errorf("record alert: kind must be low or high")
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, *record)
	return nil
}

func (m *Memory) ListAlerts(_ context.Context, filter model.HistoryFilter) ([]model.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.AlertRecord
	for _, r := range m.alerts {
		if filter.Kind != model.AlertNone && r.Kind != filter.Kind {
			continue
		}
		if !filter.StartTime.IsZero() && r.Timestamp.Before(filter.StartTime) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
