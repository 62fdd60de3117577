package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ogulcanaydogan/battery-observer/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNew_Validation(t *testing.T) {
	s, err := scheduler.New(0, func(context.Context) {}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, scheduler.DefaultInterval, s.Interval())

	_, err = scheduler.New(500*time.Millisecond, func(context.Context) {}, testLogger())
	assert.Error(t, err)
}

func TestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	s, err := scheduler.New(time.Hour, func(ctx context.Context) {
		assert.NoError(t, ctx.Err())
		calls.Add(1)
	}, testLogger())
	require.NoError(t, err)

	s.RunNow()
	s.RunNow()
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_TicksWithoutOverlap(t *testing.T) {
	var (
		calls   atomic.Int32
		active  atomic.Int32
		overlap atomic.Bool
	)
	s, err := scheduler.New(time.Second, func(context.Context) {
		if active.Add(1) > 1 {
			overlap.Store(true)
		}
		calls.Add(1)
		time.Sleep(1500 * time.Millisecond)
		active.Add(-1)
	}, testLogger())
	require.NoError(t, err)

	s.Start()
	time.Sleep(3200 * time.Millisecond)
	s.Stop()

	assert.False(t, overlap.Load())
	// Ticks at 1s and 2s: the second is skipped while the first still runs.
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.LessOrEqual(t, calls.Load(), int32(2))
	assert.Equal(t, int32(0), active.Load())
}

func TestScheduler_StopCancelsContext(t *testing.T) {
	var sawCancel atomic.Bool
	s, err := scheduler.New(time.Hour, func(ctx context.Context) {
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
	}, testLogger())
	require.NoError(t, err)

	s.Start()
	s.Stop()
	s.RunNow()
	assert.False(t, sawCancel.Load(), "task must not run after Stop")
}
