// Package scheduler runs the monitor tick on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 20 * time.Second

// Task is one unit of scheduled work.
type Task func(ctx context.Context)

// Scheduler invokes a task every interval. Invocations never overlap: if a
// run is still in progress when the next one is due, the due run is skipped
// rather than queued.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	task     Task
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// running serialises RunNow with cron-driven runs.
	running sync.Mutex
}

// New creates a scheduler for task. It does not start until Start is called.
func New(interval time.Duration, task Task, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < time.Second {
		return nil, fmt.Errorf("interval %s is below the one second cron resolution", interval)
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		interval: interval,
		task:     task,
		logger:   logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc("@every "+interval.String(), s.run); err != nil {
		return nil, fmt.Errorf("register tick: %w", err)
	}
	return s, nil
}

// Start begins scheduling in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "interval", s.interval.String())
}

// Stop halts scheduling and waits for a running task to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.running.Lock()
	defer s.running.Unlock()
	s.logger.Info("scheduler stopped")
}

// RunNow executes the task immediately, waiting for any run in progress.
func (s *Scheduler) RunNow() {
	s.run()
}

// Interval returns the configured period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) run() {
	s.running.Lock()
	defer s.running.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.task(s.ctx)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
