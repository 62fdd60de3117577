package power

import (
	"context"
	"sync"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// overshoot is how far past a threshold the simulator travels before
// reversing, so the level dwells inside each alert zone for a few ticks.
const overshoot = 3

type simulatorState int

const (
	stateDischarging simulatorState = iota
	stateCharging
)

// Simulator fakes a battery that drains into the low zone, charges into
// the high zone and repeats.
type Simulator struct {
	mu    sync.Mutex
	level int
	step  int
	th    model.Thresholds
	state simulatorState
}

// NewSimulator starts at level and moves step percent per Read.
func NewSimulator(level int, th model.Thresholds, step int) *Simulator {
	if step <= 0 {
		step = 1
	}
	if th.Low == 0 && th.High == 0 {
		th = model.Thresholds{Low: 20, High: 80}
	}
	return &Simulator{level: clampPercent(level), step: step, th: th}
}

func (s *Simulator) Read(_ context.Context) (model.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.level
	switch s.state {
	case stateDischarging:
		s.level -= s.step
		if s.level <= s.th.Low-overshoot || s.level <= 0 {
			s.state = stateCharging
		}
	case stateCharging:
		s.level += s.step
		if s.level >= s.th.High+overshoot || s.level >= 100 {
			s.state = stateDischarging
		}
	}
	s.level = clampPercent(s.level)
	return model.ReadingOf(current), nil
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
