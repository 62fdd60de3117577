package power

import (
	"context"
	"sync"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// SequenceReader replays a fixed list of readings, one per Read.
// Once exhausted it keeps reporting unavailable.
type SequenceReader struct {
	mu       sync.Mutex
	readings []model.Reading
	next     int
}

// NewSequenceReader creates a reader over readings.
func NewSequenceReader(readings ...model.Reading) *SequenceReader {
	return &SequenceReader{readings: readings}
}

// Levels creates a reader where every entry is an available reading.
func Levels(levels ...int) *SequenceReader {
	readings := make([]model.Reading, len(levels))
	for i, l := range levels {
		readings[i] = model.ReadingOf(l)
	}
	return NewSequenceReader(readings...)
}

func (s *SequenceReader) Read(_ context.Context) (model.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.readings) {
		return model.Unavailable(), ErrUnavailable
	}
	r := s.readings[s.next]
	s.next++
	if !r.Available {
		return r, ErrUnavailable
	}
	return r, nil
}

// Remaining reports how many readings have not been consumed.
func (s *SequenceReader) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings) - s.next
}
