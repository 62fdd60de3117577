package power

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

type timeoutReader struct {
	inner   Reader
	timeout time.Duration
}

// WithTimeout bounds every Read of r. A read that does not finish in time
// reports ErrUnavailable; the inner call is left to finish on its own.
func WithTimeout(r Reader, d time.Duration) Reader {
	return &timeoutReader{inner: r, timeout: d}
}

type readResult struct {
	reading model.Reading
	err     error
}

func (t *timeoutReader) Read(ctx context.Context) (model.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		reading, err := t.inner.Read(ctx)
		done <- readResult{reading: reading, err: err}
	}()

	select {
	case res := <-done:
		return res.reading, res.err
	case <-ctx.Done():
		return model.Unavailable(), fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

// Close forwards to the wrapped reader.
func (t *timeoutReader) Close() error {
	return Close(t.inner)
}
