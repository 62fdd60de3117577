package power

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

var pmsetPercentRegex = regexp.MustCompile(`InternalBattery.*?\s(\d{1,3})%`)

// PmsetReader reads the battery level from macOS `pmset -g batt`.
type PmsetReader struct {
	run func(ctx context.Context) ([]byte, error)
}

// NewPmsetReader creates a reader that shells out to pmset.
func NewPmsetReader() *PmsetReader {
	return &PmsetReader{run: func(ctx context.Context) ([]byte, error) {
		return exec.CommandContext(ctx, "pmset", "-g", "batt").Output()
	}}
}

// NewPmsetReaderWithRunner creates a reader over a custom command runner.
func NewPmsetReaderWithRunner(run func(ctx context.Context) ([]byte, error)) *PmsetReader {
	return &PmsetReader{run: run}
}

func (p *PmsetReader) Read(ctx context.Context) (model.Reading, error) {
	out, err := p.run(ctx)
	if err != nil {
		return model.Unavailable(), fmt.Errorf("%w: run pmset: %v", ErrUnavailable, err)
	}
	percent, err := ParsePmset(out)
	if err != nil {
		return model.Unavailable(), err
	}
	return model.ReadingOf(percent), nil
}

// ParsePmset extracts the internal battery percentage from pmset output.
func ParsePmset(out []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := pmsetPercentRegex.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: parse pmset percent: %v", ErrUnavailable, err)
		}
		if v > 100 {
			return 0, fmt.Errorf("%w: pmset percent %d outside 0-100", ErrUnavailable, v)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: no internal battery in pmset output", ErrUnavailable)
}
