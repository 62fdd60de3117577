package power

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

// DefaultSysfsRoot is where Linux exposes power supplies.
const DefaultSysfsRoot = "/sys/class/power_supply"

// SysfsReader reads the first battery found under a power_supply directory.
type SysfsReader struct {
	root string
}

// NewSysfsReader creates a reader rooted at root, or DefaultSysfsRoot if empty.
func NewSysfsReader(root string) *SysfsReader {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsReader{root: root}
}

func (s *SysfsReader) Read(ctx context.Context) (model.Reading, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return model.Unavailable(), fmt.Errorf("%w: list power supplies: %v", ErrUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return model.Unavailable(), err
		}
		dir := filepath.Join(s.root, name)
		if t, err := readString(dir, "type"); err != nil || t != "Battery" {
			continue
		}
		if present, err := readString(dir, "present"); err == nil && present == "0" {
			continue
		}
		percent, err := batteryPercent(dir)
		if err != nil {
			continue
		}
		return model.ReadingOf(percent), nil
	}

	return model.Unavailable(), fmt.Errorf("%w: no battery under %s", ErrUnavailable, s.root)
}

// batteryPercent prefers the kernel's capacity file and falls back to
// energy or charge counters.
func batteryPercent(dir string) (int, error) {
	if v, err := readInt(dir, "capacity"); err == nil {
		return int(v), nil
	}
	for _, pair := range [][2]string{
		{"energy_now", "energy_full"},
		{"charge_now", "charge_full"},
	} {
		now, errNow := readInt(dir, pair[0])
		full, errFull := readInt(dir, pair[1])
		if errNow == nil && errFull == nil {
			return percentOf(float64(now), float64(full))
		}
	}
	return 0, errors.New("no capacity attributes")
}

func readString(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readInt(dir, name string) (int64, error) {
	s, err := readString(dir, name)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
