package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ogulcanaydogan/battery-observer/pkg/alerts"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

var (
	mutedFormat    = color.New(color.FgHiBlack).SprintFunc()
	boldFormat     = color.New(color.FgHiWhite).SprintFunc()
	goodFormat     = color.New(color.FgGreen).SprintFunc()
	warningFormat  = color.New(color.FgHiYellow).SprintFunc()
	criticalFormat = color.New(color.FgHiRed).SprintFunc()
)

// levelFormat colours a charge level by the zone it falls in.
func levelFormat(level int, th model.Thresholds) string {
	s := fmt.Sprintf("%d%%", level)
	switch {
	case level <= th.Low:
		return criticalFormat(s)
	case level >= th.High:
		return warningFormat(s)
	default:
		return goodFormat(s)
	}
}

func alertFormat(kind model.AlertKind, level int) string {
	s := fmt.Sprintf("%s (%s at %d%%)", alerts.Headline(kind), kind, level)
	switch kind {
	case model.AlertLow:
		return criticalFormat(s)
	case model.AlertHigh:
		return warningFormat(s)
	default:
		return mutedFormat(kind.String())
	}
}

func enabledFormat(enabled bool) string {
	if enabled {
		return goodFormat("enabled")
	}
	return warningFormat("disabled")
}

func timeFormat(t time.Time) string {
	if t.IsZero() {
		return mutedFormat("never")
	}
	return fmt.Sprintf("%s %s", t.Local().Format(time.DateTime), mutedFormat("("+humanize.Time(t)+")"))
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("%s %s\n", warningFormat("warning:"), w)
	}
}
