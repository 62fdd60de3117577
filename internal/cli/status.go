package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var st server.StatusResponse
	if err := newAPIClient(cfg.Server.Listen).do(cmd.Context(), "GET", "/api/v1/status", nil, &st); err != nil {
		return err
	}

	fmt.Printf("Alerting:    %s\n", enabledFormat(st.Enabled))
	fmt.Printf("Mode:        %s\n", st.Mode)
	fmt.Printf("Thresholds:  low %d%%, high %d%%\n", st.Thresholds.Low, st.Thresholds.High)
	if st.LastReadingAt.IsZero() {
		fmt.Printf("Battery:     %s\n", mutedFormat("no reading yet"))
	} else {
		fmt.Printf("Battery:     %s at %s\n", levelFormat(st.LastReading.Percent, st.Thresholds), timeFormat(st.LastReadingAt))
	}
	if st.TrendKnown {
		fmt.Printf("Trend:       %+.2f%%/min\n", st.Trend)
	}
	fmt.Printf("Last alert:  %s\n", boldFormat(st.LastAlert.String()))
	fmt.Printf("Last check:  %s", timeFormat(st.LastTickAt))
	if st.LastOutcome != "" {
		fmt.Printf(" %s", mutedFormat("["+st.LastOutcome+"]"))
	}
	fmt.Println()
	fmt.Printf("Checks:      %d (%d alerts)\n", st.Ticks, st.Alerts)
	return nil
}
