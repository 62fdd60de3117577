package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Read the battery once and alert if a threshold is crossed",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("source", "", "Power source: auto, sysfs, pmset, mqtt, simulate")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Reader.Source = source
	}

	a, err := initMonitor(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	th, err := a.thresholds.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("read thresholds: %w", err)
	}

	res := a.monitor.Tick(cmd.Context())

	fmt.Printf("Thresholds:  low %d%%, high %d%%\n", th.Low, th.High)
	switch res.Outcome {
	case metrics.ResultUnavailable:
		fmt.Printf("Battery:     %s\n", mutedFormat("unavailable"))
	case metrics.ResultError:
		return fmt.Errorf("check failed, see log for details")
	default:
		fmt.Printf("Battery:     %s\n", levelFormat(res.Reading.Percent, th))
	}

	if res.Fired {
		fmt.Printf("Alert:       %s\n", alertFormat(res.Event.Kind, res.Event.Level))
	} else {
		fmt.Printf("Alert:       %s\n", mutedFormat("none"))
	}
	return nil
}
