package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/pkg/thresholds"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show or change the low and high charge thresholds",
}

var thresholdsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective thresholds",
	RunE:  runThresholdsGet,
}

var thresholdsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store new thresholds; a running daemon applies them on its next check",
	RunE:  runThresholdsSet,
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
	thresholdsCmd.AddCommand(thresholdsGetCmd)
	thresholdsCmd.AddCommand(thresholdsSetCmd)

	thresholdsSetCmd.Flags().Int("low", 0, "Low threshold percentage (0 restores the default)")
	thresholdsSetCmd.Flags().Int("high", 0, "High threshold percentage (0 restores the default)")
}

func runThresholdsGet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	th, err := thresholds.NewStore(store).Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("read thresholds: %w", err)
	}

	fmt.Printf("Low:   %d%%\n", th.Low)
	fmt.Printf("High:  %d%%\n", th.High)
	printWarnings(thresholds.Validate(th))
	return nil
}

func runThresholdsSet(cmd *cobra.Command, _ []string) error {
	lowSet := cmd.Flags().Changed("low")
	highSet := cmd.Flags().Changed("high")
	if !lowSet && !highSet {
		return fmt.Errorf("at least one of --low or --high is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ts := thresholds.NewStore(store)
	if lowSet {
		low, _ := cmd.Flags().GetInt("low")
		if err := ts.SetLow(cmd.Context(), low); err != nil {
			return fmt.Errorf("set low threshold: %w", err)
		}
	}
	if highSet {
		high, _ := cmd.Flags().GetInt("high")
		if err := ts.SetHigh(cmd.Context(), high); err != nil {
			return fmt.Errorf("set high threshold: %w", err)
		}
	}

	th, err := ts.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("read thresholds: %w", err)
	}

	fmt.Printf("Thresholds set:\n")
	fmt.Printf("  Low:   %d%%\n", th.Low)
	fmt.Printf("  High:  %d%%\n", th.High)
	printWarnings(thresholds.Validate(th))
	return nil
}
