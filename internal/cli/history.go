package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded alerts, newest first",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of alerts to show")
	historyCmd.Flags().StringP("kind", "k", "", "Only show low or high alerts")
	historyCmd.Flags().Duration("since", 0, "Only show alerts newer than this (e.g. 24h)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	kindStr, _ := cmd.Flags().GetString("kind")
	since, _ := cmd.Flags().GetDuration("since")

	kind, err := model.ParseAlertKind(kindStr)
	if err != nil {
		return err
	}
	filter := model.HistoryFilter{Kind: kind, Limit: limit}
	if since > 0 {
		filter.StartTime = time.Now().UTC().Add(-since)
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListAlerts(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No alerts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tKIND\tLEVEL\tLOW\tHIGH\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%d%%\t%d%%\n",
			humanize.Time(r.Timestamp), r.Kind, r.Level, r.Low, r.High,
		)
	}
	w.Flush()

	return nil
}
