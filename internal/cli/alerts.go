package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/internal/server"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Switch alerting on the running daemon",
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	for _, action := range []struct{ name, short string }{
		{"enable", "Turn alerting on"},
		{"disable", "Turn alerting off; the last alert is remembered"},
		{"toggle", "Flip alerting on or off"},
	} {
		alertsCmd.AddCommand(&cobra.Command{
			Use:   action.name,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE:  alertsAction(action.name),
		})
	}
}

func alertsAction(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var resp server.AlertsResponse
		if err := newAPIClient(cfg.Server.Listen).do(cmd.Context(), "POST", "/api/v1/alerts/"+action, nil, &resp); err != nil {
			return err
		}
		fmt.Printf("Alerting %s\n", enabledFormat(resp.Enabled))
		return nil
	}
}
