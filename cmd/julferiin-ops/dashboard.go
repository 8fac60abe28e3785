package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"julferiin-ops/internal/dashboard"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards",
	Long:  "dashboard renders the fleet and notification Grafana dashboards. Datasource UIDs are read from GREPTIMEDB_DATASOURCE_UID and POSTGRES_DATASOURCE_UID.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dashboard.Render(dashboardOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dashboards written to %s\n", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
}
