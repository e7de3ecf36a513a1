package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the fleet summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildConsole()
		if err != nil {
			return err
		}
		stats, err := c.DashboardStats(cmd.Context())
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(stats)
			return nil
		}
		fmt.Printf("Users:     %d (%d active)\n", stats.TotalUsers, stats.ActiveUsers)
		fmt.Printf("Nodes:     %d (%d online)\n", stats.TotalNodes, stats.OnlineNodes)
		fmt.Printf("Instances: %d\n", stats.TotalInstances)
		fmt.Printf("Traffic:   %s today\n", formatBytes(stats.TodayTraffic))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
