package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

var logColumns = []column{
	{"ID", "id"},
	{"ADMIN", "admin_name"},
	{"ACTION", "action"},
	{"TARGET", "target_type"},
	{"DESCRIPTION", "description"},
	{"IP", "ip_address"},
	{"TIME", "created_at"},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Browse the admin operation audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := api.LogFilter{}
		filter.AdminID, _ = cmd.Flags().GetInt64("admin")
		filter.Action, _ = cmd.Flags().GetString("action")
		filter.TargetType, _ = cmd.Flags().GetString("target")
		filter.Page, _ = cmd.Flags().GetInt("page")
		filter.PageSize, _ = cmd.Flags().GetInt("page-size")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		page, err := c.ListOperationLogs(cmd.Context(), filter)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(page)
			return nil
		}
		if err := renderTable(page.Items, logColumns); err != nil {
			return err
		}
		fmt.Printf("Total: %d\n", page.Total)
		return nil
	},
}

func init() {
	logsCmd.Flags().Int64("admin", 0, "Filter by admin ID")
	logsCmd.Flags().String("action", "", "Filter by action (e.g., create, delete)")
	logsCmd.Flags().String("target", "", "Filter by target type (e.g., node, user)")
	logsCmd.Flags().Int("page", 0, "Page number")
	logsCmd.Flags().Int("page-size", 0, "Page size")

	rootCmd.AddCommand(logsCmd)
}
