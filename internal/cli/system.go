package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var systemColumns = []column{
	{"KEY", "key"},
	{"VALUE", "value"},
	{"DESCRIPTION", "description"},
	{"UPDATED", "updated_at"},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage server configuration entries",
}

var systemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildConsole()
		if err != nil {
			return err
		}
		configs, err := c.ListSystemConfigs(cmd.Context())
		if err != nil {
			return handled(err)
		}
		return printList(configs, systemColumns)
	},
}

var systemSetCmd = &cobra.Command{
	Use:   "set <key>=<value> [<key>=<value> ...]",
	Short: "Update one or more configuration entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := make(map[string]string, len(args))
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid entry %q, expected key=value", arg)
			}
			entries[key] = value
		}

		c, err := buildConsole()
		if err != nil {
			return err
		}
		if len(entries) == 1 {
			for key, value := range entries {
				if err := c.UpdateSystemConfig(cmd.Context(), key, value); err != nil {
					return handled(err)
				}
			}
		} else {
			if err := c.BatchUpdateSystemConfigs(cmd.Context(), entries); err != nil {
				return handled(err)
			}
		}
		okLabel.Printf("✓ %d configuration entries updated\n", len(entries))
		return nil
	},
}

func init() {
	systemCmd.AddCommand(systemListCmd, systemSetCmd)
	rootCmd.AddCommand(systemCmd)
}
