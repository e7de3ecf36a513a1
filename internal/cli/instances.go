package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

var instanceColumns = []column{
	{"ID", "id"},
	{"NODE", "node_id"},
	{"USER", "user_id"},
	{"PORT", "port"},
	{"STATUS", "status"},
	{"CREATED", "created_at"},
}

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "Manage proxy instances",
}

var instancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := api.InstanceFilter{}
		filter.NodeID, _ = cmd.Flags().GetInt64("node")
		filter.UserID, _ = cmd.Flags().GetInt64("user")
		filter.Status, _ = cmd.Flags().GetString("status")
		filter.Page, _ = cmd.Flags().GetInt("page")
		filter.PageSize, _ = cmd.Flags().GetInt("page-size")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		page, err := c.ListInstances(cmd.Context(), filter)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(page)
			return nil
		}
		if err := renderTable(page.List, instanceColumns); err != nil {
			return err
		}
		fmt.Printf("Total: %d\n", page.Total)
		return nil
	},
}

var instancesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision an instance for a user on a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateInstanceRequest{}
		req.NodeID, _ = cmd.Flags().GetInt64("node")
		req.UserID, _ = cmd.Flags().GetInt64("user")
		req.Port, _ = cmd.Flags().GetInt("port")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		instance, err := c.CreateInstance(cmd.Context(), req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(instance)
		} else {
			okLabel.Printf("✓ Instance %d created on node %d (port %d)\n",
				instance.ID, instance.NodeID, instance.Port)
		}
		return nil
	},
}

var instancesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		instance, err := c.GetInstance(cmd.Context(), id)
		if err != nil {
			return handled(err)
		}
		printJSON(instance)
		return nil
	},
}

var instancesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Tear an instance down",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		if err := c.DeleteInstance(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Instance %d deleted\n", id)
		return nil
	},
}

var instancesRestartCmd = &cobra.Command{
	Use:   "restart <id>",
	Short: "Restart an instance's proxy process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		if err := c.RestartInstance(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Instance %d restarted\n", id)
		return nil
	},
}

var instancesSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <running|stopped>",
	Short: "Start or stop an instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		if err := c.SetInstanceStatus(cmd.Context(), id, args[1]); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Instance %d status set to %s\n", id, args[1])
		return nil
	},
}

var instancesConfigCmd = &cobra.Command{
	Use:   "config <id>",
	Short: "Show the rendered proxy configuration of an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		config, err := c.GetInstanceConfig(cmd.Context(), id)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(map[string]string{"config": config})
		} else {
			fmt.Println(config)
		}
		return nil
	},
}

func init() {
	instancesListCmd.Flags().Int64("node", 0, "Filter by node ID")
	instancesListCmd.Flags().Int64("user", 0, "Filter by user ID")
	instancesListCmd.Flags().String("status", "", "Filter by status")
	instancesListCmd.Flags().Int("page", 0, "Page number")
	instancesListCmd.Flags().Int("page-size", 0, "Page size")

	instancesCreateCmd.Flags().Int64("node", 0, "Node ID")
	instancesCreateCmd.Flags().Int64("user", 0, "User ID")
	instancesCreateCmd.Flags().Int("port", 0, "Listen port (0 = auto-assign)")

	instancesCmd.AddCommand(instancesListCmd, instancesCreateCmd, instancesGetCmd,
		instancesDeleteCmd, instancesRestartCmd, instancesSetStatusCmd, instancesConfigCmd)
	rootCmd.AddCommand(instancesCmd)
}
