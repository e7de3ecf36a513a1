package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

var userColumns = []column{
	{"ID", "id"},
	{"USERNAME", "username"},
	{"EMAIL", "email"},
	{"STATUS", "status"},
	{"TRAFFIC USED", "traffic_used_total"},
	{"TRAFFIC LIMIT", "traffic_limit"},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage end users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := api.UserFilter{}
		filter.Username, _ = cmd.Flags().GetString("username")
		filter.Status, _ = cmd.Flags().GetInt("status")
		filter.Page, _ = cmd.Flags().GetInt("page")
		filter.PageSize, _ = cmd.Flags().GetInt("page-size")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		page, err := c.ListUsers(cmd.Context(), filter)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(page)
			return nil
		}
		if err := renderTable(page.List, userColumns); err != nil {
			return err
		}
		fmt.Printf("Total: %d\n", page.Total)
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateUserRequest{}
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.TrafficLimit, _ = cmd.Flags().GetInt64("traffic-limit")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		user, err := c.CreateUser(cmd.Context(), req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(user)
		} else {
			okLabel.Printf("✓ User %q created (id %d)\n", user.Username, user.ID)
		}
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
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
		user, err := c.GetUser(cmd.Context(), id)
		if err != nil {
			return handled(err)
		}
		printJSON(user)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update user attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := api.UpdateUserRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.TrafficLimit, _ = cmd.Flags().GetInt64("traffic-limit")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		user, err := c.UpdateUser(cmd.Context(), id, req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(user)
		} else {
			okLabel.Printf("✓ User %d updated\n", user.ID)
		}
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a user",
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
		if err := c.DeleteUser(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ User %d deleted\n", id)
		return nil
	},
}

var usersResetTrafficCmd = &cobra.Command{
	Use:   "reset-traffic <id>",
	Short: "Zero a user's traffic counters",
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
		if err := c.ResetUserTraffic(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Traffic counters reset for user %d\n", id)
		return nil
	},
}

var usersSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Enable (1) or disable (0) a user account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid status %q", args[1])
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		if err := c.SetUserStatus(cmd.Context(), id, status); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ User %d status set to %d\n", id, status)
		return nil
	},
}

var usersAssignNodesCmd = &cobra.Command{
	Use:   "assign-nodes <id> <node-id,node-id,...>",
	Short: "Grant a user access to the given nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var nodeIDs []int64
		for _, part := range strings.Split(args[1], ",") {
			nodeID, err := parseID(strings.TrimSpace(part))
			if err != nil {
				return err
			}
			nodeIDs = append(nodeIDs, nodeID)
		}
		c, err := buildConsole()
		if err != nil {
			return err
		}
		if err := c.AssignNodes(cmd.Context(), id, nodeIDs); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ User %d assigned %d node(s)\n", id, len(nodeIDs))
		return nil
	},
}

func init() {
	usersListCmd.Flags().String("username", "", "Filter by username")
	usersListCmd.Flags().Int("status", 0, "Filter by status")
	usersListCmd.Flags().Int("page", 0, "Page number")
	usersListCmd.Flags().Int("page-size", 0, "Page size")

	usersCreateCmd.Flags().String("username", "", "Username")
	usersCreateCmd.Flags().String("email", "", "Email address")
	usersCreateCmd.Flags().String("password", "", "Initial password")
	usersCreateCmd.Flags().Int64("traffic-limit", 0, "Traffic limit in bytes (0 = unlimited)")

	usersUpdateCmd.Flags().String("email", "", "Email address")
	usersUpdateCmd.Flags().String("password", "", "New password")
	usersUpdateCmd.Flags().Int64("traffic-limit", 0, "Traffic limit in bytes")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersGetCmd, usersUpdateCmd,
		usersDeleteCmd, usersResetTrafficCmd, usersSetStatusCmd, usersAssignNodesCmd)
	rootCmd.AddCommand(usersCmd)
}
