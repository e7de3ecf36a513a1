package cli

import (
	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

var subscriptionColumns = []column{
	{"ID", "id"},
	{"USER", "user_id"},
	{"URL", "url"},
	{"CREATED", "created_at"},
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Manage subscription links",
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildConsole()
		if err != nil {
			return err
		}
		subs, err := c.ListSubscriptions(cmd.Context())
		if err != nil {
			return handled(err)
		}
		return printList(subs, subscriptionColumns)
	},
}

var subscriptionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a subscription for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateSubscriptionRequest{}
		req.UserID, _ = cmd.Flags().GetInt64("user")
		req.TemplateID, _ = cmd.Flags().GetInt64("template")

		c, err := buildConsole()
		if err != nil {
			return err
		}
		sub, err := c.CreateSubscription(cmd.Context(), req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(sub)
		} else {
			okLabel.Printf("✓ Subscription %d issued: %s\n", sub.ID, sub.URL)
		}
		return nil
	},
}

var subscriptionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Revoke a subscription",
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
		if err := c.DeleteSubscription(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Subscription %d revoked\n", id)
		return nil
	},
}

var subscriptionsRegenerateCmd = &cobra.Command{
	Use:   "regenerate <id>",
	Short: "Rotate a subscription token",
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
		sub, err := c.RegenerateSubscriptionToken(cmd.Context(), id)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(sub)
		} else {
			okLabel.Printf("✓ Subscription %d regenerated: %s\n", sub.ID, sub.URL)
		}
		return nil
	},
}

func init() {
	subscriptionsCreateCmd.Flags().Int64("user", 0, "User ID")
	subscriptionsCreateCmd.Flags().Int64("template", 0, "Template ID (0 = default template)")

	subscriptionsCmd.AddCommand(subscriptionsListCmd, subscriptionsCreateCmd,
		subscriptionsDeleteCmd, subscriptionsRegenerateCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}
