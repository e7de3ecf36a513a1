package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

var templateColumns = []column{
	{"ID", "id"},
	{"NAME", "name"},
	{"FORMAT", "format"},
	{"DEFAULT", "is_default"},
	{"CREATED", "created_at"},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage subscription templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildConsole()
		if err != nil {
			return err
		}
		templates, err := c.ListTemplates(cmd.Context())
		if err != nil {
			return handled(err)
		}
		return printList(templates, templateColumns)
	},
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateTemplateRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Format, _ = cmd.Flags().GetString("format")

		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("unable to read template file: %w", err)
			}
			req.Content = string(content)
		}

		c, err := buildConsole()
		if err != nil {
			return err
		}
		template, err := c.CreateTemplate(cmd.Context(), req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(template)
		} else {
			okLabel.Printf("✓ Template %q created (id %d)\n", template.Name, template.ID)
		}
		return nil
	},
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := api.UpdateTemplateRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Format, _ = cmd.Flags().GetString("format")

		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("unable to read template file: %w", err)
			}
			req.Content = string(content)
		}

		c, err := buildConsole()
		if err != nil {
			return err
		}
		template, err := c.UpdateTemplate(cmd.Context(), id, req)
		if err != nil {
			return handled(err)
		}
		if jsonOutput {
			printJSON(template)
		} else {
			okLabel.Printf("✓ Template %d updated\n", template.ID)
		}
		return nil
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a template",
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
		if err := c.DeleteTemplate(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Template %d deleted\n", id)
		return nil
	},
}

var templatesSetDefaultCmd = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Mark a template as the default for new subscriptions",
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
		if err := c.SetDefaultTemplate(cmd.Context(), id); err != nil {
			return handled(err)
		}
		okLabel.Printf("✓ Template %d is now the default\n", id)
		return nil
	},
}

func init() {
	templatesCreateCmd.Flags().String("name", "", "Template name")
	templatesCreateCmd.Flags().String("format", "", "Output format (e.g., clash, surge)")
	templatesCreateCmd.Flags().String("file", "", "Path to the template content file")

	templatesUpdateCmd.Flags().String("name", "", "Template name")
	templatesUpdateCmd.Flags().String("format", "", "Output format")
	templatesUpdateCmd.Flags().String("file", "", "Path to the template content file")

	templatesCmd.AddCommand(templatesListCmd, templatesCreateCmd, templatesUpdateCmd,
		templatesDeleteCmd, templatesSetDefaultCmd)
	rootCmd.AddCommand(templatesCmd)
}
