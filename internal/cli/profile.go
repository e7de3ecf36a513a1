package cli

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/snellmaster/snellctl/pkg/api"
)

// newChangePasswordCmd creates and returns a new change-password command
func newChangePasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the logged-in principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConsole()
			if err != nil {
				return err
			}
			if !c.Session().Authenticated() {
				return fmt.Errorf("not logged in. Run \"snellctl login\" first")
			}

			oldPassword, _ := cmd.Flags().GetString("old")
			newPassword, _ := cmd.Flags().GetString("new")
			if oldPassword == "" {
				if oldPassword, err = promptPassword("Current password: "); err != nil {
					return err
				}
			}
			if newPassword == "" {
				if newPassword, err = promptPassword("New password: "); err != nil {
					return err
				}
			}

			if err := c.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return handled(err)
			}
			okLabel.Println("✓ Password changed")
			return nil
		},
	}

	cmd.Flags().String("old", "", "Current password (prompted when omitted)")
	cmd.Flags().String("new", "", "New password (prompted when omitted)")
	return cmd
}

// newProfileCmd creates the end-user self-service profile commands
func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or update your own profile (user console)",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConsole()
			if err != nil {
				return err
			}
			info, err := c.UserProfileInfo(cmd.Context())
			if err != nil {
				return handled(err)
			}
			printJSON(info)
			return nil
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.UpdateUserRequest{}
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")

			c, err := buildConsole()
			if err != nil {
				return err
			}
			if err := c.UpdateUserProfile(cmd.Context(), req); err != nil {
				return handled(err)
			}
			okLabel.Println("✓ Profile updated")
			return nil
		},
	}
	updateCmd.Flags().String("email", "", "New email address")
	updateCmd.Flags().String("password", "", "New password")

	cmd.AddCommand(showCmd, updateCmd)
	return cmd
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	rootCmd.AddCommand(newChangePasswordCmd())
	rootCmd.AddCommand(newProfileCmd())
}
