package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/pkg/api"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Snell Master server",
		Long: `Login to the selected console and store the issued token.

The token is persisted per console, so the admin and user consoles hold
independent sessions.

Examples:
  snellctl login --username admin --password secret
  snellctl --console user login --username alice  # prompts for the password`,
		RunE: runLogin,
	}

	cmd.Flags().String("username", "", "Username for authentication")
	cmd.Flags().String("password", "", "Password for authentication (prompted when omitted)")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	c, err := buildConsole()
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if username == "" {
		return fmt.Errorf("no username provided. Use the --username flag")
	}
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	resp, err := c.Login(cmd.Context(), username, password)
	if err != nil {
		return handled(err)
	}

	// Post-login landing: an authenticated visit to the login route
	// bounces to the console's home route.
	home := c.Guard().Navigate("/login")

	if jsonOutput {
		kv := map[string]any{
			"status":  "success",
			"console": c.Name(),
			"route":   home,
		}
		if expiry := c.Session().TokenExpiry(); !expiry.IsZero() {
			kv["expires_at"] = expiry.Format(time.RFC3339)
		}
		printJSON(kv)
	} else {
		okLabel.Printf("✓ Login successful (%s console)\n", c.Name())
		if resp.Admin != nil {
			fmt.Printf("Logged in as: %s <%s>\n", resp.Admin.Username, resp.Admin.Email)
		}
		if resp.User != nil {
			fmt.Printf("Logged in as: %s <%s>\n", resp.User.Username, resp.User.Email)
		}
		if expiry := c.Session().TokenExpiry(); !expiry.IsZero() {
			fmt.Printf("Token expires at: %s\n", expiry.Format(time.RFC3339))
		}
	}

	return nil
}

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored credential for the selected console",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConsole()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(map[string]string{"status": "success", "console": c.Name()})
			} else {
				okLabel.Printf("✓ Logged out (%s console)\n", c.Name())
			}
			return nil
		},
	}
}

// newWhoamiCmd creates and returns a new whoami command
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated principal for the selected console",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConsole()
			if err != nil {
				return err
			}
			if !c.Session().Authenticated() {
				return fmt.Errorf("not logged in. Run \"snellctl login\" first")
			}

			principal, err := c.FetchPrincipal(cmd.Context())
			if err != nil {
				return handled(err)
			}

			if jsonOutput {
				kv := map[string]any{
					"console":   c.Name(),
					"principal": principal,
				}
				if expiry := c.Session().TokenExpiry(); !expiry.IsZero() {
					kv["expires_at"] = expiry.Format(time.RFC3339)
				}
				printJSON(kv)
				return nil
			}

			switch info := principal.(type) {
			case *api.AdminInfo:
				fmt.Printf("Console:  admin\n")
				fmt.Printf("Username: %s\n", info.Username)
				fmt.Printf("Email:    %s\n", info.Email)
				fmt.Printf("Role:     %d\n", info.Role)
			case *api.UserInfo:
				fmt.Printf("Console:  user\n")
				fmt.Printf("Username: %s\n", info.Username)
				fmt.Printf("Email:    %s\n", info.Email)
				fmt.Printf("Traffic:  %d / %d bytes\n", info.TrafficUsedTotal, info.TrafficLimit)
			default:
				printJSON(principal)
			}
			if expiry := c.Session().TokenExpiry(); !expiry.IsZero() {
				fmt.Printf("Expires:  %s\n", expiry.Format(time.RFC3339))
			}
			return nil
		},
	}
}
