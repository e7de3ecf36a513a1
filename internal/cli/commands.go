// Package cli implements the snellctl command tree. One binary hosts both
// the administrator console and the end-user self-service console; the
// --console flag (or SNELLCTL_CONSOLE) selects which one a command runs
// against.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/snellmaster/snellctl/internal/common/httpclient"
	"github.com/snellmaster/snellctl/internal/console"
)

var (
	// Global flags
	jsonOutput  bool
	configFile  string
	consoleName string
)

// ErrAlreadyHandled marks an error whose message has already been shown to
// the user, e.g. through a pipeline notification. Execute exits nonzero
// without printing it again.
var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var warnLabel = color.New(color.FgYellow)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snellctl [command] [flags]",
	Short: "snellctl - command line consoles for a Snell Master proxy fleet",
	Long: `snellctl is a command line client for the Snell Master fleet management
service. It hosts two consoles over the same authenticated pipeline: the
administrator console and the end-user self-service console.

Examples:
  # Point the client at a server
  snellctl config --server fleet.example.com:8080

  # Login to the admin console
  snellctl login --username admin

  # List fleet nodes
  snellctl nodes list

  # Check your own traffic usage as an end user
  snellctl --console user whoami`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&consoleName, "console", "c", "", "Console to operate as: admin or user (default from config)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents loads the environment and configuration before
// command execution. Commands that manage configuration itself run without a
// loaded config.
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	// A .env next to the working directory may carry SNELLCTL_* overrides.
	godotenv.Load()

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	skipsConfig := false
	c := cmd
	for c != nil {
		if c.Name() == "config" || c.Name() == "version" {
			skipsConfig = true
			break
		}
		c = c.Parent()
	}
	if skipsConfig {
		return
	}

	if err := LoadConfig(configFile); err != nil {
		if os.IsNotExist(errors.Unwrap(err)) || os.IsNotExist(err) {
			errorLabel.Fprintln(os.Stderr, "snellctl is not configured. Run \"snellctl config --server <host:port>\" first.")
		} else {
			errorLabel.Fprintf(os.Stderr, "Unable to load config file: %s\n", err.Error())
		}
		os.Exit(1)
	}
}

// buildConsole assembles the console selected by --console (falling back to
// the configured default) with the CLI's indicator and notifier attached.
func buildConsole() (*console.Console, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}

	name := consoleName
	if name == "" {
		name = cfg.DefaultConsole
	}

	var profile console.Profile
	switch name {
	case "", "admin":
		profile = console.AdminProfile()
	case "user":
		profile = console.UserProfile()
	default:
		return nil, fmt.Errorf("unknown console %q (expected admin or user)", name)
	}

	return console.New(profile, console.Options{
		ServerURL:             cfg.GetServerURL(),
		StateDir:              stateDir(),
		Indicator:             newIndicator(),
		Notifier:              newNotifier(),
		DisableCertValidation: cfg.DisableCertValidation,
	})
}

// handled converts pipeline errors that already produced a user notification
// into ErrAlreadyHandled so Execute does not print them twice. Anything else
// passes through.
func handled(err error) error {
	if err == nil {
		return nil
	}
	var terr *httpclient.TransportError
	var herr *httpclient.HTTPStatusError
	var berr *httpclient.BusinessError
	if errors.Is(err, httpclient.ErrSessionExpired) ||
		errors.As(err, &terr) ||
		errors.As(err, &herr) ||
		errors.As(err, &berr) {
		return ErrAlreadyHandled
	}
	return err
}
