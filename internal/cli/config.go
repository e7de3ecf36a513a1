package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/snellmaster/snellctl/internal/console"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config represents the snellctl configuration. It carries server connection
// details only; credentials live in per-console token files next to it.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" env:"-"`
	// ServerURL is the URL and port of the Snell Master backend
	ServerURL string `yaml:"server_url" env:"SNELLCTL_SERVER_URL"`
	// DefaultConsole selects the console when --console is not given
	DefaultConsole string `yaml:"default_console" env:"SNELLCTL_CONSOLE"`
	// DisableCertValidation skips TLS certificate verification
	DisableCertValidation bool `yaml:"disable_cert_validation" env:"SNELLCTL_INSECURE"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file.
// It uses the OS-specific config directory (e.g., ~/.config/snellctl on Linux).
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "snellctl", DefaultConfigFile), nil
}

// stateDir is the root for durable client state (token files). It sits next
// to the config file so one directory holds everything snellctl persists.
func stateDir() string {
	return filepath.Dir(configFile)
}

// LoadConfig loads the configuration from the specified file and applies
// SNELLCTL_* environment overrides on top of it.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	if err := env.Parse(&c); err != nil {
		return fmt.Errorf("unable to apply environment overrides: %w", err)
	}

	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}

	c.ServerURL = MorphServer(c.ServerURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted.
// Adds a scheme prefix if missing and removes trailing slashes.
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the server connection and the default console.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag != "" {
			defConsole, _ := cmd.Flags().GetString("default-console")
			return setServerConfig(serverFlag, defConsole)
		}

		cmd.Help()
		return nil
	},
}

// configClearCmd removes the persisted credentials of both consoles.
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear persisted credentials",
	Long: `Clear the persisted credentials of both consoles. The server
configuration is kept; log in again to obtain fresh credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			errorLabel.Fprintf(os.Stderr, "Unable to load config file: %s\n", err.Error())
			return ErrAlreadyHandled
		}

		cleared := 0
		for _, profile := range []console.Profile{console.AdminProfile(), console.UserProfile()} {
			c, err := console.New(profile, console.Options{
				ServerURL: GetConfig().GetServerURL(),
				StateDir:  stateDir(),
			})
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return fmt.Errorf("failed to clear %s credentials: %w", profile.Name, err)
			}
			cleared++
		}

		if jsonOutput {
			printJSON(map[string]int{"cleared": cleared})
		} else {
			okLabel.Println("✓ Credentials cleared")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the server URL and port (e.g., fleet.example.com:8080)")
	configCmd.Flags().String("default-console", "", "Set the default console: admin or user")

	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}

// setServerConfig writes a fresh configuration pointing at the given server.
func setServerConfig(server, defaultConsole string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	if !strings.Contains(server, ":") {
		return errors.New("server must include port number (e.g., fleet.example.com:8080)")
	}
	if defaultConsole != "" && defaultConsole != "admin" && defaultConsole != "user" {
		return fmt.Errorf("unknown console %q (expected admin or user)", defaultConsole)
	}

	cfg := &Config{
		Version:        "0.1.0",
		ServerURL:      MorphServer(server),
		DefaultConsole: defaultConsole,
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Server configured: %s\n", cfg.ServerURL)
		fmt.Printf("Config file: %s\n", configPath)
	}

	return nil
}
