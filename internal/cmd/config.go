package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/freementors/internal/config"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit freementors configuration",
	Long: `Manage configuration stored at ~/.freementors/config.yaml

Configuration includes:
  • API endpoint and timeout
  • Where the session is stored (encrypted file, redis or memory)
  • Default output format
  • Logging settings

Examples:
  # View the effective configuration
  freementors config view

  # Edit configuration in $EDITOR
  freementors config edit

  # Get a specific value
  freementors config get api.url

  # Set a specific value
  freementors config set api.url https://mentors.example.com/graphql/

  # Show configuration file path
  freementors config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Long:  `Display the configuration after applying the file, FREEMENTORS_* environment variables and flags.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration in $EDITOR",
	Long:  `Open the configuration file in your default editor (from $EDITOR environment variable).`,
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Get a specific configuration value",
	Long:      `Retrieve the effective value of a configuration key using dot notation (e.g., api.url).`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Long:  `Set the value of a configuration key in the config file using dot notation (e.g., api.timeout 60s).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// configLoader returns the loader for the current flags
func configLoader(cmd *cobra.Command) (*config.Loader, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create command context: %w", err)
	}
	return cmdCtx.Loader()
}

func runConfigView(cmd *cobra.Command, args []string) error {
	loader, err := configLoader(cmd)
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	redacted := *cfg
	if redacted.Storage.Passphrase != "" {
		redacted.Storage.Passphrase = "********"
	}

	// Use formatter for JSON/YAML output
	if cfg.Output.Format == "json" || cfg.Output.Format == "yaml" {
		formatter, err := ux.NewFormatter(cfg.Output.Format, &ux.FormatterOptions{
			Writer:  cmd.OutOrStdout(),
			NoColor: cfg.Output.NoColor,
		})
		if err != nil {
			return err
		}
		return formatter.Format(&redacted)
	}

	// Text output
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file: %s\n\n", loader.Path())

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	loader, err := configLoader(cmd)
	if err != nil {
		return err
	}
	configPath := loader.Path()

	// Ensure config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return ux.FormatError(err, "loading configuration")
		}
		if err := config.Save(cfg, configPath); err != nil {
			return ux.FormatError(err, "creating configuration")
		}
	}

	// Get editor from environment
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi" // Fallback to vi
	}

	// Open editor
	editorCmd := exec.CommandContext(cmd.Context(), editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	// Validate the edited config
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Configuration may contain errors: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Please check and fix the configuration file.\n")
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration updated successfully")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	loader, err := configLoader(cmd)
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := configLoader(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(loader.Path())
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := config.Save(cfg, loader.Path()); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	shown, _ := cfg.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, shown)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	loader, err := configLoader(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
	return nil
}
