package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/config"
)

// CommandContext holds the global flags of one command invocation
type CommandContext struct {
	ConfigPath string
	Home       string
	APIURL     string
	Format     string
	NoColor    bool
	LogLevel   string
}

// NewCommandContext extracts command context from cobra.Command flags.
// Commands should call this in their RunE function to get their configuration:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use cc.Format, cc.APIURL, etc.
//	}
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	home, err := cmd.Flags().GetString("home")
	if err != nil {
		return nil, err
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigPath: configPath,
		Home:       home,
		APIURL:     apiURL,
		Format:     format,
		NoColor:    noColor,
		LogLevel:   logLevel,
	}, nil
}

// Loader returns a configuration loader with the flags applied as
// overrides. --home moves both the config file and the storage directory
// unless --config names a file explicitly.
func (c *CommandContext) Loader() (*config.Loader, error) {
	path := c.ConfigPath
	if path == "" && c.Home != "" {
		path = filepath.Join(c.Home, "config.yaml")
	}

	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, err
	}

	if c.Home != "" {
		loader.Override("storage.dir", c.Home)
	}
	if c.APIURL != "" {
		loader.Override("api.url", c.APIURL)
	}
	if c.Format != "" {
		loader.Override("output.format", c.Format)
	}
	if c.NoColor {
		loader.Override("output.no_color", true)
	}
	if c.LogLevel != "" {
		loader.Override("logging.level", c.LogLevel)
	}
	return loader, nil
}

// LoadConfig reads the effective configuration
func (c *CommandContext) LoadConfig() (*config.Config, error) {
	loader, err := c.Loader()
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
