package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "freementors",
	Short: "Terminal client for the Free Mentors platform",
	Long: `freementors connects members with mentors on the Free Mentors platform.

Members browse mentors and request mentorship sessions, mentors answer
incoming requests, and administrators manage user roles. Every command
runs behind the same role rules as the interactive client ('freementors ui').

Configuration is read from ~/.freementors/config.yaml, FREEMENTORS_*
environment variables and the flags below, in increasing precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use for
// API calls and cancellation
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.freementors/config.yaml)")
	flags.String("home", "", "directory for credentials, activity log and config (overrides storage.dir)")
	flags.String("api-url", "", "GraphQL endpoint of the Free Mentors API (overrides api.url)")
	flags.StringP("format", "f", "", "output format: text, json or yaml (overrides output.format)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn or error (overrides logging.level)")
}
