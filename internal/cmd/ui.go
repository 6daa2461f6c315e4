package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [destination]",
	Short: "Open the interactive client",
	Long: `Open the full-screen client. Without a destination you land on the
home of your role; a destination you cannot open sends you to sign in or
to the unauthorized page, as in the browser.

Destinations: /auth /dashboard /mentors /profile /sessions /requests /admin

Logs are written to ~/.freementors/freementors.log (or logging.file) so
they do not disturb the screen.

Examples:
  freementors ui
  freementors ui /mentors`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeAt(0, completeDestinations),
	RunE:              runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	start := authz.PathRoot
	if len(args) == 1 {
		start = args[0]
	}

	e, err := newEnv(cmd, envOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Info("interactive client started", "destination", start)
	if err := tui.Run(cmd.Context(), e.app, start); err != nil {
		e.logger.LogError(err)
		return err
	}
	return nil
}
