package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/ux"
	"github.com/felixgeelhaar/freementors/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the client version. With --verbose the git commit, build date,
Go version, platform and the configured API endpoint are shown too.

Use the global --format flag for json or yaml output.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "show build details and the API endpoint")

	rootCmd.AddCommand(versionCmd)
}

type versionView struct {
	version.Info `yaml:",inline"`
	APIURL       string `json:"apiUrl,omitempty" yaml:"api_url,omitempty"`

	verbose bool
}

// WriteText implements ux.TextWriter
func (v *versionView) WriteText(w io.Writer, styles ux.Styles) error {
	if !v.verbose {
		_, err := fmt.Fprintf(w, "freementors %s\n", v.Short())
		return err
	}
	fmt.Fprintln(w, v.String())
	if v.APIURL != "" {
		fmt.Fprintf(w, "%s %s\n", styles.Muted.Render("API:"), v.APIURL)
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	view := &versionView{Info: version.GetInfo(), verbose: verbose}
	format, noColor := cmdCtx.Format, cmdCtx.NoColor
	// A broken config file must not hide the version.
	if cfg, err := cmdCtx.LoadConfig(); err == nil {
		view.APIURL = cfg.API.URL
		format, noColor = cfg.Output.Format, cfg.Output.NoColor
	}

	formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: noColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(view)
}
