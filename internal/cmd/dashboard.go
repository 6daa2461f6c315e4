package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your session overview",
	Long: `Show who you are signed in as, the destinations your role can open
and how your mentorship sessions stand.

Examples:
  freementors dashboard`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(profileCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathDashboard); err != nil {
		return err
	}

	overview, notice := e.app.Overview(cmd.Context())
	if overview == nil {
		return noticeError(notice)
	}
	if notice.IsError() {
		e.logger.WithError(notice.Err).Warn("session counts unavailable")
	}
	return e.Print(&overviewView{*overview})
}

func runProfile(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathProfile); err != nil {
		return err
	}
	return e.Print(&profileView{*e.app.State().Identity})
}

type overviewView struct {
	app.Overview `yaml:",inline"`
}

// WriteText implements ux.TextWriter
func (v *overviewView) WriteText(w io.Writer, styles ux.Styles) error {
	fmt.Fprintf(w, "%s %s\n", styles.Header.Render("Welcome back,"), v.Identity.FullName())
	fmt.Fprintf(w, "%s\n\n", styles.Muted.Render(v.Identity.Role.Label()))

	if len(v.Tabs) > 0 {
		fmt.Fprintln(w, styles.Label.Render("Sessions"))
		for _, tab := range v.Tabs {
			fmt.Fprintf(w, "  %-10s %d\n", tab.Label, tab.Count)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, styles.Label.Render("Where to next"))
	for _, d := range v.Destinations {
		if d.Public || d.Path == authz.PathDashboard {
			continue
		}
		fmt.Fprintf(w, "  %-20s %s\n", d.Title, styles.Muted.Render("freementors ui "+d.Path))
	}
	return nil
}

type profileView struct {
	domain.Identity `yaml:",inline"`
}

// WriteText implements ux.TextWriter
func (v *profileView) WriteText(w io.Writer, styles ux.Styles) error {
	fields := [][2]string{
		{"Name", v.FullName()},
		{"Email", v.Email},
		{"Role", v.Role.Label()},
		{"Occupation", v.Occupation},
		{"Expertise", v.Expertise},
		{"Address", v.Address},
		{"Bio", v.Bio},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", styles.Label.Render(fmt.Sprintf("%-11s", f[0]+":")), f[1])
	}
	return nil
}
