package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var mentorsCmd = &cobra.Command{
	Use:   "mentors",
	Short: "Browse mentors and request sessions",
	Long: `Browse the mentors on the platform and ask one of them for a
mentorship session. Requires a signed-in account.

Examples:
  freementors mentors list
  freementors mentors list --search compilers
  freementors mentors request grace@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var mentorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mentors",
	Long: `List mentors, optionally filtered by a free-text search over name,
email, occupation and expertise, or by one expertise area.

Examples:
  freementors mentors list
  freementors mentors list --expertise "Machine Learning"
  freementors mentors list --format json`,
	Args: cobra.NoArgs,
	RunE: runMentorsList,
}

var mentorsRequestCmd = &cobra.Command{
	Use:   "request <mentor-email>",
	Short: "Request a mentorship session",
	Long: `Ask a mentor for a mentorship session. The mentor sees the request
under 'freementors requests' and can accept or decline it.

Examples:
  freementors mentors request grace@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runMentorsRequest,
}

func init() {
	mentorsListCmd.Flags().StringP("search", "s", "", "free-text search")
	mentorsListCmd.Flags().String("expertise", "", "only mentors with this expertise")

	mentorsCmd.AddCommand(mentorsListCmd)
	mentorsCmd.AddCommand(mentorsRequestCmd)
	rootCmd.AddCommand(mentorsCmd)
}

func runMentorsList(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	expertise, _ := cmd.Flags().GetString("expertise")

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathMentors); err != nil {
		return err
	}

	board := e.app.Mentors()
	if err := noticeError(board.Load(cmd.Context())); err != nil {
		return err
	}

	empty := "No mentors are available yet."
	if search != "" || expertise != "" {
		empty = "No mentors match your search."
	}
	return e.Print(identityTable(board.Filter(search, expertise), empty, false))
}

func runMentorsRequest(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathMentors); err != nil {
		return err
	}
	return e.Report(cmd, e.app.Mentors().Request(cmd.Context(), args[0]))
}

// identityTable renders accounts; withRole adds the role column
func identityTable(people []domain.Identity, empty string, withRole bool) *ux.Table {
	headers := []string{"NAME", "EMAIL", "EXPERTISE", "OCCUPATION"}
	if withRole {
		headers = []string{"NAME", "EMAIL", "ROLE"}
	}

	t := &ux.Table{Headers: headers, Empty: empty, Items: people}
	for _, p := range people {
		if withRole {
			t.Rows = append(t.Rows, []string{p.FullName(), p.Email, p.Role.Label()})
			continue
		}
		t.Rows = append(t.Rows, []string{p.FullName(), p.Email, dash(p.Expertise), dash(p.Occupation)})
	}
	return t
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
