package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/tui"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and answer mentorship sessions",
	Long: `Mentors see the requests addressed to them, everyone else the
requests they made.

Examples:
  freementors sessions list
  freementors sessions list --status accepted
  freementors sessions respond 42 accept`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your mentorship sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsRespondCmd = &cobra.Command{
	Use:   "respond <session-id> [accept|decline]",
	Short: "Accept or decline a pending request (mentors only)",
	Long: `Accept or decline a pending mentorship request addressed to you.
Without an action you are asked to pick one in an interactive terminal.

Examples:
  freementors sessions respond 42 accept
  freementors sessions respond 42 decline`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeAt(1, completeResponseActions),
	RunE:              runSessionsRespond,
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending mentorship requests (mentors only)",
	Long: `List the mentorship requests still waiting for your answer.
Answer them with 'freementors sessions respond <id> accept|decline'.

Examples:
  freementors requests`,
	Args: cobra.NoArgs,
	RunE: runRequests,
}

func init() {
	sessionsListCmd.Flags().String("status", "", "only sessions in this status (pending, accepted, rejected, completed)")
	_ = sessionsListCmd.RegisterFlagCompletionFunc("status", completeStatuses)

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRespondCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(requestsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	statusFlag, _ := cmd.Flags().GetString("status")

	var status *domain.MentorshipStatus
	if statusFlag != "" {
		s, err := domain.ParseMentorshipStatus(statusFlag)
		if err != nil {
			return fmerrors.NewInvalidValueError("status", err)
		}
		status = &s
	}

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathSessions); err != nil {
		return err
	}

	board := e.app.Sessions()
	if err := noticeError(board.Load(cmd.Context())); err != nil {
		return err
	}
	return e.Print(sessionTable(board.WithStatus(status), board.Side(), "No mentorship sessions yet."))
}

func runSessionsRespond(cmd *cobra.Command, args []string) error {
	var answer string
	if len(args) == 2 {
		answer = args[1]
	} else {
		if !tui.ShouldPrompt() {
			return fmerrors.NewFieldRequiredError("action")
		}
		var err error
		answer, err = tui.PromptForSelect("Answer request "+args[0], []string{"accept", "decline"})
		if err != nil {
			return err
		}
	}

	action, err := domain.ParseResponseAction(answer)
	if err != nil {
		return fmerrors.NewInvalidValueError("action", err)
	}

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathRequests); err != nil {
		return err
	}
	return e.Report(cmd, e.app.Sessions().Respond(cmd.Context(), args[0], action))
}

func runRequests(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathRequests); err != nil {
		return err
	}

	board := e.app.Sessions()
	if err := noticeError(board.Load(cmd.Context())); err != nil {
		return err
	}
	return e.Print(sessionTable(board.Pending(), board.Side(), "No pending mentorship requests."))
}

// sessionTable shows the counterpart of each session: the mentee for
// mentors, the mentor for everyone else
func sessionTable(sessions []domain.MentorshipSession, side domain.SessionRole, empty string) *ux.Table {
	counterpart := "MENTOR"
	if side == domain.SessionRoleMentor {
		counterpart = "MENTEE"
	}

	t := &ux.Table{
		Headers: []string{"ID", counterpart, "EMAIL", "STATUS", "REQUESTED"},
		Empty:   empty,
		Items:   sessions,
	}
	for _, s := range sessions {
		p := s.Mentor
		if side == domain.SessionRoleMentor {
			p = s.Mentee
		}
		name, email := "-", "-"
		if p != nil {
			name, email = p.Name(), p.Email
		}
		t.Rows = append(t.Rows, []string{s.ID, name, email, string(s.Status), dash(s.CreatedAt)})
	}
	return t
}
