package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/security"
	"github.com/felixgeelhaar/freementors/internal/tui"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your Free Mentors session",
	Long: `Manage your Free Mentors session.

Subcommands:
  register  Create an account
  login     Sign in with email and password
  logout    Sign out and forget the stored session
  status    Show who is signed in
  history   Show recent account activity on this machine

The session token is stored encrypted in ~/.freementors/credentials.json
(or in redis when storage.backend is redis).

Examples:
  freementors auth register --first-name Ada --last-name Lovelace --email ada@example.com
  freementors auth login --email ada@example.com
  freementors auth status
  freementors auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long: `Sign in with your email and password.

Missing fields are prompted for in an interactive terminal.

Examples:
  freementors auth login --email ada@example.com --password s3cret
  FREEMENTORS_PASSWORD=s3cret freementors auth login --email ada@example.com`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create a Free Mentors account. New accounts are members; an
administrator can promote them later.

Run without flags in an interactive terminal to fill in a form.

Examples:
  freementors auth register
  freementors auth register --first-name Ada --last-name Lovelace \
    --email ada@example.com --password s3cret --expertise Mathematics`,
	Args: cobra.NoArgs,
	RunE: runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long: `Sign out and remove the stored session. Signing out twice is not an error.

Examples:
  freementors auth logout`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	Long: `Show the current session. A stored token is verified with the
server first; a token the server no longer accepts is removed.

Examples:
  freementors auth status
  freementors auth status --format json`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

var authHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent account activity",
	Long: `Show sign-ins, sign-outs, denied destinations, role changes and
mentorship activity recorded on this machine.

Examples:
  freementors auth history
  freementors auth history --type session.login --since 24h --limit 10`,
	Args: cobra.NoArgs,
	RunE: runAuthHistory,
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password (or FREEMENTORS_PASSWORD)")

	authRegisterCmd.Flags().String("first-name", "", "first name")
	authRegisterCmd.Flags().String("last-name", "", "last name")
	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password (or FREEMENTORS_PASSWORD)")
	authRegisterCmd.Flags().String("bio", "", "short bio")
	authRegisterCmd.Flags().String("address", "", "address")
	authRegisterCmd.Flags().String("occupation", "", "occupation")
	authRegisterCmd.Flags().String("expertise", "", "area of expertise")

	authHistoryCmd.Flags().Duration("since", 0, "only show events newer than this (e.g. 24h)")
	authHistoryCmd.Flags().String("type", "", "only show one event type (e.g. session.login)")
	authHistoryCmd.Flags().Int("limit", 20, "maximum number of events (0 for all)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authHistoryCmd)
	rootCmd.AddCommand(authCmd)
}

// passwordFlag reads --password, falling back to FREEMENTORS_PASSWORD
func passwordFlag(cmd *cobra.Command) string {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("FREEMENTORS_PASSWORD")
	}
	return password
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	creds := app.Credentials{Email: email, Password: passwordFlag(cmd)}

	if creds.Email == "" || creds.Password == "" {
		if !tui.ShouldPrompt() {
			return CredentialsRequiredError(missingFields(creds))
		}
		if err := tui.PromptCredentials(&creds); err != nil {
			return err
		}
	}

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Initialize(cmd.Context()); err != nil {
		return err
	}

	outcome := e.app.Login(cmd.Context(), creds, "")
	if err := noticeError(outcome.Notice); err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), outcome.Notice.Message)
	return e.Print(newStatusView(e.app.State(), time.Now()))
}

func missingFields(creds app.Credentials) string {
	var missing []string
	if creds.Email == "" {
		missing = append(missing, "--email")
	}
	if creds.Password == "" {
		missing = append(missing, "--password")
	}
	return strings.Join(missing, " and ")
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var reg app.Registration
	reg.FirstName, _ = flags.GetString("first-name")
	reg.LastName, _ = flags.GetString("last-name")
	reg.Email, _ = flags.GetString("email")
	reg.Password = passwordFlag(cmd)
	reg.ConfirmPassword = reg.Password
	reg.Bio, _ = flags.GetString("bio")
	reg.Address, _ = flags.GetString("address")
	reg.Occupation, _ = flags.GetString("occupation")
	reg.Expertise, _ = flags.GetString("expertise")

	if (reg.FirstName == "" || reg.LastName == "" || reg.Email == "" || reg.Password == "") && tui.ShouldPrompt() {
		if err := tui.PromptRegistration(&reg); err != nil {
			return err
		}
	}

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	return e.Report(cmd, e.app.Register(cmd.Context(), reg))
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	// Restore the stored session so the activity log names who signed out.
	if err := e.Initialize(cmd.Context()); err != nil {
		e.logger.WithError(err).Debug("could not restore session before logout")
	}
	return e.Report(cmd, e.app.Logout(cmd.Context()))
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Initialize(cmd.Context()); err != nil {
		return err
	}
	return e.Print(newStatusView(e.app.State(), time.Now()))
}

func runAuthHistory(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetDuration("since")
	eventType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	filter := security.AuditFilter{
		EventType: security.AuditEventType(eventType),
		Limit:     limit,
	}
	if since > 0 {
		filter.Since = time.Now().Add(-since)
	}

	events, err := e.app.Audit().Query(filter)
	if err != nil {
		return ux.FormatError(err, "failed to read activity log")
	}
	return e.Print(historyTable(events))
}

func historyTable(events []*security.AuditEvent) *ux.Table {
	t := &ux.Table{
		Headers: []string{"TIME", "EVENT", "ACTOR", "RESOURCE", "RESULT"},
		Empty:   "No activity recorded yet.",
		Items:   events,
	}
	for _, ev := range events {
		resource := ev.Resource
		if msg := ev.Details["message"]; msg != "" {
			resource = strings.TrimSpace(resource + " " + msg)
		}
		t.Rows = append(t.Rows, []string{
			ev.Timestamp.Local().Format(time.DateTime),
			string(ev.Type),
			ev.Actor,
			resource,
			ev.Result,
		})
	}
	return t
}

// statusView is the output of auth status and auth login
type statusView struct {
	Status     string     `json:"status" yaml:"status"`
	Email      string     `json:"email,omitempty" yaml:"email,omitempty"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Role       string     `json:"role,omitempty" yaml:"role,omitempty"`
	Session    string     `json:"session,omitempty" yaml:"session,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	Expired    bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
	NextSteps  string     `json:"-" yaml:"-"`
	signedIn   bool
	expiryText string
}

func newStatusView(state auth.State, now time.Time) *statusView {
	v := &statusView{
		Status:    state.Status.String(),
		NextSteps: ux.SuggestNextSteps(state),
		signedIn:  state.IsAuthenticated(),
	}
	if id := state.Display(); id != nil {
		v.Email = id.Email
		v.Name = id.FullName()
		v.Role = id.Role.String()
	}
	if state.Token != "" {
		v.Session = auth.Fingerprint(state.Token)
		if claims, err := auth.ParseTokenClaims(state.Token); err == nil {
			if exp, ok := claims.Expiry(); ok {
				v.ExpiresAt = &exp
				v.Expired = claims.ExpiredAt(now)
				v.expiryText = describeExpiry(exp, now)
			}
		}
	}
	return v
}

func describeExpiry(exp, now time.Time) string {
	if now.After(exp) {
		return fmt.Sprintf("expired %s ago", now.Sub(exp).Round(time.Minute))
	}
	return fmt.Sprintf("in %s (%s)", exp.Sub(now).Round(time.Minute), exp.Local().Format(time.DateTime))
}

// WriteText implements ux.TextWriter
func (v *statusView) WriteText(w io.Writer, styles ux.Styles) error {
	if !v.signedIn {
		fmt.Fprintln(w, styles.Warning.Render("Not signed in"))
	} else {
		fmt.Fprintf(w, "%s %s\n", styles.Success.Render("Signed in as"), styles.Label.Render(v.Name))
		fmt.Fprintf(w, "  Email:    %s\n", v.Email)
		fmt.Fprintf(w, "  Role:     %s\n", v.Role)
		fmt.Fprintf(w, "  Session:  %s\n", v.Session)
		if v.expiryText != "" {
			fmt.Fprintf(w, "  Expires:  %s\n", v.expiryText)
		}
	}
	if v.NextSteps != "" {
		fmt.Fprintf(w, "\n%s\n", styles.Muted.Render(v.NextSteps))
	}
	return nil
}
