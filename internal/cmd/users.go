package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/tui"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts (administrators only)",
	Long: `List accounts and change their roles. Only administrators can use
these commands.

Examples:
  freementors users list
  freementors users list --role mentor
  freementors users set-role grace@example.com MENTOR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <email> [role]",
	Short: "Change an account's role",
	Long: `Assign MEMBER, MENTOR or ADMINISTRATOR to an account. Without a role
argument you are asked to pick one in an interactive terminal.

Examples:
  freementors users set-role grace@example.com MENTOR
  freementors users set-role grace@example.com`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeAt(1, completeRoles),
	RunE:              runUsersSetRole,
}

func init() {
	usersListCmd.Flags().String("role", "", "only accounts with this role (member, mentor, administrator)")
	usersListCmd.Flags().StringP("search", "s", "", "free-text search")
	_ = usersListCmd.RegisterFlagCompletionFunc("role", completeRoles)

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSetRoleCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	roleFlag, _ := cmd.Flags().GetString("role")
	search, _ := cmd.Flags().GetString("search")

	var role *domain.Role
	if roleFlag != "" {
		r, err := domain.ParseRole(roleFlag)
		if err != nil {
			return fmerrors.NewInvalidValueError("role", err)
		}
		role = &r
	}

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathAdmin); err != nil {
		return err
	}

	admin := e.app.Users()
	if err := noticeError(admin.Load(cmd.Context(), role)); err != nil {
		return err
	}
	return e.Print(identityTable(admin.Filter(search, role), "No accounts match.", true))
}

func runUsersSetRole(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Enter(cmd.Context(), authz.PathAdmin); err != nil {
		return err
	}

	var role domain.Role
	if len(args) == 2 {
		role, err = domain.ParseRole(args[1])
		if err != nil {
			return fmerrors.NewInvalidValueError("role", err)
		}
	} else {
		if !tui.ShouldPrompt() {
			return fmerrors.NewFieldRequiredError("role")
		}
		role, err = tui.PromptForRole("New role for "+args[0], domain.RoleMember)
		if err != nil {
			return err
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Make %s a %s?", args[0], role.Label()), true)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Role unchanged")
			return nil
		}
	}

	return e.Report(cmd, e.app.Users().ChangeRole(cmd.Context(), args[0], role))
}
