package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// loginForm binds the sign-in fields to creds
func loginForm(creds *app.Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&creds.Email).
				Validate(required("email")),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("password")),
		).Title("Sign in"),
	)
}

// registrationForm binds the sign-up fields to reg. The password
// confirmation is checked against the password before submit.
func registrationForm(reg *app.Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("firstName").Title("First name").
				Value(&reg.FirstName).Validate(required("first name")),
			huh.NewInput().Key("lastName").Title("Last name").
				Value(&reg.LastName).Validate(required("last name")),
			huh.NewInput().Key("email").Title("Email").
				Value(&reg.Email).Validate(required("email")),
			huh.NewInput().Key("password").Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&reg.Password).Validate(required("password")),
			huh.NewInput().Key("confirmPassword").Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&reg.ConfirmPassword).
				Validate(func(s string) error {
					if s != reg.Password {
						return fmerrors.NewPasswordMismatchError()
					}
					return nil
				}),
		).Title("Create an account"),
		huh.NewGroup(
			huh.NewText().Key("bio").Title("Bio").Value(&reg.Bio),
			huh.NewInput().Key("address").Title("Address").Value(&reg.Address),
			huh.NewInput().Key("occupation").Title("Occupation").Value(&reg.Occupation),
			huh.NewInput().Key("expertise").Title("Expertise").
				Description("Comma separated, e.g. Go, Distributed systems").
				Value(&reg.Expertise),
		).Title("About you (optional)"),
	)
}

// roleForm asks for a role, preselecting current
func roleForm(title string, role *domain.Role) *huh.Form {
	options := make([]huh.Option[domain.Role], 0, len(domain.AllRoles()))
	for _, r := range domain.AllRoles() {
		options = append(options, huh.NewOption(r.Label(), r))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.Role]().
				Title(title).
				Options(options...).
				Value(role),
		),
	)
}
