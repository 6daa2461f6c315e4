package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/platform"
)

// Credentials is the sign-in form
type Credentials struct {
	Email    string
	Password string
}

// Validate checks required fields
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmerrors.NewFieldRequiredError("email")
	}
	if c.Password == "" {
		return fmerrors.NewFieldRequiredError("password")
	}
	return nil
}

// Registration is the sign-up form
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Bio             string
	Address         string
	Occupation      string
	Expertise       string
}

// Validate checks required fields and the password confirmation
func (r Registration) Validate() error {
	required := []struct{ name, value string }{
		{"first name", r.FirstName},
		{"last name", r.LastName},
		{"email", r.Email},
		{"password", r.Password},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmerrors.NewFieldRequiredError(f.name)
		}
	}
	if r.Password != r.ConfirmPassword {
		return fmerrors.NewPasswordMismatchError()
	}
	return nil
}

func (r Registration) input() platform.RegisterInput {
	return platform.RegisterInput{
		FirstName:  strings.TrimSpace(r.FirstName),
		LastName:   strings.TrimSpace(r.LastName),
		Email:      strings.TrimSpace(r.Email),
		Password:   r.Password,
		Bio:        strings.TrimSpace(r.Bio),
		Address:    strings.TrimSpace(r.Address),
		Occupation: strings.TrimSpace(r.Occupation),
		Expertise:  strings.TrimSpace(r.Expertise),
	}
}

// LoginOutcome is the result of a sign-in attempt
type LoginOutcome struct {
	Notice Notice

	// Target is where to go next: the remembered destination or the
	// role's home on success, the sign-in page otherwise
	Target string

	Identity *domain.Identity
}

// Login signs in with credentials.
//
// After loginUser returns a token, the identity is fetched with
// currentUser so the session stores the server's view of the role.
// from is the destination remembered by a login redirect.
func (a *App) Login(ctx context.Context, creds Credentials, from string) LoginOutcome {
	fail := func(err error) LoginOutcome {
		a.record(a.audit.LogLogin(strings.TrimSpace(creds.Email), false, Failure(err).Message))
		return LoginOutcome{Notice: Failure(err), Target: authz.PathAuth}
	}

	if err := creds.Validate(); err != nil {
		return LoginOutcome{Notice: Failure(err), Target: authz.PathAuth}
	}
	email := strings.TrimSpace(creds.Email)

	result, err := a.client.LoginUser(ctx, email, creds.Password)
	if err != nil {
		return fail(err)
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "Invalid email or password"
		}
		return fail(fmerrors.New(fmerrors.ErrCodeInvalidCredentials, message))
	}

	identity, err := a.client.VerifyToken(ctx, result.Token)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Login(ctx, result.Token, *identity); err != nil {
		return fail(err)
	}
	a.expired.Store(false)
	a.record(a.audit.LogLogin(identity.Email, true, ""))

	return LoginOutcome{
		Notice:   Success(fmt.Sprintf("Welcome, %s", identity.FullName())),
		Target:   a.router.AfterLogin(a.store.State(), from),
		Identity: identity,
	}
}

// Register creates an account. The form is validated before any request.
// The user signs in separately afterwards.
func (a *App) Register(ctx context.Context, form Registration) Notice {
	if err := form.Validate(); err != nil {
		return Failure(err)
	}

	result, err := a.client.RegisterUser(ctx, form.input())
	if err != nil {
		return Failure(err)
	}
	if err := result.Err(); err != nil {
		return Failure(err)
	}

	message := result.Message
	if message == "" {
		message = "Registration successful. Please sign in."
	}
	return Success(message)
}

// Logout ends the session. The session is always signed out locally;
// a storage failure is reported in the notice.
func (a *App) Logout(ctx context.Context) Notice {
	state := a.store.State()
	err := a.store.Logout(ctx)

	if who := state.Display(); who != nil {
		a.record(a.audit.LogLogout(who.Email))
	}
	if err != nil {
		return Failure(err)
	}
	return Info("Signed out")
}
