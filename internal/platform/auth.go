package platform

import (
	"context"

	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

const registerUserMutation = `
mutation RegisterUser($firstName: String!, $lastName: String!, $email: String!, $password: String!,
                      $bio: String, $address: String, $occupation: String, $expertise: String) {
  registerUser(firstName: $firstName, lastName: $lastName, email: $email, password: $password,
               bio: $bio, address: $address, occupation: $occupation, expertise: $expertise) {
    success
    message
  }
}`

const loginUserMutation = `
mutation LoginUser($email: String!, $password: String!) {
  loginUser(email: $email, password: $password) {
    success
    message
    token
  }
}`

const currentUserQuery = `
query CurrentUser {
  currentUser {
    id
    firstName
    lastName
    email
    role
    bio
    address
    occupation
    expertise
  }
}`

// RegisterInput represents a registration request
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Bio        string
	Address    string
	Occupation string
	Expertise  string
}

func (in RegisterInput) variables() map[string]any {
	vars := map[string]any{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"email":     in.Email,
		"password":  in.Password,
	}
	optional := map[string]string{
		"bio":        in.Bio,
		"address":    in.Address,
		"occupation": in.Occupation,
		"expertise":  in.Expertise,
	}
	for k, v := range optional {
		if v != "" {
			vars[k] = v
		}
	}
	return vars
}

// LoginResult represents the loginUser payload
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// RegisterUser creates a new account. An unsuccessful result is returned
// as-is so the caller can show the server's message.
func (c *Client) RegisterUser(ctx context.Context, in RegisterInput) (*Result, error) {
	var data struct {
		RegisterUser *Result `json:"registerUser"`
	}
	if err := c.do(ctx, "RegisterUser", registerUserMutation, in.variables(), &data); err != nil {
		return nil, err
	}
	if data.RegisterUser == nil {
		return nil, missingField("registerUser")
	}
	return data.RegisterUser, nil
}

// LoginUser exchanges credentials for a bearer token
func (c *Client) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	var data struct {
		LoginUser *LoginResult `json:"loginUser"`
	}
	vars := map[string]any{"email": email, "password": password}
	if err := c.do(ctx, "LoginUser", loginUserMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.LoginUser == nil {
		return nil, missingField("loginUser")
	}
	if data.LoginUser.Success && data.LoginUser.Token == "" {
		return nil, fmerrors.NewMalformedResponseError("login succeeded without a token", nil)
	}
	return data.LoginUser, nil
}

// CurrentUser fetches the identity the client's token belongs to.
// A null record or a role outside the closed enumeration is an error.
func (c *Client) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	if c.Token == "" {
		return nil, fmerrors.NewLoginRequiredError("currentUser")
	}

	var data struct {
		CurrentUser *userRecord `json:"currentUser"`
	}
	if err := c.do(ctx, "CurrentUser", currentUserQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.CurrentUser == nil {
		return nil, missingField("currentUser")
	}

	identity, err := data.CurrentUser.toIdentity()
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// VerifyToken resolves the identity for token without changing the
// receiver's own credentials.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	return c.WithToken(token).CurrentUser(ctx)
}
