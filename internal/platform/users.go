package platform

import (
	"context"

	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

const allUsersQuery = `
query AllUsers($role: String) {
  allUsers(role: $role) {
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

const changeUserRoleMutation = `
mutation ChangeUserRole($userEmail: String!, $newRole: String!) {
  changeUserRole(user_email: $userEmail, new_role: $newRole) {
    success
    message
  }
}`

// userRecord is a user as the API returns it. Optional fields come back
// as null and decode to the empty string.
type userRecord struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Bio        string `json:"bio"`
	Address    string `json:"address"`
	Occupation string `json:"occupation"`
	Expertise  string `json:"expertise"`
}

func (u userRecord) toIdentity() (domain.Identity, error) {
	role, err := domain.ParseRole(u.Role)
	if err != nil {
		return domain.Identity{}, fmerrors.NewMalformedResponseError("user has an unknown role", err)
	}

	identity := domain.Identity{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       role,
		Bio:        u.Bio,
		Address:    u.Address,
		Occupation: u.Occupation,
		Expertise:  u.Expertise,
	}
	if err := identity.Validate(); err != nil {
		return domain.Identity{}, fmerrors.NewMalformedResponseError("user record is incomplete", err)
	}
	return identity, nil
}

// AllUsers lists accounts, optionally restricted to one role.
// Records with a role outside the closed enumeration are skipped and logged.
func (c *Client) AllUsers(ctx context.Context, role *domain.Role) ([]domain.Identity, error) {
	vars := map[string]any{}
	if role != nil {
		vars["role"] = role.Wire()
	}

	var data struct {
		AllUsers []userRecord `json:"allUsers"`
	}
	if err := c.do(ctx, "AllUsers", allUsersQuery, vars, &data); err != nil {
		return nil, err
	}

	users := make([]domain.Identity, 0, len(data.AllUsers))
	for _, record := range data.AllUsers {
		identity, err := record.toIdentity()
		if err != nil {
			c.logger().WithError(err).Warn("skipping user record", "email", record.Email, "role", record.Role)
			continue
		}
		users = append(users, identity)
	}
	return users, nil
}

// ChangeUserRole assigns a new role to the account with the given email.
// Only administrators are allowed to call it; the server enforces that.
func (c *Client) ChangeUserRole(ctx context.Context, email string, role domain.Role) (*Result, error) {
	if err := role.Validate(); err != nil {
		return nil, fmerrors.NewInvalidValueError("role", err)
	}

	var data struct {
		ChangeUserRole *Result `json:"changeUserRole"`
	}
	vars := map[string]any{"userEmail": email, "newRole": role.Wire()}
	if err := c.do(ctx, "ChangeUserRole", changeUserRoleMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.ChangeUserRole == nil {
		return nil, missingField("changeUserRole")
	}
	return data.ChangeUserRole, nil
}
