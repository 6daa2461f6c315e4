package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

// UserAdmin is the administrator's user management screen.
type UserAdmin struct {
	app *App

	mu    sync.Mutex
	users []domain.Identity
}

// Users creates a user management screen
func (a *App) Users() *UserAdmin {
	return &UserAdmin{app: a}
}

// Load fetches accounts, optionally restricted to one role
func (u *UserAdmin) Load(ctx context.Context, role *domain.Role) Notice {
	if _, err := u.app.require(authz.ServiceUserManagement, authz.PathAdmin); err != nil {
		return Failure(err)
	}

	users, err := u.app.api().AllUsers(ctx, role)
	if err != nil {
		return Failure(err)
	}

	u.mu.Lock()
	u.users = users
	u.mu.Unlock()
	return Notice{}
}

// All returns the loaded accounts
func (u *UserAdmin) All() []domain.Identity {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.Identity(nil), u.users...)
}

// Filter applies a free-text search and an optional role filter
func (u *UserAdmin) Filter(search string, role *domain.Role) []domain.Identity {
	return FilterUsers(u.All(), search, role)
}

// Counts returns the number of loaded accounts per role
func (u *UserAdmin) Counts() map[domain.Role]int {
	counts := make(map[domain.Role]int)
	for _, user := range u.All() {
		counts[user.Role]++
	}
	return counts
}

// ChangeRole assigns role to the account. The loaded list is updated
// only when the server reports success.
func (u *UserAdmin) ChangeRole(ctx context.Context, email string, role domain.Role) Notice {
	email = strings.TrimSpace(email)

	admin, err := u.app.require(authz.ServiceUserManagement, authz.PathAdmin)
	if err != nil {
		return Failure(err)
	}
	if email == "" {
		return Failure(fmerrors.NewFieldRequiredError("email"))
	}
	if err := role.Validate(); err != nil {
		return Failure(fmerrors.NewInvalidValueError("role", err))
	}

	result, err := u.app.api().ChangeUserRole(ctx, email, role)
	if err == nil {
		err = result.Err()
	}

	notice := Failure(err)
	if err == nil {
		u.mu.Lock()
		for i := range u.users {
			if strings.EqualFold(u.users[i].Email, email) {
				u.users[i].Role = role
			}
		}
		u.mu.Unlock()

		message := result.Message
		if message == "" {
			message = fmt.Sprintf("%s is now %s", email, role.Label())
		}
		notice = Success(message)
	}

	u.app.record(u.app.audit.LogRoleChanged(admin.Email, email, role.String(), err == nil, notice.Message))
	return notice
}

// FilterUsers keeps accounts matching search and, when set, role
func FilterUsers(users []domain.Identity, search string, role *domain.Role) []domain.Identity {
	out := make([]domain.Identity, 0, len(users))
	for _, user := range users {
		if role != nil && user.Role != *role {
			continue
		}
		if !user.Matches(search) {
			continue
		}
		out = append(out, user)
	}
	return out
}
