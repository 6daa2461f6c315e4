package authz

import (
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Decision is the outcome of guarding a destination.
type Decision string

const (
	// DecisionRender shows the destination
	DecisionRender Decision = "RENDER"

	// DecisionRedirectToLogin sends the user to sign in first
	DecisionRedirectToLogin Decision = "REDIRECT_TO_LOGIN"

	// DecisionRedirectToUnauthorized refuses a destination the role may not view
	DecisionRedirectToUnauthorized Decision = "REDIRECT_TO_UNAUTHORIZED"

	// DecisionWait holds navigation until the session is resolved
	DecisionWait Decision = "WAIT"

	// DecisionNotFound is returned by the router for unknown paths
	DecisionNotFound Decision = "NOT_FOUND"
)

// String returns the decision name
func (d Decision) String() string {
	return string(d)
}

// IsRedirect reports whether the decision moves the user elsewhere
func (d Decision) IsRedirect() bool {
	return d == DecisionRedirectToLogin || d == DecisionRedirectToUnauthorized
}

// Authorize decides whether a destination requiring one of the given
// roles may be shown for the session state.
//
// Evaluation order:
//  1. session not resolved yet (uninitialized or verifying): WAIT
//  2. not authenticated: REDIRECT_TO_LOGIN
//  3. required is non-empty and the role is not in it: REDIRECT_TO_UNAUTHORIZED
//  4. otherwise: RENDER
//
// An empty role set means any authenticated user.
func Authorize(state auth.State, required domain.RoleSet) Decision {
	if state.Status.IsPending() {
		return DecisionWait
	}

	role, ok := state.Role()
	if !ok {
		return DecisionRedirectToLogin
	}

	if !required.IsEmpty() && !required.Contains(role) {
		return DecisionRedirectToUnauthorized
	}

	return DecisionRender
}
