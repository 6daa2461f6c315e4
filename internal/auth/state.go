package auth

import (
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Status is the lifecycle phase of the client session.
type Status string

const (
	// StatusUninitialized is the state before persisted credentials were read
	StatusUninitialized Status = "UNINITIALIZED"

	// StatusVerifying means a persisted token is being checked with the server
	StatusVerifying Status = "VERIFYING"

	// StatusAuthenticated means a verified identity is present
	StatusAuthenticated Status = "AUTHENTICATED"

	// StatusUnauthenticated means no usable session exists
	StatusUnauthenticated Status = "UNAUTHENTICATED"
)

// String returns the status name
func (s Status) String() string {
	return string(s)
}

// IsPending reports whether the status is not yet conclusive
func (s Status) IsPending() bool {
	return s == StatusUninitialized || s == StatusVerifying
}

// State is an immutable snapshot of the session.
//
// Identity is non-nil exactly when Status is StatusAuthenticated.
// Provisional carries the cached identity while a persisted token is
// verified, so a caller can show who is signing in without treating
// the session as authenticated.
type State struct {
	Status      Status
	Token       string
	Identity    *domain.Identity
	Provisional *domain.Identity

	// Revision increases with every published snapshot
	Revision uint64
}

// IsAuthenticated reports whether a verified identity is present
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the verified role, if any
func (s State) Role() (domain.Role, bool) {
	if !s.IsAuthenticated() {
		return "", false
	}
	return s.Identity.Role, true
}

// Display returns the identity to show to the user: the verified one,
// or the provisional one while verifying.
func (s State) Display() *domain.Identity {
	if s.Identity != nil {
		return s.Identity
	}
	if s.Status == StatusVerifying {
		return s.Provisional
	}
	return nil
}

func unauthenticated() State {
	return State{Status: StatusUnauthenticated}
}

func authenticated(token string, identity domain.Identity) State {
	id := identity
	return State{Status: StatusAuthenticated, Token: token, Identity: &id}
}
