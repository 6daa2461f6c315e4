package ux

import (
	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// SuggestNextSteps returns a hint for what to do next with the session
func SuggestNextSteps(state auth.State) string {
	if state.Status.IsPending() {
		return "Your stored session is still being verified; try again in a moment"
	}

	role, ok := state.Role()
	if !ok {
		return "Sign in with 'freementors auth login' or create an account with 'freementors auth register'"
	}

	switch role {
	case domain.RoleAdministrator:
		return "Review accounts with 'freementors users list'"
	case domain.RoleMentor:
		return "Answer pending requests with 'freementors requests'"
	default:
		return "Find a mentor with 'freementors mentors list'"
	}
}
