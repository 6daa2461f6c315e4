package authz

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Well-known destination paths
const (
	PathRoot         = "/"
	PathAuth         = "/auth"
	PathDashboard    = "/dashboard"
	PathMentors      = "/mentors"
	PathProfile      = "/profile"
	PathSessions     = "/sessions"
	PathRequests     = "/requests"
	PathAdmin        = "/admin"
	PathUnauthorized = "/unauthorized"
)

// Destination is one navigable screen or command target.
type Destination struct {
	Path  string
	Title string

	// Public destinations are shown without a session
	Public bool

	// Roles permitted to view the destination; empty means any
	// authenticated user. Ignored for public destinations.
	Roles domain.RoleSet
}

// Outcome is the result of navigating to a path.
type Outcome struct {
	Decision Decision

	// Target is the path to show; empty while waiting
	Target string

	// From is the originally requested path, kept on a login redirect
	// so the user lands there after signing in
	From string
}

// Router resolves paths against a fixed destination table.
type Router struct {
	destinations map[string]Destination
	defaults     map[domain.Role]string
}

// DefaultDestinations returns the destination table of the client
func DefaultDestinations() []Destination {
	return []Destination{
		{Path: PathAuth, Title: "Sign in", Public: true},
		{Path: PathDashboard, Title: "Dashboard"},
		{Path: PathMentors, Title: "Mentors"},
		{Path: PathProfile, Title: "Profile"},
		{Path: PathSessions, Title: "My sessions"},
		{Path: PathRequests, Title: "Mentorship requests", Roles: domain.NewRoleSet(domain.RoleMentor)},
		{Path: PathAdmin, Title: "User management", Roles: domain.NewRoleSet(domain.RoleAdministrator)},
		{Path: PathUnauthorized, Title: "Unauthorized", Public: true},
	}
}

// DefaultHomes maps each role to its landing destination
func DefaultHomes() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleAdministrator: PathAdmin,
		domain.RoleMentor:        PathRequests,
		domain.RoleMember:        PathMentors,
	}
}

// NewRouter creates a router with the default destination table
func NewRouter() *Router {
	return NewRouterWith(DefaultDestinations(), DefaultHomes())
}

// NewRouterWith creates a router over a custom table
func NewRouterWith(destinations []Destination, homes map[domain.Role]string) *Router {
	r := &Router{
		destinations: make(map[string]Destination, len(destinations)),
		defaults:     make(map[domain.Role]string, len(homes)),
	}
	for _, d := range destinations {
		r.destinations[d.Path] = d
	}
	for role, path := range homes {
		r.defaults[role] = path
	}
	return r
}

// Lookup returns the destination registered for path
func (r *Router) Lookup(path string) (Destination, bool) {
	d, ok := r.destinations[Clean(path)]
	return d, ok
}

// Destinations returns the table sorted by path
func (r *Router) Destinations() []Destination {
	out := make([]Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Visible returns the non-public destinations the state may render,
// in table order. Used to build navigation menus.
func (r *Router) Visible(state auth.State) []Destination {
	var out []Destination
	for _, d := range DefaultDestinations() {
		registered, ok := r.destinations[d.Path]
		if !ok || registered.Public {
			continue
		}
		if Authorize(state, registered.Roles) == DecisionRender {
			out = append(out, registered)
		}
	}
	return out
}

// Authorize guards a single registered destination
func (r *Router) Authorize(state auth.State, path string) Decision {
	d, ok := r.Lookup(path)
	if !ok {
		return DecisionNotFound
	}
	if d.Public {
		return DecisionRender
	}
	return Authorize(state, d.Roles)
}

// Navigate resolves a requested path to what should be shown.
//
// The root path and the sign-in page while authenticated go through
// HomeRedirect. Both wait while a stored session is being verified.
// Unknown paths yield NOT_FOUND.
func (r *Router) Navigate(state auth.State, path string) Outcome {
	path = Clean(path)

	if path == PathRoot || path == PathAuth {
		if state.Status.IsPending() {
			return Outcome{Decision: DecisionWait}
		}
		if path == PathRoot || state.IsAuthenticated() {
			return Outcome{Decision: DecisionRender, Target: r.HomeRedirect(state, "")}
		}
	}

	d, ok := r.destinations[path]
	if !ok {
		return Outcome{Decision: DecisionNotFound, Target: path}
	}
	if d.Public {
		return Outcome{Decision: DecisionRender, Target: path}
	}

	switch decision := Authorize(state, d.Roles); decision {
	case DecisionWait:
		return Outcome{Decision: decision}
	case DecisionRedirectToLogin:
		return Outcome{Decision: decision, Target: PathAuth, From: path}
	case DecisionRedirectToUnauthorized:
		return Outcome{Decision: decision, Target: PathUnauthorized}
	default:
		return Outcome{Decision: DecisionRender, Target: path}
	}
}

// HomeRedirect picks where an identity should land.
//
// Unauthenticated sessions go to the sign-in page. If current is a
// non-public destination the role may render, the user stays there;
// otherwise the role's default destination is used.
func (r *Router) HomeRedirect(state auth.State, current string) string {
	role, ok := state.Role()
	if !ok {
		return PathAuth
	}

	if current != "" {
		if d, found := r.destinations[Clean(current)]; found && !d.Public &&
			Authorize(state, d.Roles) == DecisionRender {
			return d.Path
		}
	}

	if home, found := r.defaults[role]; found {
		return home
	}
	return PathDashboard
}

// AfterLogin picks the landing path after a successful sign-in,
// restoring the remembered path when the role may view it.
func (r *Router) AfterLogin(state auth.State, from string) string {
	return r.HomeRedirect(state, from)
}

// Clean normalizes a path: leading slash, no trailing slash, lower case
func Clean(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
