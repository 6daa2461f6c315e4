// Package app holds the screen controllers shared by the CLI commands and
// the interactive client. Controllers talk to the GraphQL API with the
// session's token and turn every failure into a Notice.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/freementors/internal/auth"
	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/log"
	"github.com/felixgeelhaar/freementors/internal/platform"
	"github.com/felixgeelhaar/freementors/internal/security"
)

// App wires the session store, the router and the API client together.
type App struct {
	store  *auth.Store
	router *authz.Router
	client *platform.Client
	audit  *security.AuditLogger
	logger *log.Logger
	clock  Clock

	// expired is set when the stored session was rejected at startup
	expired atomic.Bool
}

// Options configures an App. Store and Client are required.
type Options struct {
	Store  *auth.Store
	Router *authz.Router
	Client *platform.Client

	// Audit may be nil to disable the activity log
	Audit  *security.AuditLogger
	Logger *log.Logger
	Clock  Clock
}

// New creates an App
func New(opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("app: session store is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("app: API client is required")
	}

	a := &App{
		store:  opts.Store,
		router: opts.Router,
		client: opts.Client,
		audit:  opts.Audit,
		logger: opts.Logger,
		clock:  opts.Clock,
	}
	if a.router == nil {
		a.router = authz.NewRouter()
	}
	if a.logger == nil {
		a.logger = log.DefaultLogger()
	}
	if a.clock == nil {
		a.clock = SystemClock()
	}
	return a, nil
}

// Store returns the session store
func (a *App) Store() *auth.Store {
	return a.store
}

// Router returns the destination router
func (a *App) Router() *authz.Router {
	return a.router
}

// Audit returns the activity log (possibly nil)
func (a *App) Audit() *security.AuditLogger {
	return a.audit
}

// State is a shortcut for Store().State()
func (a *App) State() auth.State {
	return a.store.State()
}

// Initialize resolves the persisted session. A stored session the
// server no longer accepts is recorded as expired.
func (a *App) Initialize(ctx context.Context) error {
	var (
		mu          sync.Mutex
		provisional string
	)
	unsubscribe := a.store.Subscribe(func(s auth.State) {
		if s.Status != auth.StatusVerifying {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		provisional = "unknown"
		if s.Provisional != nil {
			provisional = s.Provisional.Email
		}
	})
	err := a.store.Initialize(ctx)
	unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	if err != nil || provisional == "" || a.store.State().Status != auth.StatusUnauthenticated {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	a.expired.Store(true)
	a.record(a.audit.LogSessionExpired(provisional))
	return nil
}

// Enter runs the route guard for path.
//
// Redirects come back as AUTH errors so commands can exit with the
// right code; the outcome still carries the redirect target. While the
// session is being verified the outcome is WAIT with no error.
func (a *App) Enter(path string) (authz.Outcome, error) {
	state := a.store.State()
	outcome := a.router.Navigate(state, path)

	if outcome.Decision.IsRedirect() {
		actor := ""
		if state.Identity != nil {
			actor = state.Identity.Email
		}
		a.record(a.audit.LogAccessDenied(actor, authz.Clean(path), outcome.Decision.String()))
	}

	switch outcome.Decision {
	case authz.DecisionRedirectToLogin:
		err := fmerrors.NewLoginRequiredError(authz.Clean(path))
		if a.expired.Load() {
			return outcome, fmerrors.NewSessionInvalidError(err)
		}
		return outcome, err
	case authz.DecisionRedirectToUnauthorized:
		role, _ := state.Role()
		return outcome, fmerrors.NewUnauthorizedError(authz.Clean(path), role.Label())
	case authz.DecisionNotFound:
		return outcome, fmerrors.NewInvalidValueError("destination", fmt.Errorf("no such destination %s", authz.Clean(path)))
	}
	return outcome, nil
}

// identity returns the verified identity or a login-required error
func (a *App) identity(destination string) (*domain.Identity, error) {
	state := a.store.State()
	if !state.IsAuthenticated() {
		return nil, fmerrors.NewLoginRequiredError(destination)
	}
	return state.Identity, nil
}

// require returns the identity if its role includes service
func (a *App) require(service authz.Service, destination string) (*domain.Identity, error) {
	identity, err := a.identity(destination)
	if err != nil {
		return nil, err
	}
	if !authz.HasServiceAccess(identity, service) {
		return nil, fmerrors.NewUnauthorizedError(destination, identity.Role.Label())
	}
	return identity, nil
}

// api returns a client carrying the session's token
func (a *App) api() *platform.Client {
	return a.client.WithToken(a.store.State().Token)
}

// record logs a failed audit write; the activity log never blocks an action
func (a *App) record(err error) {
	if err != nil {
		a.logger.WithError(err).Warn("failed to write activity log")
	}
}
