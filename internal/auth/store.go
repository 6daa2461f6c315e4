package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/freementors/internal/domain"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/log"
)

// Verifier resolves the identity a token belongs to.
// Any error means the token cannot be used.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface
type VerifierFunc func(ctx context.Context, token string) (*domain.Identity, error)

// VerifyToken calls f
func (f VerifierFunc) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	return f(ctx, token)
}

// Store is the single owner of the client session.
//
// Every mutation publishes a complete new State; readers never observe
// a half-applied update. Each Login and Logout advances a generation
// counter, and a verification only applies its result if the generation
// it started under is still current, so a logout issued while a token
// is being verified always wins.
type Store struct {
	mu         sync.Mutex
	state      State
	generation uint64
	revision   uint64

	verifier  Verifier
	persister Persister
	logger    *log.Logger

	subscribers map[int]func(State)
	nextSubID   int
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used for session diagnostics
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store in the UNINITIALIZED state
func NewStore(verifier Verifier, persister Persister, opts ...StoreOption) *Store {
	s := &Store{
		state:       State{Status: StatusUninitialized},
		verifier:    verifier,
		persister:   persister,
		logger:      log.DefaultLogger(),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every published snapshot.
// fn runs on the goroutine that caused the change, outside the store's
// lock; snapshots from concurrent changes may arrive out of order, so
// compare Revision when order matters. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Initialize reads persisted credentials and resolves the session.
//
// Without a stored token the store becomes UNAUTHENTICATED and no
// request is made. With a token it publishes VERIFYING (exposing the
// cached identity as Provisional) and makes exactly one verification
// call before returning. Calling Initialize again after the first run
// is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Status != StatusUninitialized {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation

	token, cached, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read stored credentials, starting signed out")
		if clearErr := s.persister.Clear(ctx); clearErr != nil {
			s.logger.WithError(clearErr).Warn("failed to clear unreadable credentials")
		}
		notify := s.publishLocked(unauthenticated())
		s.mu.Unlock()
		notify()
		return nil
	}

	if token == "" {
		notify := s.publishLocked(unauthenticated())
		s.mu.Unlock()
		notify()
		return nil
	}

	notify := s.publishLocked(State{
		Status:      StatusVerifying,
		Token:       token,
		Provisional: cached,
	})
	s.mu.Unlock()
	notify()

	s.verify(ctx, token, gen)
	return nil
}

// Start runs Initialize in the background. The channel receives the
// result and is closed once verification resolved.
func (s *Store) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Initialize(ctx)
	}()
	return done
}

// verify checks token with the server and applies the outcome unless a
// newer Login or Logout happened meanwhile.
func (s *Store) verify(ctx context.Context, token string, gen uint64) {
	logger := s.logger.With("token", Fingerprint(token))

	identity, err := s.verifier.VerifyToken(ctx, token)
	if err == nil && identity == nil {
		err = fmerrors.NewMalformedResponseError("no identity returned", nil)
	}
	if err == nil {
		if vErr := identity.Validate(); vErr != nil {
			err = fmerrors.NewMalformedResponseError("identity is invalid", vErr)
		}
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		logger.Debug("discarding stale verification result")
		return
	}

	var next State
	switch {
	case err != nil && aborted(ctx, err):
		// The server gave no verdict; keep the stored token for the next run.
		logger.Debug("verification aborted, keeping stored credentials")
		next = unauthenticated()
	case err != nil:
		logger.WithError(err).Debug("stored session rejected")
		if clearErr := s.persister.Clear(ctx); clearErr != nil {
			logger.WithError(clearErr).Warn("failed to clear rejected credentials")
		}
		next = unauthenticated()
	default:
		if saveErr := s.persister.Save(ctx, token, *identity); saveErr != nil {
			logger.WithError(saveErr).Warn("failed to refresh cached identity")
		}
		logger.Debug("stored session verified", "email", identity.Email, "role", identity.Role.String())
		next = authenticated(token, *identity)
	}

	notify := s.publishLocked(next)
	s.mu.Unlock()
	notify()
}

// aborted reports whether err comes from cancelling ctx locally
func aborted(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

// Login stores token and identity and publishes AUTHENTICATED.
// On a storage failure nothing changes and the error is returned.
func (s *Store) Login(ctx context.Context, token string, identity domain.Identity) error {
	if token == "" {
		return fmerrors.NewFieldRequiredError("token")
	}
	if err := identity.Validate(); err != nil {
		return fmerrors.NewInvalidValueError("identity", err)
	}

	s.mu.Lock()
	if err := s.persister.Save(ctx, token, identity); err != nil {
		s.mu.Unlock()
		return fmerrors.NewStorageError(true, err)
	}
	s.generation++
	notify := s.publishLocked(authenticated(token, identity))
	s.mu.Unlock()
	notify()

	s.logger.Debug("signed in", "email", identity.Email, "role", identity.Role.String(), "token", Fingerprint(token))
	return nil
}

// Logout clears stored credentials and publishes UNAUTHENTICATED.
// It is idempotent, and any verification still in flight is discarded.
// A storage failure is returned, but the in-memory session is signed
// out regardless.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	clearErr := s.persister.Clear(ctx)

	notify := func() {}
	if s.state.Status != StatusUnauthenticated || s.state.Token != "" {
		notify = s.publishLocked(unauthenticated())
	}
	s.mu.Unlock()
	notify()

	if clearErr != nil {
		return fmerrors.NewStorageError(true, fmt.Errorf("clearing credentials: %w", clearErr))
	}
	return nil
}

// publishLocked swaps in next and returns a func that notifies
// subscribers. Callers hold s.mu and call the func after unlocking.
func (s *Store) publishLocked(next State) func() {
	s.revision++
	next.Revision = s.revision
	s.state = next

	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subscribers[id])
	}

	return func() {
		for _, fn := range fns {
			fn(next)
		}
	}
}
