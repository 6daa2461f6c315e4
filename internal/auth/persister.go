package auth

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Persister keeps the token and the cached identity across process runs.
//
// Implementations must write and clear both values together: after Save
// returns nil both are stored, after Clear returns nil neither is.
type Persister interface {
	// Load returns the stored token and cached identity.
	// A missing token is reported as an empty string and a nil error.
	// The identity may be nil even when a token exists.
	Load(ctx context.Context) (string, *domain.Identity, error)

	// Save stores token and identity together.
	Save(ctx context.Context, token string, identity domain.Identity) error

	// Clear removes token and identity together. Clearing an empty
	// persister is not an error.
	Clear(ctx context.Context) error
}

// Storage keys shared by all persisters
const (
	keyToken    = "token"
	keyIdentity = "identity"
)

// MemoryPersister keeps credentials in process memory only.
// Useful for tests and for --no-persist style sessions.
type MemoryPersister struct {
	mu       sync.Mutex
	token    string
	identity *domain.Identity
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns the stored values
func (m *MemoryPersister) Load(ctx context.Context) (string, *domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == nil {
		return m.token, nil, nil
	}
	identity := *m.identity
	return m.token, &identity, nil
}

// Save replaces the stored values
func (m *MemoryPersister) Save(ctx context.Context, token string, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.identity = &identity
	return nil
}

// Clear drops the stored values
func (m *MemoryPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.identity = nil
	return nil
}

// IsEmpty reports whether nothing is stored
func (m *MemoryPersister) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token == "" && m.identity == nil
}
