package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/freementors/internal/domain"
	"github.com/felixgeelhaar/freementors/internal/security"
)

// FilePersister stores credentials in an encrypted credential file
type FilePersister struct {
	store *security.CredentialStore
}

// NewFilePersister opens (or prepares) the credential file at path
func NewFilePersister(path, passphrase string) (*FilePersister, error) {
	store, err := security.NewCredentialStore(path, passphrase)
	if err != nil {
		return nil, err
	}
	return &FilePersister{store: store}, nil
}

// Path returns the credential file location
func (p *FilePersister) Path() string {
	return p.store.Path()
}

// Load reads token and identity. An unreadable identity is dropped
// rather than failing the load; verification will replace it.
func (p *FilePersister) Load(ctx context.Context) (string, *domain.Identity, error) {
	token, err := p.store.Get(keyToken)
	if errors.Is(err, security.ErrNotFound) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	raw, err := p.store.Get(keyIdentity)
	if err != nil {
		return token, nil, nil
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Validate() != nil {
		return token, nil, nil
	}
	return token, &identity, nil
}

// Save writes token and identity with a single file replacement
func (p *FilePersister) Save(ctx context.Context, token string, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return p.store.StoreAll(map[string]string{
		keyToken:    token,
		keyIdentity: string(raw),
	}, nil)
}

// Clear removes both entries with a single file replacement
func (p *FilePersister) Clear(ctx context.Context) error {
	return p.store.Delete(keyToken, keyIdentity)
}
