package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// ErrNotFound is returned by Get for names that are not stored
var ErrNotFound = stderrors.New("credential not found")

const (
	keyIterations = 100000
	keyLength     = 32
	saltLength    = 16
)

// Credential is one encrypted entry of the store
type Credential struct {
	Name      string     `json:"name"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// storeFile is the on-disk layout. The salt is generated once per file.
type storeFile struct {
	Version     int                    `json:"version"`
	Salt        string                 `json:"salt"`
	Credentials map[string]*Credential `json:"credentials"`
}

// CredentialStore keeps named secrets encrypted with AES-GCM in a single
// JSON file. Writes replace the whole file, so a multi-entry update is
// either fully on disk or not at all.
type CredentialStore struct {
	mu sync.RWMutex

	storePath   string
	passphrase  string
	salt        []byte
	masterKey   []byte
	credentials map[string]*Credential

	now func() time.Time
}

// NewCredentialStore opens the store at storePath, loading it if it exists
func NewCredentialStore(storePath, passphrase string) (*CredentialStore, error) {
	store := &CredentialStore{
		storePath:   storePath,
		passphrase:  passphrase,
		credentials: make(map[string]*Credential),
		now:         time.Now,
	}

	if _, err := os.Stat(storePath); err == nil {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}
		return store, nil
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	store.setSalt(salt)

	return store, nil
}

// Path returns the file backing the store
func (s *CredentialStore) Path() string {
	return s.storePath
}

// Store encrypts and saves a single credential
func (s *CredentialStore) Store(name, value string, expiresAt *time.Time) error {
	return s.StoreAll(map[string]string{name: value}, expiresAt)
}

// StoreAll encrypts and saves several credentials with one write
func (s *CredentialStore) StoreAll(values map[string]string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := make(map[string]*Credential, len(s.credentials)+len(values))
	for name, cred := range s.credentials {
		next[name] = cred
	}

	for name, value := range values {
		encrypted, err := s.encrypt(value)
		if err != nil {
			return fmt.Errorf("failed to encrypt credential: %w", err)
		}

		createdAt := now
		if existing, ok := s.credentials[name]; ok {
			createdAt = existing.CreatedAt
		}

		next[name] = &Credential{
			Name:      name,
			Value:     encrypted,
			CreatedAt: createdAt,
			UpdatedAt: now,
			ExpiresAt: expiresAt,
		}
	}

	if err := s.save(next); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	s.credentials = next
	return nil
}

// Get decrypts a credential. Expired entries are reported as not found.
func (s *CredentialStore) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, exists := s.credentials[name]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if cred.ExpiresAt != nil && s.now().After(*cred.ExpiresAt) {
		return "", fmt.Errorf("%w: %s has expired", ErrNotFound, name)
	}

	value, err := s.decrypt(cred.Value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}

	return value, nil
}

// Delete removes the named credentials with one write.
// Names that are not stored are ignored.
func (s *CredentialStore) Delete(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*Credential, len(s.credentials))
	for name, cred := range s.credentials {
		next[name] = cred
	}

	changed := false
	for _, name := range names {
		if _, ok := next[name]; ok {
			delete(next, name)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := s.save(next); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	s.credentials = next
	return nil
}

// List returns all credential names, sorted
func (s *CredentialStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.credentials))
	for name := range s.credentials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetInfo returns credential metadata without the value
func (s *CredentialStore) GetInfo(name string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, exists := s.credentials[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return &Credential{
		Name:      cred.Name,
		CreatedAt: cred.CreatedAt,
		UpdatedAt: cred.UpdatedAt,
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

func (s *CredentialStore) setSalt(salt []byte) {
	s.salt = salt
	s.masterKey = pbkdf2.Key([]byte(s.passphrase), salt, keyIterations, keyLength, sha256.New)
}

// encrypt encrypts a value using AES-GCM
func (s *CredentialStore) encrypt(plaintext string) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a value using AES-GCM
func (s *CredentialStore) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func (s *CredentialStore) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.masterKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// save writes to a temp file and renames it over the store
func (s *CredentialStore) save(credentials map[string]*Credential) error {
	dir := filepath.Dir(s.storePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(storeFile{
		Version:     1,
		Salt:        base64.StdEncoding.EncodeToString(s.salt),
		Credentials: credentials,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.storePath)
}

// load reads the store from disk
func (s *CredentialStore) load() error {
	data, err := os.ReadFile(s.storePath)
	if err != nil {
		return err
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil || len(salt) == 0 {
		return fmt.Errorf("store has no valid salt")
	}
	s.setSalt(salt)

	if file.Credentials != nil {
		s.credentials = file.Credentials
	}
	return nil
}
