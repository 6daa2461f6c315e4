package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*CredentialStore, string) {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewCredentialStore(storePath, "test-passphrase")
	if err != nil {
		t.Fatalf("Failed to create credential store: %v", err)
	}
	return store, storePath
}

func TestNewCredentialStore(t *testing.T) {
	store, storePath := newTestStore(t)

	if store.Path() != storePath {
		t.Errorf("Store path mismatch: got %s, want %s", store.Path(), storePath)
	}
	if len(store.salt) != saltLength {
		t.Errorf("Expected %d byte salt, got %d", saltLength, len(store.salt))
	}
	if _, err := os.Stat(storePath); !os.IsNotExist(err) {
		t.Error("Store file must not be created before the first write")
	}
}

func TestStoreAndGetCredential(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Store("token", "eyJhbGciOiJIUzI1NiJ9.payload.sig", nil); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	value, err := store.Get("token")
	if err != nil {
		t.Fatalf("Failed to get credential: %v", err)
	}
	if value != "eyJhbGciOiJIUzI1NiJ9.payload.sig" {
		t.Errorf("Value mismatch: got %s", value)
	}
}

func TestGetNonExistentCredential(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStoreAllAndDeleteTogether(t *testing.T) {
	store, storePath := newTestStore(t)

	err := store.StoreAll(map[string]string{
		"token":    "tok",
		"identity": `{"email":"ada@example.com","role":"MEMBER"}`,
	}, nil)
	if err != nil {
		t.Fatalf("StoreAll failed: %v", err)
	}

	names := store.List()
	if len(names) != 2 || names[0] != "identity" || names[1] != "token" {
		t.Fatalf("Unexpected names: %v", names)
	}

	if err := store.Delete("token", "identity"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.List()) != 0 {
		t.Errorf("Expected empty store, got %v", store.List())
	}

	// Deleting again is a no-op
	if err := store.Delete("token", "identity"); err != nil {
		t.Errorf("Second delete should succeed, got %v", err)
	}

	reopened, err := NewCredentialStore(storePath, "test-passphrase")
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if len(reopened.List()) != 0 {
		t.Errorf("Deletion was not persisted: %v", reopened.List())
	}
}

func TestCredentialExpiration(t *testing.T) {
	store, _ := newTestStore(t)

	expires := time.Now().Add(time.Hour)
	if err := store.Store("token", "tok", &expires); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	if _, err := store.Get("token"); err != nil {
		t.Fatalf("Credential should not be expired yet: %v", err)
	}

	store.now = func() time.Time { return expires.Add(time.Second) }
	if _, err := store.Get("token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected expired credential to be not found, got %v", err)
	}
}

func TestCredentialPersistence(t *testing.T) {
	store, storePath := newTestStore(t)

	if err := store.Store("token", "persisted", nil); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	reopened, err := NewCredentialStore(storePath, "test-passphrase")
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}

	value, err := reopened.Get("token")
	if err != nil {
		t.Fatalf("Failed to get credential from reopened store: %v", err)
	}
	if value != "persisted" {
		t.Errorf("Value mismatch: got %s, want persisted", value)
	}
}

func TestWrongPassphrase(t *testing.T) {
	store, storePath := newTestStore(t)

	if err := store.Store("token", "secret", nil); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	other, err := NewCredentialStore(storePath, "another-passphrase")
	if err != nil {
		t.Fatalf("Opening with another passphrase should succeed: %v", err)
	}

	if _, err := other.Get("token"); err == nil {
		t.Error("Expected decryption to fail with wrong passphrase")
	}
}

func TestCredentialValuesAreEncryptedOnDisk(t *testing.T) {
	store, storePath := newTestStore(t)

	if err := store.Store("token", "plain-text-secret", nil); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}
	if strings.Contains(string(data), "plain-text-secret") {
		t.Error("Secret found in plaintext on disk")
	}

	info, err := os.Stat(storePath)
	if err != nil {
		t.Fatalf("Failed to stat store file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", info.Mode().Perm())
	}
}

func TestGetInfoOmitsValue(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Store("token", "secret", nil); err != nil {
		t.Fatalf("Failed to store credential: %v", err)
	}

	info, err := store.GetInfo("token")
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.Value != "" {
		t.Error("GetInfo must not expose the value")
	}
	if info.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	if _, err := store.GetInfo("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCorruptStoreFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(storePath, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewCredentialStore(storePath, "test-passphrase"); err == nil {
		t.Error("Expected error loading corrupt store")
	}
}
