package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"twfollow/pkg/config"
	errs "twfollow/pkg/errors"
)

func testAccount(name string) *Account {
	return &Account{
		Username:  name,
		AuthToken: "0123456789abcdef0123456789abcdef01234567",
		CSRFToken: "csrf_token_67890_abcdef",
		UserAgent: "TestAgent/1.0",
	}
}

func TestCredentialManager(t *testing.T) {
	manager, memStore := newMemoryManager()

	account := testAccount("alice")
	require.NoError(t, manager.Store(account))
	assert.False(t, account.LastModified.IsZero())

	retrieved, err := manager.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, account.AuthToken, retrieved.AuthToken)
	assert.Equal(t, account.CSRFToken, retrieved.CSRFToken)

	accounts, err := manager.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	require.NoError(t, manager.Delete("alice"))
	assert.Equal(t, 0, memStore.count())

	_, err = manager.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))

	assert.ErrorIs(t, manager.Delete("alice"), ErrCredentialsNotFound)
}

func TestStoreValidation(t *testing.T) {
	manager, _ := newMemoryManager()

	tests := []struct {
		name    string
		account *Account
	}{
		{"nil", nil},
		{"no username", &Account{AuthToken: "a", CSRFToken: "b"}},
		{"no auth token", &Account{Username: "alice", CSRFToken: "b"}},
		{"no csrf token", &Account{Username: "alice", AuthToken: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.Store(tt.account)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestManagerFallsBack(t *testing.T) {
	broken := newMemoryStore()
	broken.storeErr = errors.New("keychain locked")
	backup := newMemoryStore()
	manager := NewManagerWithStores(broken, backup)

	require.NoError(t, manager.Store(testAccount("alice")))
	assert.Equal(t, 0, broken.count())
	assert.Equal(t, 1, backup.count())

	backup.storeErr = errors.New("disk full")
	err := manager.Store(testAccount("bob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestListKeepsNewestAndSorts(t *testing.T) {
	first, second := newMemoryStore(), newMemoryStore()
	older := testAccount("zed")
	older.LastModified = time.Now().Add(-time.Hour)
	newer := testAccount("zed")
	newer.AuthToken = "fresh"
	newer.LastModified = time.Now()

	require.NoError(t, first.Store(older))
	require.NoError(t, second.Store(newer))
	require.NoError(t, second.Store(testAccount("amy")))

	accounts, err := NewManagerWithStores(first, second).List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "amy", accounts[0].Username)
	assert.Equal(t, "fresh", accounts[1].AuthToken)
}

func TestApply(t *testing.T) {
	manager, _ := newMemoryManager()
	require.NoError(t, manager.Store(testAccount("alice")))

	cfg := config.AccountConfig{Username: "alice", CSRFToken: "from-config"}
	require.NoError(t, manager.Apply(&cfg))
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", cfg.AuthToken)
	assert.Equal(t, "from-config", cfg.CSRFToken)
	assert.Equal(t, "TestAgent/1.0", cfg.UserAgent)

	missing := config.AccountConfig{Username: "bob"}
	assert.Error(t, manager.Apply(&missing))
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("alice")
	sanitized := SanitizeAccount(account)

	assert.Equal(t, "alice", sanitized.Username)
	assert.Equal(t, "0123...4567", sanitized.AuthToken)
	assert.NotEqual(t, account.CSRFToken, sanitized.CSRFToken)
	assert.Equal(t, "********", maskString("short"))
	assert.Nil(t, SanitizeAccount(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv("TWFOLLOW_PASSPHRASE", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)

	account := testAccount("alice")
	require.NoError(t, store.Store(account))
	require.NoError(t, store.Store(testAccount("bob")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte(account.AuthToken)), "tokens must not be stored in clear text")

	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, account.AuthToken, got.AuthToken)

	accounts, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, reopened.Delete("alice"))
	assert.False(t, reopened.Exists("alice"))
	require.NoError(t, reopened.Delete("bob"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = reopened.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("TWFOLLOW_PASSPHRASE", "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("alice")))

	t.Setenv("TWFOLLOW_PASSPHRASE", "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt")
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv("TWFOLLOW_AUTH_TOKEN", "")
	t.Setenv("TWFOLLOW_CSRF_TOKEN", "")
	t.Setenv("TWFOLLOW_USERNAME", "")
	_, err := store.Retrieve("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv("TWFOLLOW_AUTH_TOKEN", "env_auth")
	t.Setenv("TWFOLLOW_CSRF_TOKEN", "env_csrf")

	account, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "env_auth", account.AuthToken)

	t.Setenv("TWFOLLOW_USERNAME", "bob")
	assert.False(t, store.Exists("alice"))
	assert.True(t, store.Exists("bob"))

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob", accounts[0].Username)

	assert.ErrorIs(t, store.Store(testAccount("bob")), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("bob"), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("alice")))
	require.NoError(t, store.Store(testAccount("bob")))
	require.NoError(t, store.Store(testAccount("alice")))

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.True(t, store.Exists("alice"))

	require.NoError(t, store.Delete("alice"))
	assert.False(t, store.Exists("alice"))
	assert.ErrorIs(t, store.Delete("alice"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob", accounts[0].Username)
}

func TestGuides(t *testing.T) {
	var buf bytes.Buffer
	ShowCookieExtractionGuide(&buf)
	assert.Contains(t, buf.String(), "auth_token")
	assert.Contains(t, buf.String(), "ct0")

	buf.Reset()
	ShowQuickExtractGuide(&buf)
	assert.Contains(t, buf.String(), "auth_token=...")
}
