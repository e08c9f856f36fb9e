package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"twfollow/pkg/config"
	errs "twfollow/pkg/errors"
)

// Account holds the twitter session cookies of one login
type Account struct {
	Username     string    `json:"username"`
	AuthToken    string    `json:"auth_token"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(username string) (*Account, error)
	List() ([]*Account, error)
	Delete(username string) error
	Exists(username string) bool
}

// Store-level sentinels
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager tries each store in order: keyring, encrypted file, environment
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager with every backend available on this system.
// The encrypted file lives in configDir.
func NewManager(configDir string) (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeAuth, "failed to create encrypted store", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the account in the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrStoreUnavailable
	}
	return errs.New(errs.ErrorTypeAuth, "failed to store credentials", lastErr)
}

func validateAccount(account *Account) error {
	switch {
	case account == nil || account.Username == "":
		return errs.New(errs.ErrorTypeAuth, "username is required", ErrInvalidCredentials)
	case account.AuthToken == "":
		return errs.New(errs.ErrorTypeAuth, "auth_token is required", ErrInvalidCredentials)
	case account.CSRFToken == "":
		return errs.New(errs.ErrorTypeAuth, "ct0 CSRF token is required", ErrInvalidCredentials)
	}
	return nil
}

// Retrieve gets the account from the first store that has it
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, errs.New(errs.ErrorTypeAuth, fmt.Sprintf("no credentials for %s", username), ErrCredentialsNotFound)
}

// List returns every stored account once, keeping the most recent copy
func (m *Manager) List() ([]*Account, error) {
	byName := make(map[string]*Account)
	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byName[account.Username]; !ok || account.LastModified.After(existing.LastModified) {
				byName[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(byName))
	for _, account := range byName {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Delete removes the account from every store holding it
func (m *Manager) Delete(username string) error {
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return errs.New(errs.ErrorTypeAuth, fmt.Sprintf("no credentials for %s", username), ErrCredentialsNotFound)
	}
	return nil
}

// Apply fills empty session fields of cfg from the stored account of
// cfg.Username. Values already set in cfg win.
func (m *Manager) Apply(cfg *config.AccountConfig) error {
	account, err := m.Retrieve(cfg.Username)
	if err != nil {
		return err
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = account.AuthToken
	}
	if cfg.CSRFToken == "" {
		cfg.CSRFToken = account.CSRFToken
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = account.UserAgent
	}
	return nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/twfollow or ~/.config/twfollow
func DefaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "twfollow"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "twfollow"), nil
}

// SanitizeAccount returns a copy with the tokens masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	return &Account{
		Username:     account.Username,
		AuthToken:    maskString(account.AuthToken),
		CSRFToken:    maskString(account.CSRFToken),
		UserAgent:    account.UserAgent,
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
