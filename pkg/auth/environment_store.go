package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads a single account from TWFOLLOW_* variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds the account from TWFOLLOW_AUTH_TOKEN and TWFOLLOW_CSRF_TOKEN.
// The username is TWFOLLOW_USERNAME when set; a different requested username
// is not found.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	authToken := os.Getenv("TWFOLLOW_AUTH_TOKEN")
	csrfToken := os.Getenv("TWFOLLOW_CSRF_TOKEN")
	if authToken == "" || csrfToken == "" {
		return nil, ErrCredentialsNotFound
	}

	envUser := os.Getenv("TWFOLLOW_USERNAME")
	switch {
	case envUser != "" && username != "" && envUser != username:
		return nil, ErrCredentialsNotFound
	case envUser != "":
		username = envUser
	case username == "":
		username = "default"
	}

	return &Account{
		Username:     username,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    os.Getenv("TWFOLLOW_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment account when one is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for username
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
