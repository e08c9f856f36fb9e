package auth

import "sync"

// memoryStore keeps accounts in a map; the *Err fields fail the matching call
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account

	storeErr    error
	retrieveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]Account)}
}

func newMemoryManager() (*Manager, *memoryStore) {
	store := newMemoryStore()
	return NewManagerWithStores(store), store
}

func (s *memoryStore) Store(account *Account) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Username] = *account
	return nil
}

func (s *memoryStore) Retrieve(username string) (*Account, error) {
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

func (s *memoryStore) List() ([]*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]*Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		account := account
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

func (s *memoryStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; !ok {
		return ErrCredentialsNotFound
	}
	delete(s.accounts, username)
	return nil
}

func (s *memoryStore) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[username]
	return ok
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}
