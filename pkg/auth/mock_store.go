package auth

import "sync"

// MockStore is an in-memory credential store for tests
type MockStore struct {
	mu        sync.Mutex
	creds     *Credentials
	available bool

	SaveErr   error
	LoadErr   error
	DeleteErr error
}

// NewMockStore creates an available, empty mock store
func NewMockStore() *MockStore {
	return &MockStore{available: true}
}

func (s *MockStore) Save(creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	copied := *creds
	s.creds = &copied
	return nil
}

func (s *MockStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.creds == nil {
		return nil, ErrNotFound
	}
	copied := *s.creds
	return &copied, nil
}

func (s *MockStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.creds = nil
	return nil
}

func (s *MockStore) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// SetAvailable toggles the store's availability for tests
func (s *MockStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}
