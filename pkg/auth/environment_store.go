package auth

import (
	"errors"
	"os"
)

// EnvironmentStore reads credentials from environment variables. It is
// read-only: Save and Delete report an error so callers fall back to a
// writable store.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Save is not supported for environment credentials
func (s *EnvironmentStore) Save(creds *Credentials) error {
	return errors.New("environment store is read-only")
}

// Load reads ENTREZHARVEST_EMAIL and ENTREZHARVEST_API_KEY
func (s *EnvironmentStore) Load() (*Credentials, error) {
	email := os.Getenv("ENTREZHARVEST_EMAIL")
	if email == "" {
		return nil, ErrNotFound
	}
	return &Credentials{
		Email:  email,
		APIKey: os.Getenv("ENTREZHARVEST_API_KEY"),
	}, nil
}

// Delete is not supported for environment credentials
func (s *EnvironmentStore) Delete() error {
	return errors.New("environment store is read-only")
}

// IsAvailable reports whether the email variable is set
func (s *EnvironmentStore) IsAvailable() bool {
	return os.Getenv("ENTREZHARVEST_EMAIL") != ""
}
