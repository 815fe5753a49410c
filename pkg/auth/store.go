// Package auth stores the contact email and API key used to identify this
// client to the remote service. The system keyring is preferred; environment
// variables work as a read-only fallback for headless machines.
package auth

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no credentials are stored
var ErrNotFound = errors.New("no credentials stored")

// Credentials identify the caller to the remote service. The email is
// required by the service's usage policy; the API key raises the request
// rate allowance and is optional.
type Credentials struct {
	Email  string
	APIKey string
}

// Validate checks the credentials for obvious shape problems
func (c *Credentials) Validate() error {
	if c.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("email looks invalid")
	}
	return nil
}

// Store persists credentials between runs
type Store interface {
	// Save stores credentials, replacing any previous ones
	Save(creds *Credentials) error
	// Load retrieves stored credentials, or ErrNotFound
	Load() (*Credentials, error)
	// Delete removes stored credentials
	Delete() error
	// IsAvailable reports whether this store can be used on this system
	IsAvailable() bool
}

// Resolve returns credentials from the first store that has them
func Resolve(stores ...Store) (*Credentials, error) {
	for _, store := range stores {
		if !store.IsAvailable() {
			continue
		}
		creds, err := store.Load()
		if err == nil {
			return creds, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}
