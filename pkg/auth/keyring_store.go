package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "entrezharvest"
	keyringEmail   = "email"
	keyringAPIKey  = "api_key"
)

// KeyringStore keeps credentials in the operating system keyring
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed credential store
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

// Save stores credentials in the system keyring
func (s *KeyringStore) Save(creds *Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := keyring.Set(keyringService, keyringEmail, creds.Email); err != nil {
		return fmt.Errorf("failed to store email in keyring: %w", err)
	}
	if creds.APIKey != "" {
		if err := keyring.Set(keyringService, keyringAPIKey, creds.APIKey); err != nil {
			return fmt.Errorf("failed to store API key in keyring: %w", err)
		}
	}
	return nil
}

// Load retrieves credentials from the system keyring
func (s *KeyringStore) Load() (*Credentials, error) {
	email, err := keyring.Get(keyringService, keyringEmail)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read email from keyring: %w", err)
	}

	creds := &Credentials{Email: email}

	apiKey, err := keyring.Get(keyringService, keyringAPIKey)
	if err == nil {
		creds.APIKey = apiKey
	} else if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("failed to read API key from keyring: %w", err)
	}

	return creds, nil
}

// Delete removes credentials from the system keyring
func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringEmail); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete email from keyring: %w", err)
	}
	if err := keyring.Delete(keyringService, keyringAPIKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}

// IsAvailable probes whether a keyring backend exists on this system
func (s *KeyringStore) IsAvailable() bool {
	probe := "entrezharvest-availability-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	keyring.Delete(keyringService, probe)
	return true
}
